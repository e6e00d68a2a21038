package note

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Note is the authoritative record. Deletion only flips IsDeleted; the
// row stays behind for audit and must never surface in any listing.
type Note struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title     string    `gorm:"size:255;not null"`
	Content   string    `gorm:"type:text;not null"`
	OwnerID   uuid.UUID `gorm:"type:uuid;index;not null"`
	IsDeleted bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"index;not null;default:now()"`

	// Loaded separately via the note_tags join, not a gorm association.
	Tags []Tag `gorm:"-"`
}

func (n *Note) BeforeCreate(*gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// Tag is a flat, globally shared label. Names are unique case-insensitively
// (enforced by a lower(name) unique index).
type Tag struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"size:50;not null"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (t *Tag) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// NoteTag is the notes<->tags join table.
type NoteTag struct {
	NoteID uuid.UUID `gorm:"type:uuid;primaryKey"`
	TagID  uuid.UUID `gorm:"type:uuid;primaryKey"`
}

// Share grants a grantee read access to a note. At most one row per
// (note, grantee); a unique index backs the idempotent create.
type Share struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	NoteID    uuid.UUID `gorm:"type:uuid;index;not null"`
	GranterID uuid.UUID `gorm:"type:uuid;not null"`
	GranteeID uuid.UUID `gorm:"type:uuid;index;not null"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (Share) TableName() string { return "note_shares" }

func (s *Share) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
