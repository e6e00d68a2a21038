package jobs

import (
	"time"

	"github.com/google/uuid"
)

type Job struct {
	ID     uint64    `gorm:"primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null"`

	Type    string `gorm:"type:text;not null"` // SHARE_NOTIFY
	Payload []byte `gorm:"type:jsonb;not null;default:'{}'::jsonb"`

	RunAt  time.Time `gorm:"index;not null"`
	Status string    `gorm:"index;not null;default:'PENDING'"` // PENDING/RUNNING/DONE/FAILED

	Attempts    int `gorm:"not null;default:0"`
	MaxAttempts int `gorm:"not null;default:8"`

	LockedBy *string    `gorm:"type:text"`
	LockedAt *time.Time `gorm:"type:timestamptz"`

	LastError *string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

// ShareNoticePayload is the SHARE_NOTIFY job body.
type ShareNoticePayload struct {
	NoteID    uuid.UUID `json:"note_id"`
	GranterID uuid.UUID `json:"granter_id"`
	GranteeID uuid.UUID `json:"grantee_id"`
}
