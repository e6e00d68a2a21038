package note

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// notDeleted is the soft-delete predicate. It is composed into every
// candidate-set query; nothing reads notes without it.
func notDeleted(q *gorm.DB) *gorm.DB {
	return q.Where("notes.is_deleted = false")
}

// grantedBy selects ids of notes the user has shared with someone.
func (r *Repo) grantedBy(userID uuid.UUID) *gorm.DB {
	return r.DB.Model(&Share{}).Select("note_id").Where("granter_id = ?", userID)
}

// receivedBy selects ids of notes shared with the user.
func (r *Repo) receivedBy(userID uuid.UUID) *gorm.DB {
	return r.DB.Model(&Share{}).Select("note_id").Where("grantee_id = ?", userID)
}

// sectionScope resolves the base candidate set for one visibility
// section. The three sections are disjoint: private and shared-by-me
// split the user's own notes on share existence, shared-with-me is
// driven purely by grants to the user.
func (r *Repo) sectionScope(userID uuid.UUID, section Section) func(*gorm.DB) *gorm.DB {
	switch section {
	case SectionPrivate:
		return func(q *gorm.DB) *gorm.DB {
			return q.Where("notes.owner_id = ?", userID).
				Where("notes.id NOT IN (?)", r.grantedBy(userID))
		}
	case SectionSharedByMe:
		return func(q *gorm.DB) *gorm.DB {
			return q.Where("notes.owner_id = ?", userID).
				Where("notes.id IN (?)", r.grantedBy(userID))
		}
	case SectionSharedWithMe:
		return func(q *gorm.DB) *gorm.DB {
			return q.Where("notes.id IN (?)", r.receivedBy(userID))
		}
	}
	// Unreachable: ParseSection guards every entry point.
	return func(q *gorm.DB) *gorm.DB { return q.Where("1 = 0") }
}

// withAllTags applies the AND tag filter: a note passes only when it
// carries every requested tag. Unknown tag ids raise the required count
// without ever matching, so they yield zero results rather than an error.
func withAllTags(tagIDs []uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Joins("JOIN note_tags ON note_tags.note_id = notes.id").
			Where("note_tags.tag_id IN ?", tagIDs).
			Group("notes.id").
			Having("COUNT(DISTINCT note_tags.tag_id) = ?", len(tagIDs))
	}
}

// matchingText matches either the full-text index over title+content or
// a case-insensitive substring of the raw query in title or content.
// The OR widens recall: tsquery handles tokenized matches, ILIKE picks
// up partial words the index misses.
func matchingText(query string) func(*gorm.DB) *gorm.DB {
	pattern := "%" + query + "%"
	return func(q *gorm.DB) *gorm.DB {
		return q.Where(
			`to_tsvector('simple', notes.title || ' ' || notes.content) @@ plainto_tsquery('simple', ?)
				OR notes.title ILIKE ? OR notes.content ILIKE ?`,
			query, pattern, pattern)
	}
}
