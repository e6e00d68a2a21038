package note

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Repo is the gorm-backed storage layer for notes and shares. It is
// handed an explicitly constructed *gorm.DB; there is no package-level
// connection state.
type Repo struct {
	DB *gorm.DB
}

// ListQuery describes a plain (non-search) listing: one visibility
// section, or every non-deleted note the user owns when Section is nil,
// optionally narrowed by an AND tag filter.
type ListQuery struct {
	UserID  uuid.UUID
	Section *Section
	TagIDs  []uuid.UUID
	Page    int
	PerPage int
}

func (r *Repo) ListNotes(ctx context.Context, q ListQuery) ([]Note, int64, error) {
	base := func() *gorm.DB {
		db := r.DB.WithContext(ctx).Model(&Note{}).Scopes(notDeleted)
		if q.Section != nil {
			db = db.Scopes(r.sectionScope(q.UserID, *q.Section))
		} else {
			db = db.Where("notes.owner_id = ?", q.UserID)
		}
		if len(q.TagIDs) > 0 {
			db = db.Scopes(withAllTags(q.TagIDs))
		}
		return db
	}
	return r.fetchPage(ctx, base, q.Page, q.PerPage)
}

func (r *Repo) SearchNotes(ctx context.Context, c SearchCriteria) ([]Note, int64, error) {
	base := func() *gorm.DB {
		db := r.DB.WithContext(ctx).Model(&Note{}).
			Scopes(notDeleted, r.sectionScope(c.UserID, c.Section))
		if c.HasTagFilter() {
			db = db.Scopes(withAllTags(c.TagIDs))
		}
		if c.HasTextSearch() {
			db = db.Scopes(matchingText(c.Query))
		}
		return db
	}
	return r.fetchPage(ctx, base, c.Page, c.PerPage)
}

// fetchPage counts the candidate set, materializes one ordered page and
// loads the tag sets. The count wraps the id query in a derived table so
// GROUP BY/HAVING from the tag filter count distinct notes, and ordering
// is updated_at DESC with the id as tie-breaker so repeated identical
// queries paginate deterministically.
func (r *Repo) fetchPage(ctx context.Context, base func() *gorm.DB, page, perPage int) ([]Note, int64, error) {
	var total int64
	if err := r.DB.WithContext(ctx).
		Table("(?) AS matched", base().Select("notes.id")).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count notes: %w", err)
	}

	var notes []Note
	if err := base().Select("notes.*").
		Order("notes.updated_at DESC, notes.id ASC").
		Offset(Offset(page, perPage)).
		Limit(perPage).
		Find(&notes).Error; err != nil {
		return nil, 0, fmt.Errorf("list notes: %w", err)
	}

	if err := r.attachTags(ctx, notes); err != nil {
		return nil, 0, err
	}
	return notes, total, nil
}

// attachTags loads the tag sets for a page of notes in one round trip,
// aggregated per note as parallel text arrays.
func (r *Repo) attachTags(ctx context.Context, notes []Note) error {
	if len(notes) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(notes))
	for i := range notes {
		ids[i] = notes[i].ID
	}

	type tagRow struct {
		NoteID   uuid.UUID      `gorm:"column:note_id"`
		TagIDs   pq.StringArray `gorm:"column:tag_ids;type:text[]"`
		TagNames pq.StringArray `gorm:"column:tag_names;type:text[]"`
	}
	var rows []tagRow
	if err := r.DB.WithContext(ctx).Raw(`
select nt.note_id,
       array_agg(t.id::text order by t.name) as tag_ids,
       array_agg(t.name order by t.name) as tag_names
from note_tags nt
join tags t on t.id = nt.tag_id
where nt.note_id in ?
group by nt.note_id
`, ids).Scan(&rows).Error; err != nil {
		return fmt.Errorf("load note tags: %w", err)
	}

	byNote := make(map[uuid.UUID][]Tag, len(rows))
	for _, row := range rows {
		tags := make([]Tag, 0, len(row.TagIDs))
		for i := range row.TagIDs {
			id, err := uuid.Parse(row.TagIDs[i])
			if err != nil {
				return fmt.Errorf("load note tags: %w", err)
			}
			tags = append(tags, Tag{ID: id, Name: row.TagNames[i]})
		}
		byNote[row.NoteID] = tags
	}
	for i := range notes {
		notes[i].Tags = byNote[notes[i].ID]
	}
	return nil
}

func (r *Repo) CreateNote(ctx context.Context, n *Note) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(n).Error; err != nil {
			return err
		}
		return replaceNoteTags(tx, n.ID, n.Tags)
	})
	if err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	return nil
}

// NoteByID returns the note when the viewer owns it or holds a share on
// it, nil when it is absent, soft-deleted or invisible. The two cases
// are indistinguishable on purpose.
func (r *Repo) NoteByID(ctx context.Context, noteID, viewerID uuid.UUID) (*Note, error) {
	var n Note
	err := r.DB.WithContext(ctx).Model(&Note{}).Scopes(notDeleted).
		Where("notes.id = ?", noteID).
		Where("notes.owner_id = ? OR notes.id IN (?)", viewerID, r.receivedBy(viewerID)).
		First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	single := []Note{n}
	if err := r.attachTags(ctx, single); err != nil {
		return nil, err
	}
	return &single[0], nil
}

// UpdateNote writes title/content and replaces the tag set. The where
// clause re-checks ownership and the soft-delete flag so a concurrent
// delete cannot resurrect the note.
func (r *Repo) UpdateNote(ctx context.Context, n *Note) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Note{}).
			Where("id = ? AND owner_id = ? AND is_deleted = false", n.ID, n.OwnerID).
			Updates(map[string]any{
				"title":      n.Title,
				"content":    n.Content,
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("note_id = ?", n.ID).Delete(&NoteTag{}).Error; err != nil {
			return err
		}
		return replaceNoteTags(tx, n.ID, n.Tags)
	})
	if errors.Is(err, ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return nil
}

func replaceNoteTags(tx *gorm.DB, noteID uuid.UUID, tags []Tag) error {
	if len(tags) == 0 {
		return nil
	}
	links := make([]NoteTag, len(tags))
	for i, t := range tags {
		links[i] = NoteTag{NoteID: noteID, TagID: t.ID}
	}
	return tx.Create(&links).Error
}

// SoftDeleteNote flips the deletion flag. The row persists for audit but
// drops out of every visibility section.
func (r *Repo) SoftDeleteNote(ctx context.Context, noteID, ownerID uuid.UUID) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&Note{}).
		Where("id = ? AND owner_id = ? AND is_deleted = false", noteID, ownerID).
		Updates(map[string]any{
			"is_deleted": true,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("delete note: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// CreateShare grants the grantee access, idempotently: an existing
// (note, grantee) share is returned as-is with created=false.
func (r *Repo) CreateShare(ctx context.Context, noteID, granterID, granteeID uuid.UUID) (*Share, bool, error) {
	var existing Share
	err := r.DB.WithContext(ctx).
		Where("note_id = ? AND grantee_id = ?", noteID, granteeID).
		First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("lookup share: %w", err)
	}

	s := Share{NoteID: noteID, GranterID: granterID, GranteeID: granteeID}
	if err := r.DB.WithContext(ctx).Create(&s).Error; err != nil {
		return nil, false, fmt.Errorf("create share: %w", err)
	}
	return &s, true, nil
}

func (r *Repo) DeleteShare(ctx context.Context, noteID, shareID uuid.UUID) (bool, error) {
	res := r.DB.WithContext(ctx).
		Where("id = ? AND note_id = ?", shareID, noteID).
		Delete(&Share{})
	if res.Error != nil {
		return false, fmt.Errorf("delete share: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *Repo) DeleteShareByGrantee(ctx context.Context, noteID, granteeID uuid.UUID) (bool, error) {
	res := r.DB.WithContext(ctx).
		Where("note_id = ? AND grantee_id = ?", noteID, granteeID).
		Delete(&Share{})
	if res.Error != nil {
		return false, fmt.Errorf("delete share: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *Repo) SharesForNote(ctx context.Context, noteID uuid.UUID) ([]Share, error) {
	var shares []Share
	if err := r.DB.WithContext(ctx).
		Where("note_id = ?", noteID).
		Order("created_at asc").
		Find(&shares).Error; err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	return shares, nil
}
