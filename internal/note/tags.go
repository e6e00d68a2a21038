package note

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TagRepo manages the flat tag catalog. Names are trimmed and unique
// case-insensitively; the lower(name) unique index is the backstop.
type TagRepo struct {
	DB *gorm.DB
}

func (r *TagRepo) AllTags(ctx context.Context) ([]Tag, error) {
	var tags []Tag
	if err := r.DB.WithContext(ctx).Order("lower(name) asc").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// TagsByIDs returns the subset of ids that exist. Callers on the note
// create/update path silently drop whatever is missing.
func (r *TagRepo) TagsByIDs(ctx context.Context, ids []uuid.UUID) ([]Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []Tag
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("lookup tags: %w", err)
	}
	return tags, nil
}

func (r *TagRepo) CreateTag(ctx context.Context, name string) (*Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidf("tag name required")
	}
	taken, err := r.nameTaken(ctx, name, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrTagExists
	}
	t := Tag{Name: name}
	if err := r.DB.WithContext(ctx).Create(&t).Error; err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return &t, nil
}

func (r *TagRepo) RenameTag(ctx context.Context, id uuid.UUID, name string) (*Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidf("tag name required")
	}
	var t Tag
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	taken, err := r.nameTaken(ctx, name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrTagExists
	}
	if err := r.DB.WithContext(ctx).Model(&t).Update("name", name).Error; err != nil {
		return nil, fmt.Errorf("rename tag: %w", err)
	}
	t.Name = name
	return &t, nil
}

// DeleteTag removes the tag and its note associations. Tags have no
// soft-delete state.
func (r *TagRepo) DeleteTag(ctx context.Context, id uuid.UUID) (bool, error) {
	var deleted bool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", id).Delete(&NoteTag{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&Tag{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete tag: %w", err)
	}
	return deleted, nil
}

func (r *TagRepo) nameTaken(ctx context.Context, name string, exclude uuid.UUID) (bool, error) {
	var count int64
	q := r.DB.WithContext(ctx).Model(&Tag{}).Where("lower(name) = lower(?)", name)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check tag name: %w", err)
	}
	return count > 0, nil
}
