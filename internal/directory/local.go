package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sharednotes/internal/auth"
)

// LocalDirectory resolves identities against the service's own users
// table. Used when no external directory is configured (dev and tests).
type LocalDirectory struct {
	DB *gorm.DB
}

func (d *LocalDirectory) UserIDByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	var u auth.User
	err := d.DB.WithContext(ctx).
		Where("lower(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, ErrUserNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("lookup user by email: %w", err)
	}
	return u.ID, nil
}

func (d *LocalDirectory) EmailByUserID(ctx context.Context, id uuid.UUID) (string, error) {
	var u auth.User
	err := d.DB.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup user by id: %w", err)
	}
	return u.Email, nil
}
