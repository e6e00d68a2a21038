// Package directory resolves user identities. Notes and shares never
// store emails; everything below the request layer works with user ids
// and asks the directory to translate at the edges.
package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned when an email or id does not resolve.
// Callers surface it as a client-input fault, not a server error.
var ErrUserNotFound = errors.New("user not found")

type Directory interface {
	// UserIDByEmail resolves an email to a user id, ErrUserNotFound
	// when no such user exists.
	UserIDByEmail(ctx context.Context, email string) (uuid.UUID, error)

	// EmailByUserID resolves a user id back to its email,
	// ErrUserNotFound when the id is unknown.
	EmailByUserID(ctx context.Context, id uuid.UUID) (string, error)
}
