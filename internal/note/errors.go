package note

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both "does not exist" and "exists but not
	// visible to the caller" so existence never leaks.
	ErrNotFound = errors.New("not found")

	// ErrAccessDenied means the note is visible but the action needs
	// ownership. Only mutation paths return it.
	ErrAccessDenied = errors.New("access denied")

	ErrTagExists = errors.New("tag already exists")
)

// ValidationError marks client input the core refuses to act on:
// malformed ids, out-of-range pagination, unknown sections, searches
// without criteria.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalidf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// UnresolvedTargetError reports a share target the directory could not
// resolve. Surfaced as a client fault naming the target.
type UnresolvedTargetError struct {
	Email string
}

func (e *UnresolvedTargetError) Error() string {
	return fmt.Sprintf("no user found for email %q", e.Email)
}
