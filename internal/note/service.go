package note

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sharednotes/internal/directory"
)

// Store is the note/share storage contract the service drives. The
// gorm-backed Repo implements it.
type Store interface {
	CreateNote(ctx context.Context, n *Note) error
	NoteByID(ctx context.Context, noteID, viewerID uuid.UUID) (*Note, error)
	UpdateNote(ctx context.Context, n *Note) error
	SoftDeleteNote(ctx context.Context, noteID, ownerID uuid.UUID) (bool, error)
	ListNotes(ctx context.Context, q ListQuery) ([]Note, int64, error)
	SearchNotes(ctx context.Context, c SearchCriteria) ([]Note, int64, error)
	CreateShare(ctx context.Context, noteID, granterID, granteeID uuid.UUID) (*Share, bool, error)
	DeleteShare(ctx context.Context, noteID, shareID uuid.UUID) (bool, error)
	DeleteShareByGrantee(ctx context.Context, noteID, granteeID uuid.UUID) (bool, error)
	SharesForNote(ctx context.Context, noteID uuid.UUID) ([]Share, error)
}

// TagStore is the slice of the tag catalog the note paths need.
type TagStore interface {
	TagsByIDs(ctx context.Context, ids []uuid.UUID) ([]Tag, error)
}

// Notifier is told about newly created shares. Enqueue failures are
// logged, never propagated: the share itself already exists.
type Notifier interface {
	EnqueueShareNotice(ctx context.Context, noteID, granterID, granteeID uuid.UUID) error
}

type Service struct {
	Store    Store
	Tags     TagStore
	Dir      directory.Directory
	Notifier Notifier
	Log      zerolog.Logger
}

type CreateNoteInput struct {
	Title       string
	Content     string
	TagIDs      []uuid.UUID
	ShareEmails []string
}

type UpdateNoteInput struct {
	Title   *string
	Content *string
	TagIDs  []uuid.UUID // nil keeps the current tag set, empty clears it
}

// ShareInfo pairs a share with its grantee's resolved email for the
// response layer.
type ShareInfo struct {
	Share
	GranteeEmail string
}

// Create validates every share target BEFORE the insert to keep the
// non-atomic create+share window small. If sharing still fails after
// the note exists, the note is best-effort soft-deleted as a
// compensating action and the share error is returned.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, in CreateNoteInput) (*Note, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" {
		return nil, invalidf("title required")
	}
	if content == "" {
		return nil, invalidf("content required")
	}

	tags, err := s.lookupTags(ctx, in.TagIDs)
	if err != nil {
		return nil, err
	}

	granteeIDs, err := s.resolveTargets(ctx, ownerID, in.ShareEmails)
	if err != nil {
		return nil, err
	}

	n := &Note{
		Title:   title,
		Content: content,
		OwnerID: ownerID,
		Tags:    tags,
	}
	if err := s.Store.CreateNote(ctx, n); err != nil {
		return nil, err
	}

	for _, granteeID := range granteeIDs {
		if _, _, err := s.Store.CreateShare(ctx, n.ID, ownerID, granteeID); err != nil {
			s.Log.Error().Err(err).
				Str("note_id", n.ID.String()).
				Str("grantee_id", granteeID.String()).
				Msg("share failed after create, rolling the note back")
			if _, derr := s.Store.SoftDeleteNote(ctx, n.ID, ownerID); derr != nil {
				s.Log.Error().Err(derr).Str("note_id", n.ID.String()).
					Msg("compensating delete failed, note left without its shares")
			}
			return nil, err
		}
		s.notifyShare(ctx, n.ID, ownerID, granteeID)
	}

	s.Log.Info().Str("note_id", n.ID.String()).
		Str("owner_id", ownerID.String()).
		Int("shares", len(granteeIDs)).
		Msg("note created")
	return n, nil
}

func (s *Service) Get(ctx context.Context, userID, noteID uuid.UUID) (*Note, error) {
	n, err := s.Store.NoteByID(ctx, noteID, userID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrNotFound
	}
	return n, nil
}

func (s *Service) Update(ctx context.Context, userID, noteID uuid.UUID, in UpdateNoteInput) (*Note, error) {
	n, err := s.ownedNote(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, invalidf("title required")
		}
		n.Title = title
	}
	if in.Content != nil {
		content := strings.TrimSpace(*in.Content)
		if content == "" {
			return nil, invalidf("content required")
		}
		n.Content = content
	}
	if in.TagIDs != nil {
		tags, err := s.lookupTags(ctx, in.TagIDs)
		if err != nil {
			return nil, err
		}
		n.Tags = tags
	}

	if err := s.Store.UpdateNote(ctx, n); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, noteID)
}

func (s *Service) Delete(ctx context.Context, userID, noteID uuid.UUID) error {
	if _, err := s.ownedNote(ctx, userID, noteID); err != nil {
		return err
	}
	ok, err := s.Store.SoftDeleteNote(ctx, noteID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	s.Log.Info().Str("note_id", noteID.String()).Str("owner_id", userID.String()).Msg("note deleted")
	return nil
}

// ListSection pages through one visibility section.
func (s *Service) ListSection(ctx context.Context, userID uuid.UUID, section Section, page, perPage int, tagIDs []uuid.UUID) ([]Note, Pagination, error) {
	if err := ValidatePage(page, perPage); err != nil {
		return nil, Pagination{}, err
	}
	notes, total, err := s.Store.ListNotes(ctx, ListQuery{
		UserID:  userID,
		Section: &section,
		TagIDs:  tagIDs,
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		return nil, Pagination{}, err
	}
	return notes, Paginate(total, page, perPage), nil
}

// ListOwned pages through every non-deleted note the user owns,
// regardless of share state.
func (s *Service) ListOwned(ctx context.Context, userID uuid.UUID, page, perPage int, tagIDs []uuid.UUID) ([]Note, Pagination, error) {
	if err := ValidatePage(page, perPage); err != nil {
		return nil, Pagination{}, err
	}
	notes, total, err := s.Store.ListNotes(ctx, ListQuery{
		UserID:  userID,
		TagIDs:  tagIDs,
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		return nil, Pagination{}, err
	}
	return notes, Paginate(total, page, perPage), nil
}

func (s *Service) Search(ctx context.Context, c SearchCriteria) ([]Note, Pagination, error) {
	if err := c.Validate(); err != nil {
		return nil, Pagination{}, err
	}
	notes, total, err := s.Store.SearchNotes(ctx, c)
	if err != nil {
		return nil, Pagination{}, err
	}
	s.Log.Debug().
		Str("user_id", c.UserID.String()).
		Str("section", string(c.Section)).
		Int("page", c.Page).
		Int64("total", total).
		Msg("search completed")
	return notes, Paginate(total, c.Page, c.PerPage), nil
}

// Share grants access to every resolved target. All emails are resolved
// before the first share is written; existing shares are touched
// idempotently. Returns the full share list afterwards.
func (s *Service) Share(ctx context.Context, ownerID, noteID uuid.UUID, emails []string) ([]ShareInfo, error) {
	if len(emails) == 0 {
		return nil, invalidf("at least one share target required")
	}
	if _, err := s.ownedNote(ctx, ownerID, noteID); err != nil {
		return nil, err
	}

	granteeIDs, err := s.resolveTargets(ctx, ownerID, emails)
	if err != nil {
		return nil, err
	}

	for _, granteeID := range granteeIDs {
		_, created, err := s.Store.CreateShare(ctx, noteID, ownerID, granteeID)
		if err != nil {
			return nil, err
		}
		if created {
			s.notifyShare(ctx, noteID, ownerID, granteeID)
		}
	}
	return s.Shares(ctx, ownerID, noteID)
}

// Shares lists a note's shares with grantee emails. This is a read
// path: a grantee viewing the note gets an empty list rather than an
// access error, and only an invisible note answers ErrNotFound.
func (s *Service) Shares(ctx context.Context, userID, noteID uuid.UUID) ([]ShareInfo, error) {
	n, err := s.Store.NoteByID(ctx, noteID, userID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrNotFound
	}
	if n.OwnerID != userID {
		return []ShareInfo{}, nil
	}
	shares, err := s.Store.SharesForNote(ctx, noteID)
	if err != nil {
		return nil, err
	}

	infos := make([]ShareInfo, 0, len(shares))
	for _, sh := range shares {
		email, err := s.Dir.EmailByUserID(ctx, sh.GranteeID)
		if err != nil {
			if !errors.Is(err, directory.ErrUserNotFound) {
				s.Log.Warn().Err(err).Str("grantee_id", sh.GranteeID.String()).
					Msg("grantee email lookup failed")
			}
			email = ""
		}
		infos = append(infos, ShareInfo{Share: sh, GranteeEmail: email})
	}
	return infos, nil
}

func (s *Service) Unshare(ctx context.Context, ownerID, noteID, shareID uuid.UUID) error {
	if _, err := s.ownedNote(ctx, ownerID, noteID); err != nil {
		return err
	}
	ok, err := s.Store.DeleteShare(ctx, noteID, shareID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *Service) UnshareByEmail(ctx context.Context, ownerID, noteID uuid.UUID, email string) error {
	if _, err := s.ownedNote(ctx, ownerID, noteID); err != nil {
		return err
	}
	granteeID, err := s.Dir.UserIDByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, directory.ErrUserNotFound) {
			return &UnresolvedTargetError{Email: email}
		}
		return err
	}
	ok, err := s.Store.DeleteShareByGrantee(ctx, noteID, granteeID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// ownedNote loads the note and requires ownership. A visible but
// non-owned note answers ErrAccessDenied; an invisible one ErrNotFound.
func (s *Service) ownedNote(ctx context.Context, userID, noteID uuid.UUID) (*Note, error) {
	n, err := s.Store.NoteByID(ctx, noteID, userID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrNotFound
	}
	if n.OwnerID != userID {
		return nil, ErrAccessDenied
	}
	return n, nil
}

// lookupTags maps requested ids to existing tags, silently dropping
// unknown ones. Only the search path lets unknown ids through (where
// they are unmatchable).
func (s *Service) lookupTags(ctx context.Context, ids []uuid.UUID) ([]Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.Tags.TagsByIDs(ctx, ids)
}

// resolveTargets turns share emails into user ids, failing on the first
// unresolvable one before any mutation has happened.
func (s *Service) resolveTargets(ctx context.Context, ownerID uuid.UUID, emails []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(emails))
	seen := make(map[uuid.UUID]struct{}, len(emails))
	for _, email := range emails {
		email = strings.TrimSpace(email)
		if email == "" {
			return nil, invalidf("share target email must not be empty")
		}
		id, err := s.Dir.UserIDByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, directory.ErrUserNotFound) {
				return nil, &UnresolvedTargetError{Email: email}
			}
			return nil, err
		}
		if id == ownerID {
			return nil, invalidf("cannot share a note with its owner")
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Service) notifyShare(ctx context.Context, noteID, granterID, granteeID uuid.UUID) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.EnqueueShareNotice(ctx, noteID, granterID, granteeID); err != nil {
		s.Log.Warn().Err(err).Str("note_id", noteID.String()).Msg("share notice enqueue failed")
	}
}
