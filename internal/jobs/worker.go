package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"sharednotes/internal/directory"
)

// Worker drains the share-notification queue. Delivery here is a
// structured log line; a mail or push integration would slot into
// handleShareNotice without touching the queue mechanics.
type Worker struct {
	ID   string
	Repo *Repo
	DB   *gorm.DB
	Dir  directory.Directory
	Log  zerolog.Logger
}

type noteRow struct {
	ID        uuid.UUID `gorm:"column:id"`
	Title     string    `gorm:"column:title"`
	IsDeleted bool      `gorm:"column:is_deleted"`
}

func (noteRow) TableName() string { return "notes" }

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(800 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, err := w.Repo.Claim(w.ID)
			if err != nil {
				w.Log.Error().Err(err).Msg("worker claim failed")
				continue
			}
			if job == nil {
				continue
			}
			w.handle(ctx, job)
		}
	}
}

func (w *Worker) handle(ctx context.Context, job *Job) {
	switch job.Type {
	case "SHARE_NOTIFY":
		w.handleShareNotice(ctx, job)
	default:
		_ = w.Repo.MarkFailed(job.ID, "unknown job type")
	}
}

func (w *Worker) handleShareNotice(ctx context.Context, job *Job) {
	var p ShareNoticePayload
	if err := json.Unmarshal(job.Payload, &p); err != nil {
		_ = w.Repo.MarkFailed(job.ID, "bad payload")
		return
	}

	var n noteRow
	if err := w.DB.Where("id = ?", p.NoteID).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = w.Repo.MarkDone(job.ID)
			return
		}
		w.retry(job, "db read error")
		return
	}

	// The note may have been deleted or unshared since the enqueue;
	// a stale notice is dropped, not delivered.
	if n.IsDeleted || !w.shareStillActive(p) {
		_ = w.Repo.MarkDone(job.ID)
		return
	}

	email, err := w.Dir.EmailByUserID(ctx, p.GranteeID)
	if err != nil {
		if errors.Is(err, directory.ErrUserNotFound) {
			_ = w.Repo.MarkDone(job.ID)
			return
		}
		w.retry(job, "directory lookup error")
		return
	}

	w.Log.Info().
		Str("note_id", p.NoteID.String()).
		Str("note_title", n.Title).
		Str("granter_id", p.GranterID.String()).
		Str("grantee_email", email).
		Msg("share notice delivered")
	_ = w.Repo.MarkDone(job.ID)
}

func (w *Worker) shareStillActive(p ShareNoticePayload) bool {
	var count int64
	if err := w.DB.Table("note_shares").
		Where("note_id = ? AND grantee_id = ?", p.NoteID, p.GranteeID).
		Count(&count).Error; err != nil {
		return true // deliver on lookup failure rather than drop silently
	}
	return count > 0
}

func (w *Worker) retry(job *Job, errMsg string) {
	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		_ = w.Repo.MarkFailed(job.ID, errMsg)
		return
	}

	sec := math.Min(math.Pow(2, float64(attempts)), 600)
	next := time.Now().Add(time.Duration(sec) * time.Second)

	_ = w.Repo.RetryLater(job.ID, attempts, next, errMsg)
}
