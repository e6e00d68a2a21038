package db

import (
	"fmt"

	"sharednotes/internal/auth"
	"sharednotes/internal/jobs"
	"sharednotes/internal/note"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// Tables
	if err := gdb.AutoMigrate(
		&note.Note{},
		&note.Tag{},
		&note.NoteTag{},
		&note.Share{},
		&jobs.Job{},
		&auth.User{},
	); err != nil {
		return err
	}

	// Tag names are unique case-insensitively
	if err := gdb.Exec(`create unique index if not exists uq_tags_lower_name on tags(lower(name));`).Error; err != nil {
		return err
	}

	// One active share per (note, grantee); backs the idempotent create
	if err := gdb.Exec(`create unique index if not exists uq_note_shares_note_grantee on note_shares(note_id, grantee_id);`).Error; err != nil {
		return err
	}

	// Full-text search over title+content
	if err := gdb.Exec(`create index if not exists idx_notes_fts on notes using gin (to_tsvector('simple', title || ' ' || content));`).Error; err != nil {
		return err
	}

	// Helpful indexes
	stmts := []string{
		`create index if not exists idx_notes_owner_updated on notes(owner_id, updated_at desc);`,
		`create index if not exists idx_note_shares_granter on note_shares(granter_id);`,
		`create index if not exists idx_note_tags_tag on note_tags(tag_id);`,
		`create index if not exists idx_jobs_due on jobs(status, run_at);`,
		`create index if not exists idx_jobs_lock on jobs(status, locked_at);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
