package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/taskboard/client/internal/model"
)

// ActivityStore persists the global notification feed in a local SQLite
// database so activity survives restarts.
type ActivityStore struct {
	db *sqlx.DB
}

// NewActivityStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewActivityStore(dbPath string) (*ActivityStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &ActivityStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *ActivityStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *ActivityStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// Append inserts a feed entry. Generates an id if the entry has none.
func (s *ActivityStore) Append(ctx context.Context, entry model.FeedEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO activity (
			id, kind, title, project_id, task_id,
			deadline, raw_body, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Kind, entry.Title, entry.ProjectID, entry.TaskID,
		entry.Deadline, entry.RawBody, entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("appending activity entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *ActivityStore) Recent(ctx context.Context, limit int) ([]model.FeedEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	var entries []model.FeedEntry
	err := s.db.SelectContext(ctx, &entries, `
		SELECT id, kind, title, project_id, task_id, deadline, raw_body, created_at
		FROM activity
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent activity: %w", err)
	}
	return entries, nil
}

// Prune deletes everything older than the newest keep entries.
func (s *ActivityStore) Prune(ctx context.Context, keep int) error {
	if keep <= 0 {
		keep = 100
	}

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM activity WHERE id NOT IN (
			SELECT id FROM activity
			ORDER BY created_at DESC, id DESC
			LIMIT ?
		)`, keep)
	if err != nil {
		return fmt.Errorf("pruning activity: %w", err)
	}
	return nil
}
