package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ligoview/ligoview/internal/viewstate"
	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("not found")

type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS views (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT UNIQUE NOT NULL,
    params TEXT NOT NULL,
    project TEXT NOT NULL,
    mode TEXT NOT NULL,
    created_at INTEGER NOT NULL DEFAULT (unixepoch()),
    updated_at INTEGER NOT NULL DEFAULT (unixepoch())
);

CREATE INDEX IF NOT EXISTS idx_views_name ON views(name);
CREATE INDEX IF NOT EXISTS idx_views_project ON views(project);

CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

func Open(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Apply schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveView stores v under name, replacing any view with the same name.
func (s *SQLiteStore) SaveView(ctx context.Context, name string, v *viewstate.ViewState) (*SavedView, error) {
	if name == "" {
		return nil, fmt.Errorf("view name is required")
	}

	now := time.Now().Unix()
	params := v.Encode()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO views (name, params, project, mode, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   params = excluded.params,
		   project = excluded.project,
		   mode = excluded.mode,
		   updated_at = excluded.updated_at`,
		name, params, v.Project, string(v.Mode), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save view: %w", err)
	}

	return s.GetView(ctx, name)
}

func (s *SQLiteStore) GetView(ctx context.Context, name string) (*SavedView, error) {
	var view SavedView
	var createdAt, updatedAt int64

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, params, project, mode, created_at, updated_at
		 FROM views WHERE name = ?`, name,
	).Scan(&view.ID, &view.Name, &view.Params, &view.Project, &view.Mode, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get view: %w", err)
	}

	view.CreatedAt = time.Unix(createdAt, 0)
	view.UpdatedAt = time.Unix(updatedAt, 0)

	return &view, nil
}

func (s *SQLiteStore) ListViews(ctx context.Context) ([]*SavedView, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, params, project, mode, created_at, updated_at
		 FROM views ORDER BY updated_at DESC, name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list views: %w", err)
	}
	defer rows.Close()

	var views []*SavedView
	for rows.Next() {
		var view SavedView
		var createdAt, updatedAt int64

		if err := rows.Scan(&view.ID, &view.Name, &view.Params, &view.Project, &view.Mode, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan view: %w", err)
		}

		view.CreatedAt = time.Unix(createdAt, 0)
		view.UpdatedAt = time.Unix(updatedAt, 0)

		views = append(views, &view)
	}

	return views, rows.Err()
}

func (s *SQLiteStore) DeleteView(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM views WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete view: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *SQLiteStore) CountViews(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM views`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count views: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set setting: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting: %w", err)
	}
	return value, nil
}
