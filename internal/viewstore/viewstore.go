// Package viewstore keeps each file's view state (visible columns and sort)
// in a SQLite database so it survives restarts.
package viewstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/zjrosen/tabula/internal/datatable"
	"github.com/zjrosen/tabula/internal/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS view_state (
	path       TEXT PRIMARY KEY,
	state      TEXT NOT NULL,
	updated_at DATETIME NOT NULL
);`

// Store is an open view state database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path. The special path ":memory:"
// gives a private in-memory database.
func Open(path string) (*Store, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating state directory: %w", err)
		}
		dsn = "file:" + path
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		log.ErrorErr(log.CatViewStore, "Failed to open database", err, "path", path)
		return nil, err
	}
	// An in-memory database exists per connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	log.Debug(log.CatViewStore, "Opened view store", "path", path)
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Load returns the state saved for file, or false when there is none.
func (s *Store) Load(ctx context.Context, file string) (*datatable.PersistedState, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT state FROM view_state WHERE path = ?`, file).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading view state: %w", err)
	}
	var ps datatable.PersistedState
	if err := json.Unmarshal([]byte(raw), &ps); err != nil {
		log.ErrorErr(log.CatViewStore, "Discarding corrupt view state", err, "path", file)
		return nil, false, nil
	}
	return &ps, true, nil
}

// Save stores ps for file, replacing any earlier record.
func (s *Store) Save(ctx context.Context, file string, ps datatable.PersistedState) error {
	raw, err := json.Marshal(ps)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO view_state (path, state, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		file, string(raw), s.now().UTC())
	if err != nil {
		return fmt.Errorf("saving view state: %w", err)
	}
	log.Debug(log.CatViewStore, "Saved view state", "path", file, "visible", len(ps.VisibleColumns), "sort", len(ps.SortSpec))
	return nil
}

// Delete forgets the state of file.
func (s *Store) Delete(ctx context.Context, file string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM view_state WHERE path = ?`, file)
	return err
}

// Prune removes records not updated since before.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM view_state WHERE updated_at < ?`, before.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
