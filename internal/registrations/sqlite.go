package registrations

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/JaimeStill/pashuvision/pkg/repository"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS registrations (
	id         TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the SQLite database at path.
// The caller owns the returned connection and must close it.
func OpenSQLite(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	return db, nil
}

// NewSQLiteStore returns a Store over db, creating its table.
func NewSQLiteStore(ctx context.Context, db *sql.DB) (Store, error) {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("create registrations table: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

func scanRegistration(s repository.Scanner) (Registration, error) {
	var data string
	if err := s.Scan(&data); err != nil {
		return Registration{}, err
	}
	reg, err := decode([]byte(data))
	if err != nil {
		return Registration{}, err
	}
	return *reg, nil
}

func (s *sqliteStore) GetAll(ctx context.Context) ([]Registration, error) {
	regs, err := repository.QueryMany(ctx, s.db, `SELECT data FROM registrations ORDER BY id`, nil, scanRegistration)
	if err != nil {
		return nil, fmt.Errorf("query registrations: %w", err)
	}
	return regs, nil
}

func (s *sqliteStore) Find(ctx context.Context, id string) (*Registration, error) {
	reg, err := repository.QueryOne(ctx, s.db, `SELECT data FROM registrations WHERE id = ?`, []any{id}, scanRegistration)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, nil)
	}
	return &reg, nil
}

func (s *sqliteStore) Upsert(ctx context.Context, reg *Registration) error {
	if reg.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidRegistration)
	}
	data, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("encode registration: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO registrations (id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		reg.ID, string(data), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert registration %s: %w", reg.ID, err)
	}
	return nil
}

func (s *sqliteStore) Delete(ctx context.Context, id string) error {
	err := repository.ExecExpectOne(ctx, s.db, `DELETE FROM registrations WHERE id = ?`, id)
	return repository.MapError(err, ErrNotFound, nil)
}

func (s *sqliteStore) Count(ctx context.Context) (int, error) {
	return repository.QueryScalar[int](ctx, s.db, `SELECT COUNT(*) FROM registrations`)
}
