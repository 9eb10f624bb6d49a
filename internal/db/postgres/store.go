package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/kailas-cloud/talentdex/internal/db"
)

// Compile-time check: Store implements db.DocumentStore.
var _ db.DocumentStore = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS candidates (
	id         TEXT PRIMARY KEY,
	doc        JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Config holds connection parameters for a Postgres store.
type Config struct {
	URL          string
	MaxOpenConns int
}

// Store keeps candidate documents as JSONB rows.
type Store struct {
	db *sql.DB
}

// NewStore opens a connection pool. Connectivity is checked by WaitForReady.
func NewStore(cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("url is required")
	}

	conn, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	conn.SetMaxOpenConns(maxOpen)
	conn.SetMaxIdleConns(maxOpen / 2)
	conn.SetConnMaxLifetime(5 * time.Minute)

	return &Store{db: conn}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close closes the pool.
func (s *Store) Close() {
	_ = s.db.Close()
}

// WaitForReady polls Ping until the database responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// Migrate creates the candidates table when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return wrap(db.OpMigrate, err)
	}
	return nil
}

// GetDoc returns the stored JSON document.
func (s *Store) GetDoc(ctx context.Context, id string) ([]byte, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM candidates WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, db.ErrKeyNotFound
	}
	if err != nil {
		return nil, wrap(db.OpSelect, err)
	}
	return doc, nil
}

// GetDocs returns documents in ids order; missing rows yield nil entries.
func (s *Store) GetDocs(ctx context.Context, ids []string) ([][]byte, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, doc FROM candidates WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, wrap(db.OpSelect, err)
	}
	defer func() { _ = rows.Close() }()

	byID := make(map[string][]byte, len(ids))
	for rows.Next() {
		var id string
		var doc []byte
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, wrap(db.OpSelect, err)
		}
		byID[id] = doc
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(db.OpSelect, err)
	}

	out := make([][]byte, len(ids))
	for i, id := range ids {
		out[i] = byID[id]
	}
	return out, nil
}

// InsertDoc inserts a document and reports whether the row was new.
// An existing id is left untouched.
func (s *Store) InsertDoc(ctx context.Context, id string, doc []byte) (bool, error) {
	const q = `
		INSERT INTO candidates (id, doc, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO NOTHING`

	res, err := s.db.ExecContext(ctx, q, id, doc)
	if err != nil {
		return false, wrap(db.OpInsert, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrap(db.OpInsert, err)
	}
	return n == 1, nil
}

// MergeDoc merges partial into the stored document with jsonb concatenation.
func (s *Store) MergeDoc(ctx context.Context, id string, partial []byte) error {
	const q = `UPDATE candidates SET doc = doc || $2::jsonb, updated_at = NOW() WHERE id = $1`

	res, err := s.db.ExecContext(ctx, q, id, partial)
	if err != nil {
		return wrap(db.OpUpsert, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap(db.OpUpsert, err)
	}
	if n == 0 {
		return db.ErrKeyNotFound
	}
	return nil
}

// DeleteDoc removes a document; a missing row is db.ErrKeyNotFound.
func (s *Store) DeleteDoc(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return wrap(db.OpDelete, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap(db.OpDelete, err)
	}
	if n == 0 {
		return db.ErrKeyNotFound
	}
	return nil
}

// ListIDs returns all candidate IDs in ascending order.
func (s *Store) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM candidates ORDER BY id`)
	if err != nil {
		return nil, wrap(db.OpSelect, err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, wrap(db.OpSelect, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(db.OpSelect, err)
	}
	return ids, nil
}

// wrap attaches the operation and, for server errors, the SQLSTATE code.
func wrap(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &db.Error{Op: op, Err: fmt.Errorf("%s (sqlstate %s): %w", pqErr.Message, pqErr.Code, err)}
	}
	return &db.Error{Op: op, Err: err}
}
