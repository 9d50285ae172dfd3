package cell

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver
)

// SQLiteStore persists cells in a single SQLite database, keyed by
// (owner, key). Suitable for single-node deployments.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if necessary creates) the database at path.
// Use ":memory:" for an ephemeral store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// The driver allows concurrent readers but a single writer; one
	// connection keeps write ordering deterministic.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS cells (
			owner      TEXT NOT NULL,
			key        TEXT NOT NULL,
			value      BLOB NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (owner, key)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create cells table: %w", err)
	}
	return nil
}

// Open returns the cell for owner.
func (s *SQLiteStore) Open(owner string) Cell {
	return &sqlCell{db: s.db, owner: owner, placeholder: questionPlaceholders}
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type placeholderStyle int

const (
	questionPlaceholders placeholderStyle = iota
	dollarPlaceholders
)

// sqlCell implements Cell over a shared *sql.DB, scoping every statement
// by owner. It serves both the SQLite and Postgres stores.
type sqlCell struct {
	db          *sql.DB
	owner       string
	placeholder placeholderStyle
}

func (c *sqlCell) rebind(query string) string {
	if c.placeholder == questionPlaceholders {
		return query
	}
	out := make([]byte, 0, len(query)+8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			out = append(out, fmt.Sprintf("$%d", n)...)
			continue
		}
		out = append(out, query[i])
	}
	return string(out)
}

func (c *sqlCell) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := c.db.QueryRowContext(ctx,
		c.rebind(`SELECT value FROM cells WHERE owner = ? AND key = ?`),
		c.owner, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotSet
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return value, nil
}

func (c *sqlCell) Set(ctx context.Context, key string, value []byte) error {
	_, err := c.db.ExecContext(ctx,
		c.rebind(`
			INSERT INTO cells (owner, key, value, updated_at)
			VALUES (?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (owner, key) DO UPDATE
			SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
		`),
		c.owner, key, value,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (c *sqlCell) Delete(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx,
		c.rebind(`DELETE FROM cells WHERE owner = ? AND key = ?`),
		c.owner, key,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
