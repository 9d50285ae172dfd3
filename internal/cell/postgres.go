package cell

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // Postgres driver
)

// PostgresStore persists cells in Postgres or CockroachDB for fleet
// deployments where many nodes share one durable store. Per-owner write
// ordering is still provided by the actor layer, not by the database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects with the given DSN and ensures the schema.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s := &PostgresStore{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS cells (
			owner      TEXT NOT NULL,
			key        TEXT NOT NULL,
			value      BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (owner, key)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create cells table: %w", err)
	}
	return nil
}

// Open returns the cell for owner.
func (s *PostgresStore) Open(owner string) Cell {
	return &sqlCell{db: s.db, owner: owner, placeholder: dollarPlaceholders}
}

// Close closes the underlying database.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
