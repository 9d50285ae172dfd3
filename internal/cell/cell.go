// Package cell provides the durable key-value cell backing per-identity
// session state.
//
// A cell is a single key space scoped to exactly one session actor. The cell
// itself provides no locking or cross-cell operations: serialization comes
// from the owning actor, which processes calls one at a time. Writes are
// acknowledged only after they are durable in the backing store.
package cell

import (
	"context"
	"errors"
)

var (
	// ErrNotSet is returned by Get when the key has never been written.
	ErrNotSet = errors.New("key not set")

	// ErrUnavailable indicates the backing store could not be reached.
	// Callers must not treat this as "no prior state".
	ErrUnavailable = errors.New("cell storage unavailable")
)

// Cell is a key-value store scoped to a single owner.
type Cell interface {
	// Get returns the value for key, or ErrNotSet if it was never written.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set durably writes value under key. Last write wins within the
	// owning actor's serialized call ordering.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Store hands out cells by owner identity. Implementations must keep the
// key spaces of different owners fully disjoint.
type Store interface {
	Open(owner string) Cell
	Close() error
}
