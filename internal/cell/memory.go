package cell

import (
	"context"
	"sync"
)

// MemoryStore provides an in-memory Store implementation for testing and
// local runs. Values survive actor eviction but not process restart.
type MemoryStore struct {
	mu    sync.RWMutex
	cells map[string]map[string][]byte
}

// NewMemoryStore creates a new in-memory cell store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cells: map[string]map[string][]byte{}}
}

// Open returns the cell for owner, creating its key space lazily.
func (s *MemoryStore) Open(owner string) Cell {
	return &memoryCell{store: s, owner: owner}
}

// Close releases all key spaces.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cells = map[string]map[string][]byte{}
	return nil
}

type memoryCell struct {
	store *MemoryStore
	owner string
}

func (c *memoryCell) Get(ctx context.Context, key string) ([]byte, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	value, ok := c.store.cells[c.owner][key]
	if !ok {
		return nil, ErrNotSet
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (c *memoryCell) Set(ctx context.Context, key string, value []byte) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	keys, ok := c.store.cells[c.owner]
	if !ok {
		keys = map[string][]byte{}
		c.store.cells[c.owner] = keys
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	keys[key] = stored
	return nil
}

func (c *memoryCell) Delete(ctx context.Context, key string) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	delete(c.store.cells[c.owner], key)
	return nil
}
