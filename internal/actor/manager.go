package actor

import (
	"context"
	"sync"
	"time"
)

// Manager owns the identity-to-actor mapping and guarantees at most one
// live instance per identity within this process. It also plays the
// substrate's reclamation role: idle instances are evicted and rebuilt
// from durable state on their next call.
type Manager struct {
	opts Options

	mu     sync.Mutex
	actors map[string]*Actor
}

// NewManager creates a manager that builds actors with the given options.
func NewManager(opts Options) *Manager {
	return &Manager{
		opts:   opts,
		actors: make(map[string]*Actor),
	}
}

// InstanceFor returns the live actor for identity, creating it lazily.
// The instance stays uninitialized until its first call.
func (m *Manager) InstanceFor(identity string) *Actor {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.actors[identity]
	if !ok {
		a = newActor(identity, m.opts)
		m.actors[identity] = a
	}
	return a
}

// Dispatch routes one call to the actor addressed by identity. If the
// instance is reclaimed between lookup and call, a fresh one is fetched;
// session state is durable, so the retry is invisible to the caller.
func (m *Manager) Dispatch(ctx context.Context, identity string, call Call) Response {
	for {
		if resp, ok := m.InstanceFor(identity).tryCall(ctx, call); ok {
			return resp
		}
	}
}

// Len returns the number of live instances.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.actors)
}

// EvictIdle drops instances idle for at least maxIdle and returns how
// many were evicted. Busy instances are skipped. Session state lives in
// the durable cell, so eviction is invisible to correctness; only warm
// in-memory caches are lost.
func (m *Manager) EvictIdle(maxIdle time.Duration) int {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	evicted := 0
	for identity, a := range m.actors {
		if a.busy() || a.idleSince(now) < maxIdle {
			continue
		}
		// Close first, then re-check: a caller that raced InstanceFor
		// either sees closed and retries, or is visible as busy here.
		a.closed.Store(true)
		if a.busy() {
			a.closed.Store(false)
			continue
		}
		delete(m.actors, identity)
		evicted++
	}
	return evicted
}

// Sweep runs EvictIdle on a ticker until ctx is done.
func (m *Manager) Sweep(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.EvictIdle(maxIdle)
		}
	}
}
