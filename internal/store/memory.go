// internal/store/memory.go
//
// In-memory implementation of the session Store interface.
// This is a lightweight persistence layer for live puzzle-solving runs,
// which only matter while the agent driving them is still connected.
//
// Characteristics:
//   - Stores *runner.Session objects keyed by run ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts; finished runs are persisted
//     separately in SQLite by the HTTP layer.
//   - Errors are returned for missing run IDs on Get().

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/bracketlab/arena/internal/runner"
)

// Store defines the persistence interface for live run sessions.
// Implementations may be backed by memory (this package), Redis, SQL, etc.
type Store interface {
	// Save persists or updates a session.
	Save(ctx context.Context, s *runner.Session) error

	// Get retrieves a session by run ID.
	// Returns an error if the session is not found.
	Get(ctx context.Context, id string) (*runner.Session, error)

	// Delete removes a session, typically after its run is finalized.
	Delete(ctx context.Context, id string) error
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex               // guards sessions map
	sessions map[string]*runner.Session // keyed by Session.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*runner.Session)}
}

// Save adds or updates the session in the map.
func (m *memory) Save(ctx context.Context, s *runner.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

// Get looks a session up by run ID.
func (m *memory) Get(ctx context.Context, id string) (*runner.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, errors.New("not found")
}

// Delete drops a session; deleting a missing ID is a no-op.
func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
