// Package room implements the process-wide, in-memory registry owning room
// creation and lookup. A fresh Registry is constructed once at process start
// and passed to the components that need it; tests build isolated registries
// per case.
package room

import (
	"sync"

	"github.com/google/uuid"

	"github.com/syncroom/syncroom/core"
)

// Registry owns every live room in the process. Rooms are created on demand
// and live for the process lifetime; there is no deletion or expiry path.
// Safe for concurrent access.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*core.Room
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*core.Room)}
}

// Create allocates a room with a fresh id bound to an experience id.
func (r *Registry) Create(experienceID string) *core.Room {
	return r.GetOrCreate(uuid.NewString(), experienceID)
}

// GetOrCreate returns the room with the given id, creating it on first use.
// All callers share the same *core.Room instance; per-room synchronization
// lives on the room itself.
func (r *Registry) GetOrCreate(id, experienceID string) *core.Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rm, ok := r.rooms[id]; ok {
		return rm
	}
	rm := core.NewRoom(id, experienceID)
	r.rooms[id] = rm
	return rm
}

// Get returns an existing room, or nil and false when absent.
func (r *Registry) Get(id string) (*core.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[id]
	return rm, ok
}

// List returns all live rooms in unspecified order.
func (r *Registry) List() []*core.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]*core.Room, 0, len(r.rooms))
	for _, rm := range r.rooms {
		res = append(res, rm)
	}
	return res
}

// Len reports the number of live rooms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
