// Package memory implements the agent scratch store: key-scoped documents
// whose lifetime is the process, independent of any room.
package memory

import (
	"fmt"
	"sync"
)

// InMemoryStore is a process-local core.MemoryStore. Documents are keyed by
// "(scope):(actorId)"; Put shallow-merges deltas into the existing document,
// it never replaces it wholesale. Get returns a defensive copy.
//
// Concurrency: protected by RWMutex.
type InMemoryStore struct {
	mu        sync.RWMutex
	documents map[string]map[string]any
}

// NewInMemoryStore creates an empty in-memory agent memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{documents: make(map[string]map[string]any)}
}

func key(scope, actorID string) string {
	return fmt.Sprintf("%s:%s", scope, actorID)
}

// Get returns a shallow copy of the document for (scope, actorID). A missing
// document reads as empty, never as an error.
func (m *InMemoryStore) Get(scope, actorID string) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, exists := m.documents[key(scope, actorID)]
	if !exists {
		return make(map[string]any), nil
	}
	result := make(map[string]any, len(doc))
	for k, v := range doc {
		result[k] = v
	}
	return result, nil
}

// Put shallow-merges delta into the document for (scope, actorID), creating
// it on first write.
func (m *InMemoryStore) Put(scope, actorID string, delta map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(scope, actorID)
	if _, exists := m.documents[k]; !exists {
		m.documents[k] = make(map[string]any)
	}
	for field, v := range delta {
		m.documents[k][field] = v
	}
	return nil
}
