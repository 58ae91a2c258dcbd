package core

// MemoryStore is key-scoped scratch storage for agents, independent of room
// lifecycle. Documents are keyed by (scope, actorID); Put shallow-merges the
// delta into the existing document, it never replaces it wholesale.
type MemoryStore interface {
	Get(scope, actorID string) (map[string]any, error)
	Put(scope, actorID string, delta map[string]any) error
}
