package core

import (
	"fmt"
	"time"

	"github.com/syncroom/syncroom/logging"
)

// ToolContext is the constrained surface a tool handler executes against. It
// is bound to the room's shared state as it existed when the invocation's
// turn began (a snapshot) and exposes exactly two effects:
//
//   - SetState(next): stage a wholesale replacement of the shared state,
//     applied by the gate on successful completion. There is no implicit
//     merge; if the handler never calls SetState the state is unchanged.
//   - SetMemory(partial): shallow-merge a delta into the actor's scratch
//     memory. Memory writes apply immediately and are independent of the
//     room's transactional scope.
type ToolContext struct {
	roomID    string
	actorID   string
	owner     string
	timestamp time.Time

	state     map[string]any
	nextState map[string]any
	stateSet  bool

	memoryScope string
	memoryStore MemoryStore
	memory      map[string]any

	*loggerAdapter
}

// NewToolContext binds a handler context to a state snapshot and the actor's
// memory document. The memory store may be nil, in which case SetMemory
// reports the service as not configured.
func NewToolContext(
	roomID, actorID, owner string,
	state map[string]any,
	memoryScope string,
	memoryStore MemoryStore,
	memory map[string]any,
	logger logging.Logger,
) *ToolContext {
	if owner == "" {
		owner = actorID
	}
	if memory == nil {
		memory = map[string]any{}
	}
	return &ToolContext{
		roomID:        roomID,
		actorID:       actorID,
		owner:         owner,
		timestamp:     time.Now(),
		state:         state,
		memoryScope:   memoryScope,
		memoryStore:   memoryStore,
		memory:        memory,
		loggerAdapter: newLoggerAdapter(logger),
	}
}

// RoomID returns the id of the room being mutated.
func (tc *ToolContext) RoomID() string { return tc.roomID }

// ActorID returns the invoking actor's room-scoped identity.
func (tc *ToolContext) ActorID() string { return tc.actorID }

// Owner returns the grouping tag of the invocation (defaults to the actor id).
func (tc *ToolContext) Owner() string { return tc.owner }

// Timestamp returns the instant the invocation's turn began.
func (tc *ToolContext) Timestamp() time.Time { return tc.timestamp }

// State returns the read-only snapshot of the shared state taken at
// invocation start. Handlers must not mutate it; build a fresh document and
// pass it to SetState instead.
func (tc *ToolContext) State() map[string]any { return tc.state }

// SetState stages next as the wholesale replacement for the room's shared
// state. The last value staged before the handler returns wins.
func (tc *ToolContext) SetState(next map[string]any) {
	tc.nextState = next
	tc.stateSet = true
}

// Memory returns the read-only snapshot of the actor's scratch memory.
func (tc *ToolContext) Memory() map[string]any { return tc.memory }

// SetMemory shallow-merges partial into the actor's memory document. The
// write applies immediately and the local snapshot is updated to match.
func (tc *ToolContext) SetMemory(partial map[string]any) error {
	if tc.memoryStore == nil {
		return fmt.Errorf("memory service not configured")
	}
	if err := tc.memoryStore.Put(tc.memoryScope, tc.actorID, partial); err != nil {
		return err
	}
	for k, v := range partial {
		tc.memory[k] = v
	}
	return nil
}

// StateReplacement reports the staged state document and whether SetState was
// called. Used by the gate when committing a successful invocation.
func (tc *ToolContext) StateReplacement() (map[string]any, bool) {
	return tc.nextState, tc.stateSet
}
