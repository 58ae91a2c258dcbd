// Package gate implements the mutation funnel. Every state change flows
// through Gate.Invoke: resolve the tool, validate input, run the handler
// against a consistent snapshot under the room's invocation lock, commit the
// replacement state, append an event and notify push subscribers.
package gate

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/syncroom/syncroom/core"
	"github.com/syncroom/syncroom/internal/util"
	"github.com/syncroom/syncroom/logging"
	"github.com/syncroom/syncroom/room"
)

// Notifier receives commit notifications for fan-out to push subscribers.
// Implemented by broadcast.Broadcaster; nil disables push entirely.
type Notifier interface {
	StateUpdated(roomID, actorID, toolName string, state map[string]any, ev core.ToolEvent)
	ExperienceUpdated(roomID string, catalog []core.ToolDescriptor)
}

// Gate validates and serializes tool invocations per room.
//
// Serialization invariant: at most one handler runs per room at any instant.
// A second invocation against the same room waits for the first to finish
// before its snapshot is taken, so two concurrent calls can never both read
// the same pre-mutation state and overwrite each other. Invocations against
// different rooms run fully concurrently.
//
// A started handler always runs to completion or failure; the context is not
// used to abort it mid-flight.
type Gate struct {
	registry *room.Registry
	memory   core.MemoryStore
	notifier Notifier
	exp      atomic.Pointer[core.Experience]
	logger   logging.Logger
}

// New constructs a gate. The experience may be nil, in which case every
// invocation fails with core.ErrExperienceUnavailable until a reload.
func New(registry *room.Registry, memory core.MemoryStore, notifier Notifier, exp *core.Experience, logger logging.Logger) *Gate {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	g := &Gate{
		registry: registry,
		memory:   memory,
		notifier: notifier,
		logger:   logger,
	}
	if exp != nil {
		g.exp.Store(exp)
	}
	return g
}

// Experience returns the currently loaded tool table, or nil when none is.
func (g *Gate) Experience() *core.Experience {
	return g.exp.Load()
}

// ReloadExperience atomically swaps the tool table and pushes
// experience_updated to every live room. In-flight invocations finish against
// the table they resolved their tool from.
func (g *Gate) ReloadExperience(exp *core.Experience) {
	g.exp.Store(exp)
	g.logger.Info("gate.experience.reloaded", "experience_id", exp.ID, "tools", len(exp.Tools()))
	if g.notifier == nil {
		return
	}
	catalog := exp.Catalog()
	for _, rm := range g.registry.List() {
		g.notifier.ExperienceUpdated(rm.ID, catalog)
	}
}

// Invoke runs one tool invocation to completion and returns the handler's
// output.
//
// Failure taxonomy:
//   - room or tool absent              -> *core.NotFoundError
//   - input fails the tool's schema    -> *core.InvalidInputError (no state
//     mutation; a failure event is still appended for observability)
//   - handler raises an error          -> *core.HandlerFailureError
//   - no experience loaded             -> core.ErrExperienceUnavailable
//
// Exactly one event is appended per invocation that reached a resolvable
// room, success or failure, in submission order.
func (g *Gate) Invoke(ctx context.Context, roomID, toolName, actorID string, rawInput map[string]any, owner string) (any, error) {
	rm, ok := g.registry.Get(roomID)
	if !ok {
		return nil, core.NewRoomNotFound(roomID)
	}

	exp := g.exp.Load()
	if exp == nil {
		return nil, core.ErrExperienceUnavailable
	}

	t, ok := exp.Tool(toolName)
	if !ok {
		err := core.NewToolNotFound(toolName)
		rm.AppendEvent(core.NewFailureEvent(actorID, owner, toolName, rawInput, err))
		return nil, err
	}

	if err := util.ValidateParameters(rawInput, t.Parameters()); err != nil {
		invalid := &core.InvalidInputError{Tool: toolName, Fields: fieldErrors(err)}
		rm.AppendEvent(core.NewFailureEvent(actorID, owner, toolName, rawInput, invalid))
		g.logger.Warn("gate.invoke.invalid_input", "room_id", roomID, "tool", toolName, "actor", actorID, "error", invalid.Error())
		return nil, invalid
	}

	// The invocation lock is held across handler execution: the snapshot
	// below is taken only once any prior invocation has committed.
	rm.AcquireInvoke()
	defer rm.ReleaseInvoke()

	start := time.Now()
	toolCtx := g.newToolContext(rm, actorID, owner)

	output, err := t.Call(toolCtx, rawInput)
	if err != nil {
		failure := &core.HandlerFailureError{Tool: toolName, Err: err}
		rm.AppendEvent(core.NewFailureEvent(actorID, owner, toolName, rawInput, err))
		g.logger.Error("gate.invoke.handler_failed", "room_id", roomID, "tool", toolName, "actor", actorID, "error", err.Error())
		return nil, failure
	}

	if next, replaced := toolCtx.StateReplacement(); replaced {
		rm.ReplaceState(next)
	}
	ev := rm.AppendEvent(core.NewSuccessEvent(actorID, owner, toolName, rawInput, output))

	g.logger.Info("gate.invoke.committed",
		"room_id", roomID, "tool", toolName, "actor", actorID,
		"duration_ms", time.Since(start).Milliseconds())

	if g.notifier != nil {
		g.notifier.StateUpdated(roomID, actorID, toolName, rm.StateSnapshot(), ev)
	}

	return output, nil
}

// newToolContext snapshots room state and the actor's memory document. The
// memory scope is the room's experience id, so scratch memory survives room
// churn within one experience.
func (g *Gate) newToolContext(rm *core.Room, actorID, owner string) *core.ToolContext {
	var memSnapshot map[string]any
	if g.memory != nil {
		memSnapshot, _ = g.memory.Get(rm.ExperienceID, actorID)
	}
	return core.NewToolContext(
		rm.ID, actorID, owner,
		rm.StateSnapshot(),
		rm.ExperienceID, g.memory, memSnapshot,
		g.logger,
	)
}

func fieldErrors(err error) []core.FieldError {
	verrs, ok := err.(util.ValidationErrors)
	if !ok {
		return []core.FieldError{{Field: "", Message: err.Error()}}
	}
	fields := make([]core.FieldError, len(verrs))
	for i, ve := range verrs {
		fields[i] = core.FieldError{Field: ve.Field, Value: ve.Value, Message: ve.Message}
	}
	return fields
}
