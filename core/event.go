package core

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// MaxRoomEvents caps the per-room event log. When the cap is exceeded the
// oldest events are evicted first.
const MaxRoomEvents = 200

// ToolEvent is the immutable record of one tool invocation attempt, success
// or failure. Exactly one of Output / Error is populated. Timestamps are unix
// milliseconds, non-decreasing in insertion order per room; ties are broken
// by insertion order.
type ToolEvent struct {
	ID        string         `json:"id"`
	Timestamp int64          `json:"ts"`
	ActorID   string         `json:"actorId"`
	Owner     string         `json:"owner"`
	Tool      string         `json:"tool"`
	Input     map[string]any `json:"input,omitempty"`
	Output    any            `json:"output,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// NewEventID generates a lexicographically sortable unique event identifier.
func NewEventID() string { return ulid.Make().String() }

func newEvent(actorID, owner, toolName string, input map[string]any) ToolEvent {
	if owner == "" {
		owner = actorID
	}
	return ToolEvent{
		ID:        NewEventID(),
		Timestamp: time.Now().UnixMilli(),
		ActorID:   actorID,
		Owner:     owner,
		Tool:      toolName,
		Input:     input,
	}
}

// NewSuccessEvent records a completed invocation carrying the handler's
// return value.
func NewSuccessEvent(actorID, owner, toolName string, input map[string]any, output any) ToolEvent {
	ev := newEvent(actorID, owner, toolName, input)
	ev.Output = output
	return ev
}

// NewFailureEvent records a rejected or failed invocation. The error message
// is preserved; no output is attached.
func NewFailureEvent(actorID, owner, toolName string, input map[string]any, err error) ToolEvent {
	ev := newEvent(actorID, owner, toolName, input)
	if err != nil {
		ev.Error = err.Error()
	}
	return ev
}

// Failed reports whether the event records a failed invocation attempt.
func (e ToolEvent) Failed() bool { return e.Error != "" }
