package core

import (
	"fmt"
	"sync"
	"time"
)

// Room is an isolated instance of shared state plus its participants and
// bounded event history. It is safe for concurrent access.
//
// Contract:
//   - The shared state document is only ever replaced wholesale, never
//     patched in place; readers always observe a complete value.
//   - AppendEvent assigns non-decreasing timestamps and evicts oldest events
//     beyond MaxRoomEvents.
//   - Actor ordinals are monotonic per (username, kind) and never reused,
//     including after an actor leaves.
//   - Handler invocations are serialized via AcquireInvoke / ReleaseInvoke;
//     rooms are fully independent of each other.
type Room struct {
	ID           string
	ExperienceID string
	CreatedAt    time.Time

	mu            sync.RWMutex
	state         map[string]any
	participants  map[string]Participant
	events        []ToolEvent
	actorCounters map[string]int
	lastTS        int64

	// invokeMu is held across tool handler execution, which may block on
	// I/O; it is kept separate from mu so readers are never starved by an
	// in-flight handler.
	invokeMu sync.Mutex
}

// NewRoom creates an empty room bound to an experience id.
func NewRoom(id, experienceID string) *Room {
	return &Room{
		ID:            id,
		ExperienceID:  experienceID,
		CreatedAt:     time.Now(),
		state:         map[string]any{},
		participants:  map[string]Participant{},
		actorCounters: map[string]int{},
	}
}

// AcquireInvoke blocks until this room's invocation slot is free. At most one
// tool handler runs per room at any instant.
func (r *Room) AcquireInvoke() { r.invokeMu.Lock() }

// ReleaseInvoke frees the invocation slot taken by AcquireInvoke.
func (r *Room) ReleaseInvoke() { r.invokeMu.Unlock() }

// StateSnapshot returns a copy of the current shared state document.
func (r *Room) StateSnapshot() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap := make(map[string]any, len(r.state))
	for k, v := range r.state {
		snap[k] = v
	}
	return snap
}

// ReplaceState swaps the shared state document wholesale. There is no merge;
// the previous value is discarded.
func (r *Room) ReplaceState(next map[string]any) {
	if next == nil {
		next = map[string]any{}
	}
	r.mu.Lock()
	r.state = next
	r.mu.Unlock()
}

// AppendEvent appends ev to the log, clamping its timestamp so insertion
// order never observes a decreasing timestamp, and evicting the oldest entry
// once the log exceeds MaxRoomEvents. The stored event is returned.
func (r *Room) AppendEvent(ev ToolEvent) ToolEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ev.Timestamp < r.lastTS {
		ev.Timestamp = r.lastTS
	}
	r.lastTS = ev.Timestamp
	r.events = append(r.events, ev)
	if len(r.events) > MaxRoomEvents {
		r.events = append(r.events[:0:0], r.events[len(r.events)-MaxRoomEvents:]...)
	}
	return ev
}

// Events returns a defensive copy of the full event log.
func (r *Room) Events() []ToolEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	events := make([]ToolEvent, len(r.events))
	copy(events, r.events)
	return events
}

// EventsSince returns, in insertion order, all events with timestamp strictly
// greater than cursor. Callers advancing their cursor to the maximum observed
// timestamp keep near-simultaneous events correctly ordered.
func (r *Room) EventsSince(cursor int64) []ToolEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]ToolEvent, 0)
	for _, ev := range r.events {
		if ev.Timestamp > cursor {
			res = append(res, ev)
		}
	}
	return res
}

// LatestCursor returns the timestamp of the newest event, or 0 when empty.
func (r *Room) LatestCursor() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastTS
}

// Join allocates a fresh actor identity for (username, kind) and registers it
// as a participant. Ordinals start at 1 and are never reclaimed, so repeat
// joins by the same username always receive fresh ids.
func (r *Room) Join(username string, kind ActorKind) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := fmt.Sprintf("%s:%s", username, kind)
	r.actorCounters[key]++
	actorID := fmt.Sprintf("%s-%s-%d", username, kind, r.actorCounters[key])
	r.participants[actorID] = Participant{Kind: kind, JoinedAt: time.Now()}
	return actorID
}

// Leave removes a participant. It reports whether the actor was present; the
// actor's ordinal stays consumed either way.
func (r *Room) Leave(actorID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.participants[actorID]; !ok {
		return false
	}
	delete(r.participants, actorID)
	return true
}

// HasParticipant reports whether the actor is currently joined.
func (r *Room) HasParticipant(actorID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.participants[actorID]
	return ok
}

// Participants returns a copy of the current participant set.
func (r *Room) Participants() map[string]Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make(map[string]Participant, len(r.participants))
	for id, p := range r.participants {
		res[id] = p
	}
	return res
}
