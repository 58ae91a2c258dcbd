// Package watch implements the blocking pull primitive: wait on a room's
// event log for entries past a cursor, or time out. It serves clients without
// a push channel (periodic agents, reconnecting browsers).
package watch

import (
	"context"
	"time"

	"github.com/syncroom/syncroom/core"
)

const (
	// DefaultRecheckInterval bounds how often a blocked wait re-examines the
	// log. Waiting is cooperative: the goroutine parks on a timer, the
	// process keeps serving other rooms and watchers.
	DefaultRecheckInterval = 200 * time.Millisecond

	// MaxWait caps any requested timeout so proxies and load balancers never
	// see a poll outlive their idle limits.
	MaxWait = 55 * time.Second
)

// Result is the snapshot returned by a wait: whatever events exist past the
// cursor (possibly none), plus the room's current state and participants.
type Result struct {
	Events       []core.ToolEvent            `json:"events"`
	State        map[string]any              `json:"state"`
	Participants map[string]core.Participant `json:"participants"`
	Cursor       int64                       `json:"cursor"`
}

// Watcher blocks callers until a room's log moves past their cursor.
// Predicate-over-state waiting ("until count > 5") is layered above this by
// callers: check before the wait for an immediate return, and again against
// the result; the watcher itself only reacts to cursor movement.
type Watcher struct {
	interval time.Duration
}

// NewWatcher constructs a watcher. A non-positive interval selects
// DefaultRecheckInterval.
func NewWatcher(interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultRecheckInterval
	}
	return &Watcher{interval: interval}
}

// Await returns events with timestamp strictly greater than since. If
// qualifying events already exist, or timeout is zero or negative, it returns
// immediately. Otherwise it blocks the caller (never the process) until
// events appear or min(timeout, MaxWait) elapses, re-checking at the
// configured interval, and returns whatever is present at that point.
//
// Context cancellation (a disconnected caller) abandons the wait silently:
// the current snapshot is returned with the context's error, and no other
// waiter or the log is affected.
func (w *Watcher) Await(ctx context.Context, room *core.Room, since int64, timeout time.Duration) (Result, error) {
	if events := room.EventsSince(since); len(events) > 0 || timeout <= 0 {
		return w.snapshot(room, since, events), nil
	}

	if timeout > MaxWait {
		timeout = MaxWait
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return w.snapshot(room, since, room.EventsSince(since)), ctx.Err()
		case <-deadline.C:
			return w.snapshot(room, since, room.EventsSince(since)), nil
		case <-ticker.C:
			if events := room.EventsSince(since); len(events) > 0 {
				return w.snapshot(room, since, events), nil
			}
		}
	}
}

// snapshot assembles the result; the cursor advances to the newest returned
// event so callers can hand it straight back to the next Await.
func (w *Watcher) snapshot(room *core.Room, since int64, events []core.ToolEvent) Result {
	cursor := since
	for _, ev := range events {
		if ev.Timestamp > cursor {
			cursor = ev.Timestamp
		}
	}
	return Result{
		Events:       events,
		State:        room.StateSnapshot(),
		Participants: room.Participants(),
		Cursor:       cursor,
	}
}
