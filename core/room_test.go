package core

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoom_StateWholeValueReplace(t *testing.T) {
	rm := NewRoom("r1", "exp")

	rm.ReplaceState(map[string]any{"count": 1, "label": "a"})
	rm.ReplaceState(map[string]any{"count": 2})

	// No merge: the label key from the first document is gone.
	state := rm.StateSnapshot()
	assert.Equal(t, map[string]any{"count": 2}, state)
}

func TestRoom_StateSnapshotIsolation(t *testing.T) {
	rm := NewRoom("r1", "exp")
	rm.ReplaceState(map[string]any{"count": 1})

	snap := rm.StateSnapshot()
	snap["count"] = 99

	assert.Equal(t, 1, rm.StateSnapshot()["count"])
}

func TestRoom_ActorOrdinalsNeverReused(t *testing.T) {
	rm := NewRoom("r1", "exp")

	first := rm.Join("sam", ActorKindHuman)
	second := rm.Join("sam", ActorKindHuman)
	assert.Equal(t, "sam-human-1", first)
	assert.Equal(t, "sam-human-2", second)

	// Leaving does not reclaim the ordinal.
	require.True(t, rm.Leave(first))
	third := rm.Join("sam", ActorKindHuman)
	assert.Equal(t, "sam-human-3", third)

	// Different kind counts independently.
	assert.Equal(t, "sam-ai-1", rm.Join("sam", ActorKindAI))
}

func TestRoom_ActorIDsPairwiseDistinct(t *testing.T) {
	rm := NewRoom("r1", "exp")
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := rm.Join("user", ActorKindAI)
		require.False(t, seen[id], "duplicate actor id %s", id)
		seen[id] = true
		if i%3 == 0 {
			rm.Leave(id)
		}
	}
}

func TestRoom_ConcurrentJoinsAllocateDistinctIDs(t *testing.T) {
	rm := NewRoom("r1", "exp")

	const n = 64
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = rm.Join("bot", ActorKindAI)
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate actor id %s", id)
		seen[id] = true
	}
}

func TestRoom_LeaveUnknownActor(t *testing.T) {
	rm := NewRoom("r1", "exp")
	assert.False(t, rm.Leave("ghost-human-1"))
}

func TestRoom_ParticipantsCopy(t *testing.T) {
	rm := NewRoom("r1", "exp")
	id := rm.Join("alice", ActorKindHuman)

	participants := rm.Participants()
	delete(participants, id)

	assert.True(t, rm.HasParticipant(id))
}

func TestRoom_EventLogCapEvictsOldestFirst(t *testing.T) {
	rm := NewRoom("r1", "exp")

	total := MaxRoomEvents + 50
	for i := 0; i < total; i++ {
		ev := NewSuccessEvent("a-ai-1", "", "stub", nil, map[string]any{"seq": i})
		rm.AppendEvent(ev)
	}

	events := rm.EventsSince(0)
	require.Len(t, events, MaxRoomEvents)
	// Oldest 50 are gone; the survivors are the most recent, in order.
	for i, ev := range events {
		out := ev.Output.(map[string]any)
		assert.Equal(t, 50+i, out["seq"])
	}
}

func TestRoom_TimestampsNonDecreasing(t *testing.T) {
	rm := NewRoom("r1", "exp")

	// Force a future timestamp, then append events "from the past".
	future := NewSuccessEvent("a-ai-1", "", "stub", nil, nil)
	future.Timestamp += 10_000
	rm.AppendEvent(future)

	for i := 0; i < 5; i++ {
		rm.AppendEvent(NewSuccessEvent("a-ai-1", "", "stub", nil, nil))
	}

	events := rm.Events()
	for i := 1; i < len(events); i++ {
		assert.GreaterOrEqual(t, events[i].Timestamp, events[i-1].Timestamp)
	}
}

func TestRoom_EventsSinceStrictlyGreater(t *testing.T) {
	rm := NewRoom("r1", "exp")
	var stored []ToolEvent
	for i := 0; i < 3; i++ {
		stored = append(stored, rm.AppendEvent(NewSuccessEvent("a-ai-1", "", "stub", nil, i)))
	}

	// Cursor at the last timestamp excludes every event at that timestamp.
	assert.Empty(t, rm.EventsSince(stored[2].Timestamp))
	assert.Len(t, rm.EventsSince(stored[0].Timestamp-1), 3)
	assert.Len(t, rm.EventsSince(0), 3)
}

func TestRoom_EqualTimestampsKeepInsertionOrder(t *testing.T) {
	rm := NewRoom("r1", "exp")

	// Pin all events to one timestamp via the monotonic clamp.
	pin := NewSuccessEvent("a-ai-1", "", "stub", nil, "pin")
	pin.Timestamp += 5_000
	rm.AppendEvent(pin)

	for i := 0; i < 4; i++ {
		rm.AppendEvent(NewSuccessEvent("a-ai-1", "", "stub", nil, fmt.Sprintf("v%d", i)))
	}

	events := rm.EventsSince(0)
	require.Len(t, events, 5)
	assert.Equal(t, "pin", events[0].Output)
	for i := 0; i < 4; i++ {
		assert.Equal(t, fmt.Sprintf("v%d", i), events[i+1].Output)
		assert.Equal(t, events[0].Timestamp, events[i+1].Timestamp)
	}
}
