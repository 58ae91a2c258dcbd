package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSuccessEvent(t *testing.T) {
	ev := NewSuccessEvent("alice-human-1", "team-a", "counter.increment", map[string]any{}, map[string]any{"count": 1})

	assert.NotEmpty(t, ev.ID)
	assert.Positive(t, ev.Timestamp)
	assert.Equal(t, "alice-human-1", ev.ActorID)
	assert.Equal(t, "team-a", ev.Owner)
	assert.Equal(t, "counter.increment", ev.Tool)
	assert.Equal(t, map[string]any{"count": 1}, ev.Output)
	assert.Empty(t, ev.Error)
	assert.False(t, ev.Failed())
}

func TestNewFailureEvent(t *testing.T) {
	ev := NewFailureEvent("bob-ai-1", "", "pixel.place", map[string]any{"x": 70}, errors.New("x out of range"))

	assert.Equal(t, "x out of range", ev.Error)
	assert.Nil(t, ev.Output)
	assert.True(t, ev.Failed())
}

func TestEventOwnerDefaultsToActor(t *testing.T) {
	ev := NewSuccessEvent("bob-ai-1", "", "stub", nil, nil)
	assert.Equal(t, "bob-ai-1", ev.Owner)
}

func TestEventIDsUniqueAndSortable(t *testing.T) {
	a := NewEventID()
	b := NewEventID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 26) // ULID canonical encoding
}
