// Package testutil provides small builders shared by the engine's tests.
package testutil

import (
	"fmt"

	"github.com/syncroom/syncroom/core"
)

// StubTool is a configurable core.Tool for tests. Zero values fall back to
// sensible defaults; only Fn is usually interesting.
type StubTool struct {
	ToolName string
	Desc     string
	Risk     string
	Schema   map[string]any
	Fn       func(tc *core.ToolContext, args map[string]any) (any, error)
}

// Name returns the configured tool name, defaulting to "stub.noop".
func (t *StubTool) Name() string {
	if t.ToolName == "" {
		return "stub.noop"
	}
	return t.ToolName
}

// Description returns the configured description.
func (t *StubTool) Description() string {
	if t.Desc == "" {
		return "stub tool"
	}
	return t.Desc
}

// RiskLevel returns the configured risk level, defaulting to "low".
func (t *StubTool) RiskLevel() string {
	if t.Risk == "" {
		return "low"
	}
	return t.Risk
}

// Parameters returns the configured schema, defaulting to an open object.
func (t *StubTool) Parameters() map[string]any {
	if t.Schema == nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return t.Schema
}

// Call invokes Fn, or succeeds with nil output when Fn is unset.
func (t *StubTool) Call(tc *core.ToolContext, args map[string]any) (any, error) {
	if t.Fn == nil {
		return nil, nil
	}
	return t.Fn(tc, args)
}

// SeedEvents appends n success events to the room and returns the stored
// copies (with clamped timestamps) in insertion order.
func SeedEvents(rm *core.Room, n int) []core.ToolEvent {
	events := make([]core.ToolEvent, 0, n)
	for i := 0; i < n; i++ {
		ev := core.NewSuccessEvent("seed-ai-1", "", "stub.noop", nil, map[string]any{"seq": i})
		events = append(events, rm.AppendEvent(ev))
	}
	return events
}

// SingleToolExperience wraps one tool in a minimal experience.
func SingleToolExperience(t core.Tool) *core.Experience {
	return core.NewExperience("test-exp", "Test Experience", "experience fixture", t)
}

// NamedStub builds a StubTool that records its output under the given name.
func NamedStub(name string) *StubTool {
	return &StubTool{
		ToolName: name,
		Fn: func(_ *core.ToolContext, _ map[string]any) (any, error) {
			return fmt.Sprintf("ran %s", name), nil
		},
	}
}
