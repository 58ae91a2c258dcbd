package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrExperienceUnavailable is returned by the gate while no Experience is
// loaded. It blocks all tool invocation process-wide until an explicit reload.
var ErrExperienceUnavailable = errors.New("experience unavailable: no tool table loaded")

// NotFoundError reports an absent room or tool. Kind is "room" or "tool".
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// NewRoomNotFound builds a NotFoundError for a missing room.
func NewRoomNotFound(roomID string) *NotFoundError {
	return &NotFoundError{Kind: "room", ID: roomID}
}

// NewToolNotFound builds a NotFoundError for a missing tool.
func NewToolNotFound(toolName string) *NotFoundError {
	return &NotFoundError{Kind: "tool", ID: toolName}
}

// FieldError describes one schema violation in a tool's input.
type FieldError struct {
	Field   string `json:"field"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"`
}

// InvalidInputError reports that a tool's raw input failed schema validation.
// It carries per-field reasons; no state mutation has happened when it is
// returned, though a failure event is still recorded for observability.
type InvalidInputError struct {
	Tool   string       `json:"tool"`
	Fields []FieldError `json:"fields"`
}

func (e *InvalidInputError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return fmt.Sprintf("invalid input for tool %s: %s", e.Tool, strings.Join(parts, "; "))
}

// HandlerFailureError wraps an error raised inside a tool handler during
// execution. The failure is request-scoped: it is recorded as a failure event
// and reported to the caller, never retried by the gate.
type HandlerFailureError struct {
	Tool string
	Err  error
}

func (e *HandlerFailureError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Err)
}

// Unwrap exposes the underlying handler error for errors.Is / errors.As.
func (e *HandlerFailureError) Unwrap() error { return e.Err }
