// Package tool provides building blocks for implementing the operations an
// Experience exposes: a generic FunctionTool adapter with schema-validated
// arguments and consistent error codes.
package tool

import (
	"fmt"

	"github.com/syncroom/syncroom/internal/util"
)

// ValidationError represents a single field-level validation failure.
type ValidationError = util.ValidationError

// ValidationErrors aggregates every violation from one validation pass.
type ValidationErrors = util.ValidationErrors

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}
