package tool

import (
	"fmt"
	"time"

	"github.com/syncroom/syncroom/core"
	"github.com/syncroom/syncroom/internal/util"
)

// FunctionTool is a generic adapter that exposes a plain Go function as a
// room tool.
//
// Responsibilities:
//   - Holds a lightweight JSON-Schema-like parameter specification
//   - Validates supplied arguments against that schema before execution
//   - Invokes the wrapped function with a *core.ToolContext giving access to
//     the state snapshot, the SetState / SetMemory effects and actor identity
//   - Normalizes error handling so callers receive *ToolError with consistent
//     codes: VALIDATION_ERROR for schema mismatches, EXECUTION_ERROR for
//     other failures (custom codes preserved if the function returns
//     *ToolError directly)
//
// Concurrency: a FunctionTool has no internal mutable state after
// construction and is safe for concurrent use across rooms; within one room
// the gate serializes invocations.
type FunctionTool struct {
	// Tool identifier (dotted, e.g. "counter.increment")
	name string
	// Human-readable description shown in the catalog
	description string
	// Declared risk metadata; surfaced, not enforced
	riskLevel string
	// JSON schema describing accepted arguments
	parameters map[string]any
	// User supplied implementation
	fn func(toolCtx *core.ToolContext, args map[string]any) (any, error)
}

// NewFunctionTool constructs a FunctionTool from explicit schema and function.
//
// Example:
//
//	place := NewFunctionTool(
//	  "pixel.place",
//	  "Place a pixel on the shared canvas",
//	  "low",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "x":     map[string]any{"type": "integer", "minimum": 0, "maximum": 63},
//	      "y":     map[string]any{"type": "integer", "minimum": 0, "maximum": 63},
//	      "color": map[string]any{"type": "string"},
//	    },
//	    "required": []string{"x", "y", "color"},
//	  },
//	  func(tc *core.ToolContext, args map[string]any) (any, error) { ... },
//	)
func NewFunctionTool(
	name, description, riskLevel string,
	parameters map[string]any,
	fn func(toolCtx *core.ToolContext, args map[string]any) (any, error),
) *FunctionTool {
	if riskLevel == "" {
		riskLevel = "low"
	}
	return &FunctionTool{
		name:        name,
		description: description,
		riskLevel:   riskLevel,
		parameters:  parameters,
		fn:          fn,
	}
}

// NewFunctionToolFromStruct derives the parameter schema from a struct using
// reflection. It is a convenience for simple argument containers.
func NewFunctionToolFromStruct(
	name, description, riskLevel string,
	structType any,
	fn func(toolCtx *core.ToolContext, args map[string]any) (any, error),
) *FunctionTool {
	schema := util.CreateSchema(structType)
	return NewFunctionTool(name, description, riskLevel, schema, fn)
}

// Name returns the unique tool name used in catalog entries and routing.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the short natural language description exposed to callers.
func (t *FunctionTool) Description() string { return t.description }

// RiskLevel returns the declared risk metadata for the catalog.
func (t *FunctionTool) RiskLevel() string { return t.riskLevel }

// Parameters returns the (minimal) JSON schema describing expected arguments.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call validates the provided args against the declared schema then invokes
// the underlying function. Validation or execution failures are wrapped (or
// passed through) as *ToolError for uniform downstream handling.
//
// Error Semantics:
//
//	*ToolError (returned directly)  -> forwarded unchanged
//	validation failure              -> *ToolError{Code: "VALIDATION_ERROR"}
//	other error                     -> *ToolError{Code: "EXECUTION_ERROR"}
func (t *FunctionTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	logger := toolCtx.Logger()
	start := time.Now()

	logger.Debug("tool.call.start", "tool", t.name, "actor", toolCtx.ActorID())

	if err := util.ValidateParameters(args, t.parameters); err != nil {
		logger.Warn("tool.call.validation_failed", "tool", t.name, "error", err.Error())

		return nil, &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    "VALIDATION_ERROR",
			Details: err,
		}
	}

	result, err := t.fn(toolCtx, args)
	if err != nil {
		if toolErr, ok := err.(*ToolError); ok { // Already a ToolError -> just log and forward
			logger.Error("tool.call.error", "tool", t.name, "error", toolErr.Message)

			return nil, toolErr
		}

		logger.Error("tool.call.error", "tool", t.name, "error", err.Error())

		return nil, &ToolError{
			Tool:    t.name,
			Message: err.Error(),
			Code:    "EXECUTION_ERROR",
		}
	}

	logger.Info("tool.call.success", "tool", t.name, "duration_ms", time.Since(start).Milliseconds())

	return result, nil
}
