package core

import (
	"fmt"
	"sort"
	"strings"
)

// Tool is the fixed polymorphic interface every operation of an Experience
// implements. The mechanism that loads tool tables from source is outside
// this engine; the gate only ever sees objects satisfying this interface.
//
// Implementations should be safe for concurrent use: the gate serializes
// invocations per room, but the same tool may run simultaneously in
// different rooms.
type Tool interface {
	// Name returns the unique dotted identifier, e.g. "counter.increment".
	Name() string

	// Description returns the human-readable summary shown in the catalog.
	Description() string

	// RiskLevel returns the declared risk metadata ("low", "medium",
	// "high"). It is surfaced in the catalog but not enforced by the gate.
	RiskLevel() string

	// Parameters returns a JSON-Schema-like map describing accepted input.
	Parameters() map[string]any

	// Call executes the tool against an already-validated argument map. The
	// ToolContext exposes the state snapshot and the SetState / SetMemory
	// effects.
	Call(toolCtx *ToolContext, args map[string]any) (any, error)
}

// ToolDescriptor is the catalog entry exposed to callers.
type ToolDescriptor struct {
	Name                   string `json:"name"`
	Description            string `json:"description"`
	RiskLevel              string `json:"riskLevel"`
	InputSchemaDescription string `json:"inputSchemaDescription"`
}

// Experience is the externally supplied manifest plus ordered tool table.
// The engine invokes it but does not define or load it.
type Experience struct {
	ID          string
	Name        string
	Description string

	tools  []Tool
	byName map[string]Tool
}

// NewExperience assembles an experience from an ordered tool list. A
// duplicate tool name panics: tool tables are assembled once at load time and
// a collision there is a programming error in the experience definition.
func NewExperience(id, name, description string, tools ...Tool) *Experience {
	exp := &Experience{
		ID:          id,
		Name:        name,
		Description: description,
		tools:       tools,
		byName:      make(map[string]Tool, len(tools)),
	}
	for _, t := range tools {
		if _, exists := exp.byName[t.Name()]; exists {
			panic(fmt.Sprintf("experience %s: duplicate tool name %q", id, t.Name()))
		}
		exp.byName[t.Name()] = t
	}
	return exp
}

// Tool resolves a tool by name.
func (e *Experience) Tool(name string) (Tool, bool) {
	t, ok := e.byName[name]
	return t, ok
}

// Tools returns the tool table in its declared order.
func (e *Experience) Tools() []Tool {
	res := make([]Tool, len(e.tools))
	copy(res, e.tools)
	return res
}

// Catalog renders the descriptor list exposed to joining callers, in tool
// table order.
func (e *Experience) Catalog() []ToolDescriptor {
	res := make([]ToolDescriptor, 0, len(e.tools))
	for _, t := range e.tools {
		res = append(res, ToolDescriptor{
			Name:                   t.Name(),
			Description:            t.Description(),
			RiskLevel:              t.RiskLevel(),
			InputSchemaDescription: describeSchema(t.Parameters()),
		})
	}
	return res
}

// describeSchema renders a compact one-line summary of a JSON-Schema-like
// parameter map, e.g. "color: string (required), x: integer (required)".
func describeSchema(schema map[string]any) string {
	props, _ := schema["properties"].(map[string]any)
	if len(props) == 0 {
		return "no input"
	}

	required := map[string]bool{}
	switch req := schema["required"].(type) {
	case []string:
		for _, f := range req {
			required[f] = true
		}
	case []any:
		for _, f := range req {
			if s, ok := f.(string); ok {
				required[s] = true
			}
		}
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		typ := "any"
		if pm, ok := props[name].(map[string]any); ok {
			if t, ok := pm["type"].(string); ok {
				typ = t
			}
		}
		if required[name] {
			parts = append(parts, fmt.Sprintf("%s: %s (required)", name, typ))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", name, typ))
		}
	}
	return strings.Join(parts, ", ")
}
