// Package experience ships the built-in demo tool table used by the dev
// server and the test suite. Real deployments inject their own Experience;
// the engine only depends on the core.Tool contract.
package experience

import (
	"fmt"

	"github.com/syncroom/syncroom/core"
	"github.com/syncroom/syncroom/tool"
)

// CanvasSize bounds pixel.place coordinates to [0, CanvasSize-1].
const CanvasSize = 64

// NewBuiltin assembles the demo experience: a shared counter, a pixel canvas
// and a chat feed, all operating on the room's shared state document.
func NewBuiltin() *core.Experience {
	return core.NewExperience(
		"builtin",
		"Builtin Playground",
		"Counter, pixel canvas and chat over one shared state document.",
		counterIncrement(),
		pixelPlace(),
		chatPost(),
	)
}

func counterIncrement() core.Tool {
	return tool.NewFunctionTool(
		"counter.increment",
		"Increment the shared counter by one",
		"low",
		map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		func(tc *core.ToolContext, _ map[string]any) (any, error) {
			count := intFromState(tc.State()["count"]) + 1

			next := cloneState(tc.State())
			next["count"] = count
			tc.SetState(next)

			return map[string]any{"count": count}, nil
		},
	)
}

func pixelPlace() core.Tool {
	return tool.NewFunctionTool(
		"pixel.place",
		"Place a colored pixel on the shared canvas",
		"low",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"x":     map[string]any{"type": "integer", "minimum": 0, "maximum": CanvasSize - 1},
				"y":     map[string]any{"type": "integer", "minimum": 0, "maximum": CanvasSize - 1},
				"color": map[string]any{"type": "string", "description": "Hex color, e.g. #ff0000"},
			},
			"required": []string{"x", "y", "color"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			x := intFromState(args["x"])
			y := intFromState(args["y"])
			color, _ := args["color"].(string)

			next := cloneState(tc.State())
			pixels, _ := next["pixels"].(map[string]any)
			pixels = cloneState(pixels)
			key := fmt.Sprintf("%d,%d", x, y)
			pixels[key] = color
			next["pixels"] = pixels
			tc.SetState(next)

			return map[string]any{"x": x, "y": y, "color": color}, nil
		},
	)
}

func chatPost() core.Tool {
	return tool.NewFunctionTool(
		"chat.post",
		"Post a message to the shared chat feed",
		"low",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{"type": "string"},
			},
			"required": []string{"text"},
		},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			text, _ := args["text"].(string)
			if text == "" {
				return nil, fmt.Errorf("text must not be empty")
			}

			next := cloneState(tc.State())
			feed, _ := next["messages"].([]any)
			entry := map[string]any{
				"from": tc.ActorID(),
				"text": text,
				"ts":   tc.Timestamp().UnixMilli(),
			}
			next["messages"] = append(append([]any{}, feed...), entry)
			tc.SetState(next)

			return entry, nil
		},
	)
}

// cloneState shallow-copies a state document so handlers never mutate the
// snapshot they were given.
func cloneState(state map[string]any) map[string]any {
	next := make(map[string]any, len(state))
	for k, v := range state {
		next[k] = v
	}
	return next
}

// intFromState tolerates both int (handler-built state) and float64
// (JSON-decoded input or state).
func intFromState(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}
