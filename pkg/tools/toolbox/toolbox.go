package toolbox

import (
	"context"
	"encoding/json"
	"fmt"
)

// Result is the outcome of calling one tool.
type Result struct {
	Content string
	IsError bool
}

// ToolBox orchestrates a collection of tools. It allows registering,
// retrieving, listing, and calling tools by name.
type ToolBox struct {
	tools map[string]Tool
}

// New creates a new ToolBox ready for use.
func New() *ToolBox {
	return &ToolBox{
		tools: make(map[string]Tool),
	}
}

// Register adds one or more tools to the ToolBox. If a tool with the same name
// already exists, it is replaced.
func (tb *ToolBox) Register(tools ...Tool) {
	for _, t := range tools {
		tb.tools[t.Name] = t
	}
}

// Get returns a tool by name and a boolean indicating whether it was found.
func (tb *ToolBox) Get(name string) (Tool, bool) {
	t, ok := tb.tools[name]
	return t, ok
}

// Merge registers all tools from another ToolBox into this one. If a tool
// with the same name already exists, it is replaced.
func (tb *ToolBox) Merge(other *ToolBox) {
	for _, t := range other.tools {
		tb.tools[t.Name] = t
	}
}

// Tools returns all registered tools as a slice.
func (tb *ToolBox) Tools() []Tool {
	result := make([]Tool, 0, len(tb.tools))
	for _, t := range tb.tools {
		result = append(result, t)
	}
	return result
}

// Call executes the named tool with the given JSON arguments. If the tool is
// not found or the handler returns an error, the result has IsError set.
func (tb *ToolBox) Call(ctx context.Context, name string, arguments json.RawMessage) Result {
	t, ok := tb.tools[name]
	if !ok {
		return Result{
			Content: fmt.Sprintf("unknown tool: %s", name),
			IsError: true,
		}
	}

	content, err := t.Handler(ctx, arguments)
	if err != nil {
		return Result{
			Content: err.Error(),
			IsError: true,
		}
	}

	return Result{Content: content}
}
