package agent

import (
	"context"
	"encoding/json"
)

// ToolFunc executes one tool invocation. The returned string is handed
// back to the model verbatim as the tool result.
type ToolFunc func(ctx context.Context, args json.RawMessage) (string, error)

// Tool is one callable capability offered to the model during a
// generation: a name, a description, a JSON-schema parameter document and
// the function that runs it.
type Tool struct {
	Name        string
	Description string
	Parameters  json.RawMessage
	Run         ToolFunc
}

// Toolkit is the fixed set of tools available for one generation. The
// model decides which tools to call, in what order and how often; the
// toolkit only dispatches.
type Toolkit struct {
	tools  []Tool
	byName map[string]Tool
}

// NewToolkit builds a toolkit from the given tools.
func NewToolkit(tools ...Tool) *Toolkit {
	byName := make(map[string]Tool, len(tools))
	for _, t := range tools {
		byName[t.Name] = t
	}
	return &Toolkit{tools: tools, byName: byName}
}

// Lookup returns the named tool.
func (k *Toolkit) Lookup(name string) (Tool, bool) {
	if k == nil {
		return Tool{}, false
	}
	t, ok := k.byName[name]
	return t, ok
}

// Specs renders the toolkit in the wire format of the chat API.
func (k *Toolkit) Specs() []ToolSpec {
	if k == nil || len(k.tools) == 0 {
		return nil
	}
	specs := make([]ToolSpec, 0, len(k.tools))
	for _, t := range k.tools {
		params := t.Parameters
		if params == nil {
			params = json.RawMessage(`{"type":"object","properties":{}}`)
		}
		specs = append(specs, ToolSpec{
			Type: "function",
			Function: FunctionSpec{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  params,
			},
		})
	}
	return specs
}
