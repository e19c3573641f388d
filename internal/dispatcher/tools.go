package dispatcher

import (
	"context"
	"encoding/json"

	"github.com/mcpcore/server/internal/toolregistry"
	"github.com/mcpcore/server/pkg/jsonrpc"
)

// toolDef is the wire shape of one entry in tools/list's array.
type toolDef struct {
	Name        string          `json:"name"`
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

type toolsListResult struct {
	Tools []toolDef `json:"tools"`
}

func (d *Dispatcher) handleToolsList() (any, *jsonrpc.Error) {
	summaries := d.tools.List()
	out := make([]toolDef, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, toolDef{
			Name:        s.Name,
			Title:       s.Title,
			Description: s.Description,
			InputSchema: s.InputSchema,
		})
	}
	return toolsListResult{Tools: out}, nil
}

type toolsCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

func (d *Dispatcher) handleToolsCall(ctx context.Context, params json.RawMessage) (any, *jsonrpc.Error) {
	var p toolsCallParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, jsonrpc.NewInvalidParamsError("tools/call params must be a JSON object with name/arguments")
		}
	}
	if p.Name == "" {
		return nil, jsonrpc.NewInvalidParamsError("tools/call requires a non-empty name")
	}

	result := d.tools.Invoke(ctx, p.Name, p.Arguments)
	return toolCallResultWire(result), nil
}

// toolCallResultWire re-exposes toolregistry.CallResult's JSON shape
// unchanged; kept as a named conversion point in case the wire shape
// ever needs to diverge from the registry's internal representation.
func toolCallResultWire(r toolregistry.CallResult) toolregistry.CallResult { return r }
