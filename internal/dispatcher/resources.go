package dispatcher

import (
	"encoding/base64"
	"encoding/json"
	"errors"

	"github.com/mcpcore/server/internal/resourceregistry"
	"github.com/mcpcore/server/pkg/jsonrpc"
)

type resourceEntry struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType"`
}

type resourcesListResult struct {
	Resources []resourceEntry `json:"resources"`
}

func (d *Dispatcher) handleResourcesList() (any, *jsonrpc.Error) {
	entries := d.resources.List()
	out := make([]resourceEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, resourceEntry{URI: e.URI, Name: e.Name, Description: e.Description, MimeType: e.MimeType})
	}
	return resourcesListResult{Resources: out}, nil
}

type resourceTemplateEntry struct {
	URITemplate string `json:"uriTemplate"`
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

type resourcesTemplatesListResult struct {
	ResourceTemplates []resourceTemplateEntry `json:"resourceTemplates"`
}

func (d *Dispatcher) handleResourcesTemplatesList() (any, *jsonrpc.Error) {
	entries := d.resources.TemplatesList()
	out := make([]resourceTemplateEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, resourceTemplateEntry{
			URITemplate: e.URITemplate,
			Name:        e.Name,
			Title:       e.Title,
			Description: e.Description,
			MimeType:    e.MimeType,
		})
	}
	return resourcesTemplatesListResult{ResourceTemplates: out}, nil
}

type resourcesReadParams struct {
	URI string `json:"uri"`
}

// resourceContent is one element of resources/read's "contents" array.
// Binary bodies are base64-encoded into Text rather than left as a
// placeholder note, so the body stays actually retrievable.
type resourceContent struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

type resourcesReadResult struct {
	Contents []resourceContent `json:"contents"`
}

func (d *Dispatcher) handleResourcesRead(params json.RawMessage) (any, *jsonrpc.Error) {
	var p resourcesReadParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, jsonrpc.NewInvalidParamsError("resources/read params must be a JSON object with uri")
		}
	}
	if p.URI == "" {
		return nil, jsonrpc.NewInvalidParamsError("resources/read requires a non-empty uri")
	}

	result, err := d.resources.Read(p.URI)
	if err != nil {
		if errors.Is(err, resourceregistry.ErrNotFound) {
			return nil, jsonrpc.NewInvalidParamsError("resource not found: " + p.URI)
		}
		return nil, jsonrpc.NewInternalError(err.Error())
	}

	text := string(result.Data)
	if !result.IsText {
		text = base64.StdEncoding.EncodeToString(result.Data)
	}

	return resourcesReadResult{
		Contents: []resourceContent{{URI: p.URI, MimeType: result.MimeType, Text: text}},
	}, nil
}
