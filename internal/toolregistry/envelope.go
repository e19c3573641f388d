package toolregistry

import (
	"encoding/json"
	"fmt"
)

// FailureKind classifies why a tool invocation failed.
type FailureKind string

const (
	FailureValidation FailureKind = "validation_error"
	FailureExecution  FailureKind = "execution_error"
	FailureTimeout    FailureKind = "timeout_error"
	FailureMemory     FailureKind = "memory_error"
	FailureNotFound   FailureKind = "not_found_error"
	FailureInternal   FailureKind = "internal_error"
)

// ContentBlock is one element of the MCP content envelope's "content" array.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CallResult is the MCP content envelope tools/call returns: a content
// array always present, the original structured value when available,
// and an isError flag.
type CallResult struct {
	Content           []ContentBlock `json:"content"`
	StructuredContent any            `json:"structuredContent,omitempty"`
	IsError           bool           `json:"isError"`
}

// successResult stringifies value into a single text content block while
// also carrying the original value as structuredContent.
func successResult(value any) CallResult {
	text := stringify(value)
	return CallResult{
		Content:           []ContentBlock{{Type: "text", Text: text}},
		StructuredContent: value,
		IsError:           false,
	}
}

// failureResult builds the error-shaped envelope: a text block reading
// "Error (<kind>): <message>" plus a structured error payload.
func failureResult(kind FailureKind, message string) CallResult {
	text := fmt.Sprintf("Error (%s): %s", kind, message)
	return CallResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
		StructuredContent: map[string]any{
			"kind":    string(kind),
			"message": message,
		},
		IsError: true,
	}
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}
