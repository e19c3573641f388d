package toolregistry

import (
	"encoding/json"
	"fmt"
)

// jsonSchema is the subset of JSON Schema the registry enforces: top-level
// object shape, per-property declared type, and a required list. Deeper
// facets (minimum, pattern, enum, ...) are accepted in the raw schema and
// simply ignored.
type jsonSchema struct {
	Type       string                `json:"type"`
	Properties map[string]jsonSchema `json:"properties"`
	Required   []string              `json:"required"`
	Items      *jsonSchema           `json:"items"`
}

// validateArgs performs the type-tagged argument check against schema. A
// nil or empty schema admits any arguments.
func validateArgs(schema json.RawMessage, args map[string]any) error {
	if len(schema) == 0 {
		return nil
	}
	var s jsonSchema
	if err := json.Unmarshal(schema, &s); err != nil {
		return fmt.Errorf("input schema is not valid JSON: %w", err)
	}
	for _, name := range s.Required {
		if _, ok := args[name]; !ok {
			return fmt.Errorf("missing required argument %q", name)
		}
	}
	for name, propSchema := range s.Properties {
		val, present := args[name]
		if !present {
			continue
		}
		if !matchesKind(propSchema.Type, val) {
			return fmt.Errorf("argument %q: expected %s, got %s", name, propSchema.Type, describeKind(val))
		}
	}
	return nil
}

func matchesKind(declared string, val any) bool {
	if declared == "" {
		return true
	}
	switch declared {
	case "string":
		_, ok := val.(string)
		return ok
	case "number", "integer":
		switch val.(type) {
		case float64, json.Number, int, int64:
			return true
		default:
			return false
		}
	case "boolean":
		_, ok := val.(bool)
		return ok
	case "array":
		_, ok := val.([]any)
		return ok
	case "object":
		_, ok := val.(map[string]any)
		return ok
	case "null":
		return val == nil
	default:
		return true
	}
}

func describeKind(val any) string {
	switch val.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, json.Number, int, int64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "unknown"
	}
}
