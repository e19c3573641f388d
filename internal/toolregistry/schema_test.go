package toolregistry

import "testing"

func TestValidateArgsRequiresDeclaredFields(t *testing.T) {
	schema := []byte(`{"type":"object","properties":{"a":{"type":"number"}},"required":["a"]}`)
	if err := validateArgs(schema, map[string]any{}); err == nil {
		t.Fatal("expected error for missing required field")
	}
	if err := validateArgs(schema, map[string]any{"a": 1.0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateArgsChecksTypeTag(t *testing.T) {
	schema := []byte(`{"type":"object","properties":{"name":{"type":"string"},"count":{"type":"number"},"ok":{"type":"boolean"}}}`)
	cases := []struct {
		name string
		args map[string]any
		ok   bool
	}{
		{"all correct", map[string]any{"name": "x", "count": 1.0, "ok": true}, true},
		{"wrong string type", map[string]any{"name": 5.0}, false},
		{"wrong number type", map[string]any{"count": "five"}, false},
		{"wrong bool type", map[string]any{"ok": "yes"}, false},
		{"unknown extra field ignored", map[string]any{"extra": true}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateArgs(schema, tc.args)
			if (err == nil) != tc.ok {
				t.Errorf("validateArgs() error = %v, want ok=%v", err, tc.ok)
			}
		})
	}
}

func TestValidateArgsEmptySchemaAdmitsAnything(t *testing.T) {
	if err := validateArgs(nil, map[string]any{"anything": 1}); err != nil {
		t.Errorf("empty schema should admit any args, got %v", err)
	}
}
