package toolregistry

import "testing"

func TestCELValidatorAdmitsMatchingArgs(t *testing.T) {
	v, err := NewCELValidator(`args["a"] > 0.0`)
	if err != nil {
		t.Fatalf("NewCELValidator() error: %v", err)
	}
	fn := v.Validator()
	if err := fn(map[string]any{"a": 1.0}); err != nil {
		t.Errorf("expected admission, got %v", err)
	}
}

func TestCELValidatorRejectsNonMatchingArgs(t *testing.T) {
	v, err := NewCELValidator(`args["a"] > 0.0`)
	if err != nil {
		t.Fatalf("NewCELValidator() error: %v", err)
	}
	fn := v.Validator()
	if err := fn(map[string]any{"a": -1.0}); err == nil {
		t.Error("expected rejection for a <= 0")
	}
}

func TestCELValidatorRejectsOverlongExpression(t *testing.T) {
	long := make([]byte, maxExpressionLength+1)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := NewCELValidator(string(long)); err == nil {
		t.Error("expected rejection for overlong expression")
	}
}

func TestCELValidatorRejectsUncompilableExpression(t *testing.T) {
	if _, err := NewCELValidator(`this is not cel`); err == nil {
		t.Error("expected compile error")
	}
}
