package toolregistry

import (
	"context"
	"fmt"
	"time"

	"github.com/google/cel-go/cel"
)

// maxExpressionLength bounds a tool validator expression.
const maxExpressionLength = 1024

// evalTimeout bounds a single validator evaluation.
const evalTimeout = 2 * time.Second

// CELValidator compiles a CEL boolean expression once and exposes it as a
// Validator closure, an alternative to a hand-written Go func for tools
// whose embedder prefers declarative argument constraints over an
// optional validator closure.
type CELValidator struct {
	expr string
	prg  cel.Program
}

// NewCELValidator compiles expr against an environment exposing the
// call's arguments as a single "args" map(string, dyn) variable.
func NewCELValidator(expr string) (*CELValidator, error) {
	if len(expr) > maxExpressionLength {
		return nil, fmt.Errorf("validator expression too long: %d characters (max %d)", len(expr), maxExpressionLength)
	}
	env, err := cel.NewEnv(
		cel.Variable("args", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("building CEL environment: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compiling validator expression: %w", issues.Err())
	}
	prg, err := env.Program(ast, cel.EvalOptions(cel.OptOptimize))
	if err != nil {
		return nil, fmt.Errorf("building validator program: %w", err)
	}
	return &CELValidator{expr: expr, prg: prg}, nil
}

// Validator adapts the compiled expression to the toolregistry.Validator
// shape; the expression must evaluate to a bool, true meaning "admit".
func (v *CELValidator) Validator() Validator {
	return func(args map[string]any) error {
		ctx, cancel := context.WithTimeout(context.Background(), evalTimeout)
		defer cancel()

		activation := map[string]any{"args": args}
		out, _, err := v.prg.ContextEval(ctx, activation)
		if err != nil {
			return fmt.Errorf("validator expression %q failed: %w", v.expr, err)
		}
		ok, isBool := out.Value().(bool)
		if !isBool {
			return fmt.Errorf("validator expression %q did not return a boolean", v.expr)
		}
		if !ok {
			return fmt.Errorf("arguments rejected by validator expression %q", v.expr)
		}
		return nil
	}
}
