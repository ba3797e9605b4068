// Package filter decides which records are written, using CEL expressions
// over the raw payload.
//
// Variables available to expressions:
//
//	text    string  payload as text
//	size    int     payload length in bytes
//	json    dyn     payload parsed as JSON (null when it is not JSON)
//	now_ms  int     current time in milliseconds
//
// Example: `size < 1024 && json.level == "error"`.
package filter

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/cel-go/cel"
)

// Filter is a compiled expression. The zero value accepts everything.
type Filter struct {
	expr string
	prog cel.Program
	now  func() time.Time
}

// New compiles expr. An empty expression yields a Filter that accepts all
// payloads. The expression must evaluate to bool.
func New(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return &Filter{}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("text", cel.StringType),
		cel.Variable("size", cel.IntType),
		cel.Variable("json", cel.DynType),
		cel.Variable("now_ms", cel.IntType),
	)
	if err != nil {
		return nil, err
	}
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("filter: compile %q: %w", expr, iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) && !ast.OutputType().IsExactType(cel.DynType) {
		return nil, fmt.Errorf("filter: %q must evaluate to bool, got %s", expr, ast.OutputType())
	}
	prog, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("filter: program %q: %w", expr, err)
	}
	return &Filter{expr: expr, prog: prog, now: time.Now}, nil
}

// Enabled reports whether the filter has an expression.
func (f *Filter) Enabled() bool { return f != nil && f.prog != nil }

// String returns the source expression.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.expr
}

// Eval reports whether payload passes. Evaluation errors, such as a missing
// JSON field, reject the payload.
func (f *Filter) Eval(payload []byte) bool {
	if !f.Enabled() {
		return true
	}
	var doc any
	_ = json.Unmarshal(payload, &doc)
	out, _, err := f.prog.Eval(map[string]any{
		"text":   string(payload),
		"size":   int64(len(payload)),
		"json":   doc,
		"now_ms": f.now().UnixMilli(),
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
