package predicate

import (
	"fmt"
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/joeycumines/decisioncore/internal/blackboard"
)

// Compile compiles a boolean expression, reusing the shared program cache.
// Undefined variables evaluate to nil rather than failing compilation, so an
// expression may reference blackboard entries that are not yet set.
func Compile(source string) (*vm.Program, error) {
	if program, ok := programs.Get(source); ok {
		return program, nil
	}
	program, err := expr.Compile(source,
		expr.Env(map[string]any{}),
		expr.AsBool(),
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, err
	}
	programs.Put(source, program)
	return program, nil
}

// Run evaluates a compiled boolean program against env.
func Run(program *vm.Program, env map[string]any) (bool, error) {
	result, err := expr.Run(program, env)
	if err != nil {
		return false, err
	}
	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("expression returned non-boolean result: %T", result)
	}
	return b, nil
}

// Expr evaluates an expr-lang expression over a declared set of blackboard
// entries. Each declared name is bound as a variable of the same name; unset
// entries are bound to nil.
//
//	p, err := predicate.NewExpr(bb, `Hunger > 50 && !CalledDog`, "Hunger", "CalledDog")
type Expr struct {
	bb      *blackboard.Blackboard
	source  string
	names   []string
	keys    []blackboard.Key
	program *vm.Program
	lastErr error
}

// NewExpr compiles source and registers the declared names on bb.
func NewExpr(bb *blackboard.Blackboard, source string, names ...string) (*Expr, error) {
	if source == "" {
		return nil, fmt.Errorf("predicate: empty expression")
	}
	program, err := Compile(source)
	if err != nil {
		return nil, fmt.Errorf("predicate: compile %q: %w", source, err)
	}
	e := &Expr{
		bb:      bb,
		source:  source,
		names:   names,
		keys:    make([]blackboard.Key, len(names)),
		program: program,
	}
	for i, name := range names {
		e.keys[i] = bb.GetOrRegisterKey(name)
	}
	return e, nil
}

// Source returns the expression text.
func (e *Expr) Source() string {
	return e.source
}

// Env returns the variables the expression would be evaluated against.
func (e *Expr) Env() map[string]any {
	env := make(map[string]any, len(e.names))
	for i, name := range e.names {
		v, _ := e.bb.Value(e.keys[i])
		env[name] = v
	}
	return env
}

// Evaluate implements Predicate. An evaluation error yields false; the error
// is logged and kept until the next evaluation.
func (e *Expr) Evaluate() bool {
	result, err := Run(e.program, e.Env())
	e.lastErr = err
	if err != nil {
		slog.Error("predicate: expression evaluation failed",
			"expression", e.source,
			"error", err)
		return false
	}
	return result
}

// LastError returns the error from the most recent evaluation, if any.
func (e *Expr) LastError() error {
	return e.lastErr
}
