package planning

import (
	"log/slog"

	"github.com/expr-lang/expr/vm"
	pabt "github.com/joeycumines/go-pabt"

	"github.com/joeycumines/decisioncore/internal/predicate"
)

// Cond is a condition on a single variable.
type Cond struct {
	key   any
	match func(value any) bool
}

var _ pabt.Condition = (*Cond)(nil)

// NewCond returns a condition on key.
func NewCond(key any, match func(value any) bool) *Cond {
	return &Cond{key: key, match: match}
}

// Key implements pabt.Condition.
func (c *Cond) Key() any { return c.key }

// Match implements pabt.Condition.
func (c *Cond) Match(value any) bool {
	if c.match == nil {
		return false
	}
	return c.match(value)
}

// EqualityCond holds when key equals expected.
func EqualityCond(key, expected any) *Cond {
	return NewCond(key, func(value any) bool { return value == expected })
}

// NotNilCond holds when key is set.
func NotNilCond(key any) *Cond {
	return NewCond(key, func(value any) bool { return value != nil })
}

// NilCond holds when key is unset.
func NilCond(key any) *Cond {
	return NewCond(key, func(value any) bool { return value == nil })
}

// Effect sets key to value.
type Effect struct {
	key   any
	value any
}

var _ pabt.Effect = (*Effect)(nil)

// NewEffect returns an effect.
func NewEffect(key, value any) *Effect {
	return &Effect{key: key, value: value}
}

// Key implements pabt.Effect.
func (e *Effect) Key() any { return e.key }

// Value implements pabt.Effect.
func (e *Effect) Value() any { return e.value }

// ExprCond is a condition written as an expr-lang expression over the
// variable, bound as "value":
//
//	planning.NewExprCond("Hunger", "value != nil && value < 20")
type ExprCond struct {
	key     any
	source  string
	program *vm.Program
	lastErr error
}

var _ pabt.Condition = (*ExprCond)(nil)

// NewExprCond compiles source.
func NewExprCond(key any, source string) (*ExprCond, error) {
	program, err := predicate.Compile(source)
	if err != nil {
		return nil, err
	}
	return &ExprCond{key: key, source: source, program: program}, nil
}

// Key implements pabt.Condition.
func (c *ExprCond) Key() any { return c.key }

// Match implements pabt.Condition. Evaluation errors count as no match and
// are kept for LastError.
func (c *ExprCond) Match(value any) bool {
	ok, err := predicate.Run(c.program, map[string]any{"value": value})
	c.lastErr = err
	if err != nil {
		slog.Error("planning: condition evaluation failed",
			"expression", c.source,
			"key", c.key,
			"error", err)
		return false
	}
	return ok
}

// LastError returns the error from the most recent Match, if any.
func (c *ExprCond) LastError() error { return c.lastErr }
