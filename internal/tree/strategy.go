package tree

import (
	"github.com/joeycumines/decisioncore/internal/predicate"
)

// Strategy is the unit of work behind a Leaf. It may be a pure action, a
// condition, or a stateful procedure spanning many ticks.
type Strategy interface {
	Process() Status
}

// Resetter is implemented by strategies holding state between ticks.
type Resetter interface {
	Reset()
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func() Status

// Process implements Strategy.
func (f StrategyFunc) Process() Status { return f() }

// ActionStrategy runs a side effect and always succeeds.
type ActionStrategy struct {
	do func()
}

// NewActionStrategy returns a strategy running do on every Process.
func NewActionStrategy(do func()) *ActionStrategy {
	return &ActionStrategy{do: do}
}

// Process implements Strategy.
func (a *ActionStrategy) Process() Status {
	if a.do != nil {
		a.do()
	}
	return Success
}

// ConditionStrategy succeeds when its predicate holds, and fails otherwise.
type ConditionStrategy struct {
	predicate predicate.Predicate
}

// NewConditionStrategy wraps p.
func NewConditionStrategy(p predicate.Predicate) *ConditionStrategy {
	return &ConditionStrategy{predicate: p}
}

// Process implements Strategy.
func (c *ConditionStrategy) Process() Status {
	if c.predicate.Evaluate() {
		return Success
	}
	return Failure
}

// Leaf is a node without children delegating to a Strategy.
type Leaf struct {
	base
	strategy Strategy
}

// NewLeaf returns a leaf running strategy.
func NewLeaf(name string, priority int, strategy Strategy) *Leaf {
	return &Leaf{base: newBase(name, priority), strategy: strategy}
}

// Strategy returns the wrapped strategy.
func (l *Leaf) Strategy() Strategy { return l.strategy }

// Process implements Node.
func (l *Leaf) Process() Status {
	return l.strategy.Process()
}

// Reset implements Node, forwarding to the strategy if it is a Resetter.
func (l *Leaf) Reset() {
	if r, ok := l.strategy.(Resetter); ok {
		r.Reset()
	}
}

// NewCondition is shorthand for a leaf wrapping a ConditionStrategy.
func NewCondition(name string, p predicate.Predicate) *Leaf {
	return NewLeaf(name, 0, NewConditionStrategy(p))
}

// NewAction is shorthand for a leaf wrapping an ActionStrategy.
func NewAction(name string, do func()) *Leaf {
	return NewLeaf(name, 0, NewActionStrategy(do))
}
