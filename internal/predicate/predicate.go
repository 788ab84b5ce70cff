// Package predicate provides boolean conditions shared by behavior tree
// leaves and state machine transitions.
//
// Predicates are capability objects: each one declares the context it reads
// (a blackboard key, a pair of sources, a list of variable names) at
// construction time, instead of capturing arbitrary mutable state.
package predicate

import (
	"github.com/joeycumines/decisioncore/internal/blackboard"
)

// Predicate is a boolean condition, potentially stateful.
type Predicate interface {
	Evaluate() bool
}

// Func adapts a plain function to Predicate.
type Func func() bool

// Evaluate implements Predicate.
func (f Func) Evaluate() bool {
	if f == nil {
		return false
	}
	return f()
}

// True and False are constant predicates.
var (
	True  Predicate = constant(true)
	False Predicate = constant(false)
)

type constant bool

func (c constant) Evaluate() bool { return bool(c) }

type not struct{ p Predicate }

// Not negates p.
func Not(p Predicate) Predicate {
	return not{p: p}
}

func (n not) Evaluate() bool {
	return !n.p.Evaluate()
}

type all []Predicate

// All is true when every predicate is true, evaluated in order with
// short-circuiting. All() with no predicates is true.
func All(predicates ...Predicate) Predicate {
	return all(predicates)
}

func (a all) Evaluate() bool {
	for _, p := range a {
		if !p.Evaluate() {
			return false
		}
	}
	return true
}

type anyOf []Predicate

// Any is true when at least one predicate is true, evaluated in order with
// short-circuiting. Any() with no predicates is false.
func Any(predicates ...Predicate) Predicate {
	return anyOf(predicates)
}

func (a anyOf) Evaluate() bool {
	for _, p := range a {
		if p.Evaluate() {
			return true
		}
	}
	return false
}

// Bool reads a boolean blackboard entry.
type Bool struct {
	bb  *blackboard.Blackboard
	key blackboard.Key
	// Default is returned when the key is unset or not a bool.
	Default bool
}

// NewBool returns a predicate reading the bool stored under name, registering
// the key if needed.
func NewBool(bb *blackboard.Blackboard, name string) *Bool {
	return &Bool{bb: bb, key: bb.GetOrRegisterKey(name)}
}

// Key returns the key the predicate reads.
func (b *Bool) Key() blackboard.Key {
	return b.key
}

// Evaluate implements Predicate.
func (b *Bool) Evaluate() bool {
	v, ok := blackboard.TryGetValue[bool](b.bb, b.key)
	if !ok {
		return b.Default
	}
	return v
}
