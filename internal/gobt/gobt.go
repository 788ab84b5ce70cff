// Package gobt adapts between tree nodes and go-behaviortree.
//
// Node exposes a tree.Node as a bt.Node, so a decision tree can be driven by
// a bt.Ticker or embedded in a go-behaviortree composite. Strategy goes the
// other way, running a bt.Node as the strategy of a tree.Leaf.
package gobt

import (
	"fmt"

	bt "github.com/joeycumines/go-behaviortree"

	"github.com/joeycumines/decisioncore/internal/tree"
)

// ToBT converts a status. Both libraries share the same ordering.
func ToBT(s tree.Status) bt.Status {
	switch s {
	case tree.Running:
		return bt.Running
	case tree.Success:
		return bt.Success
	case tree.Failure:
		return bt.Failure
	default:
		return bt.Status(0)
	}
}

// FromBT converts a status, reporting false for values outside Running,
// Success and Failure.
func FromBT(s bt.Status) (tree.Status, bool) {
	switch s {
	case bt.Running:
		return tree.Running, true
	case bt.Success:
		return tree.Success, true
	case bt.Failure:
		return tree.Failure, true
	default:
		return 0, false
	}
}

// Node returns a bt.Node ticking n once per tick. The node's children are
// exposed, converted, for inspection only; n drives them itself.
func Node(n tree.Node) bt.Node {
	var children []bt.Node
	for _, child := range n.Children() {
		children = append(children, Node(child))
	}
	return bt.New(func([]bt.Node) (bt.Status, error) {
		return ToBT(n.Process()), nil
	}, children...)
}

// Strategy runs a bt.Node as a tree.Strategy. Errors returned by the node
// become Failure and are kept for Err.
type Strategy struct {
	node bt.Node
	err  error
}

// NewStrategy wraps node.
func NewStrategy(node bt.Node) *Strategy {
	return &Strategy{node: node}
}

// Process implements tree.Strategy.
func (s *Strategy) Process() tree.Status {
	status, err := s.node.Tick()
	if err != nil {
		s.err = err
		return tree.Failure
	}
	out, ok := FromBT(status)
	if !ok {
		s.err = fmt.Errorf("gobt: node returned invalid status %d", status)
		return tree.Failure
	}
	return out
}

// Reset implements tree.Resetter, clearing the last error.
func (s *Strategy) Reset() { s.err = nil }

// Err returns the error behind the last Failure caused by the node, if any.
func (s *Strategy) Err() error { return s.err }
