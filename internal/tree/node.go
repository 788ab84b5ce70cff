package tree

import "fmt"

// Node is an element of a behavior tree.
//
// Node implementations are provided by this package; custom behavior plugs
// in through Strategy and Leaf.
type Node interface {
	// Name is used for debugging only.
	Name() string
	// Priority orders children of a PrioritySelector, higher first.
	Priority() int
	SetPriority(priority int)
	// Process evaluates the node for the current tick.
	Process() Status
	// Reset returns the node and all its descendants to their initial state.
	Reset()
	// Children returns a copy of the node's children.
	Children() []Node

	node() *base
}

// base holds the state shared by every node.
type base struct {
	name         string
	priority     int
	children     []Node
	currentChild int
	parent       *base
	sealed       bool
}

func newBase(name string, priority int) base {
	return base{name: name, priority: priority}
}

func (b *base) node() *base { return b }

// Name implements Node.
func (b *base) Name() string { return b.name }

// Priority implements Node.
func (b *base) Priority() int { return b.priority }

// SetPriority implements Node. Priority selectors pick the change up on
// their next Reset.
func (b *base) SetPriority(priority int) { b.priority = priority }

// Children implements Node.
func (b *base) Children() []Node {
	if len(b.children) == 0 {
		return nil
	}
	children := make([]Node, len(b.children))
	copy(children, b.children)
	return children
}

// CurrentChild returns the cursor of sequentially iterating nodes. It is
// always within [0, len(children)].
func (b *base) CurrentChild() int { return b.currentChild }

// Reset implements Node.
func (b *base) Reset() {
	b.currentChild = 0
	for _, child := range b.children {
		child.Reset()
	}
}

// seal freezes the child list; called on every Process of a node with
// children.
func (b *base) seal() { b.sealed = true }

func (b *base) attach(child Node) {
	if child == nil {
		panic(fmt.Sprintf("tree: nil child added to %q", b.name))
	}
	if b.sealed {
		panic(fmt.Sprintf("tree: cannot add %q to %q: children are immutable once processed", child.Name(), b.name))
	}
	c := child.node()
	if c.parent != nil {
		panic(fmt.Sprintf("tree: cannot add %q to %q: already a child of %q", child.Name(), b.name, c.parent.name))
	}
	for p := b; p != nil; p = p.parent {
		if p == c {
			panic(fmt.Sprintf("tree: cannot add %q to %q: would create a cycle", child.Name(), b.name))
		}
	}
	c.parent = b
	b.children = append(b.children, child)
}

// composite is embedded by nodes accepting any number of children.
type composite struct {
	base
}

// AddChild appends children in order. It panics if a child already has a
// parent, would create a cycle, or if the node has been processed.
func (c *composite) AddChild(children ...Node) {
	for _, child := range children {
		c.attach(child)
	}
}

// process evaluates n and rejects statuses outside Running, Success and
// Failure.
func process(n Node) Status {
	status := n.Process()
	if !status.Valid() {
		panic(fmt.Sprintf("tree: node %q returned %v", n.Name(), status))
	}
	return status
}
