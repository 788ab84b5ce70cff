package tree

import (
	"fmt"
	"strings"
)

// Kind returns a short lower-case name for the node's type.
func Kind(n Node) string {
	switch n.(type) {
	case *BehaviourTree:
		return "tree"
	case *Sequence:
		return "sequence"
	case *Selector:
		return "selector"
	case *RandomSelector:
		return "random"
	case *PrioritySelector:
		return "priority"
	case *Inverter:
		return "inverter"
	case *UntilFail:
		return "untilFail"
	case *Leaf:
		return "leaf"
	default:
		return fmt.Sprintf("%T", n)
	}
}

// Walk visits n and its descendants depth first, in child order. Returning
// false from fn skips the node's children.
func Walk(n Node, fn func(depth int, n Node) bool) {
	walk(n, 0, fn)
}

func walk(n Node, depth int, fn func(int, Node) bool) {
	if !fn(depth, n) {
		return
	}
	for _, child := range n.node().children {
		walk(child, depth+1, fn)
	}
}

// Format renders n as an indented outline, one node per line:
//
//	tree "Dog"
//	  priority "Dog Logic"
//	    sequence "FetchBall" priority=200
func Format(n Node) string {
	var sb strings.Builder
	Walk(n, func(depth int, n Node) bool {
		sb.WriteString(strings.Repeat("  ", depth))
		fmt.Fprintf(&sb, "%s %q", Kind(n), n.Name())
		if p := n.Priority(); p != 0 {
			fmt.Fprintf(&sb, " priority=%d", p)
		}
		sb.WriteByte('\n')
		return true
	})
	return sb.String()
}
