// Package treedoc builds behaviour trees from YAML documents.
//
//	name: Dog
//	policy: forever
//	children:
//	  - type: priority
//	    name: Dog Logic
//	    children:
//	      - type: sequence
//	        name: Drink
//	        priority: 50
//	        children:
//	          - type: condition
//	            name: Thirsty
//	            expr: Thirst != nil && Thirst > 70
//	            vars: [Thirst]
//	          - type: leaf
//	            name: GoToBowl
//	            strategy: MoveToBowl
//
// Leaves name a strategy from a Registry, or a script object when the
// Builder has a script host. Conditions test a boolean blackboard entry
// (key), an expression over declared entries (expr and vars), or a script
// function (script).
package treedoc

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/joeycumines/decisioncore/internal/blackboard"
	"github.com/joeycumines/decisioncore/internal/predicate"
	"github.com/joeycumines/decisioncore/internal/script"
	"github.com/joeycumines/decisioncore/internal/tree"
)

var (
	// ErrUnknownNodeType is returned for a node type the builder cannot
	// construct.
	ErrUnknownNodeType = errors.New("treedoc: unknown node type")
	// ErrUnknownStrategy is returned for a leaf naming an unregistered
	// strategy.
	ErrUnknownStrategy = errors.New("treedoc: unknown strategy")
)

// Node types.
const (
	TypeSequence  = "sequence"
	TypeSelector  = "selector"
	TypePriority  = "priority"
	TypeRandom    = "random"
	TypeInverter  = "inverter"
	TypeUntilFail = "untilFail"
	TypeLeaf      = "leaf"
	TypeCondition = "condition"
)

// Document is the root of a tree.
type Document struct {
	Name     string `yaml:"name"`
	Policy   string `yaml:"policy"`
	Children []Node `yaml:"children"`
}

// Node describes one tree node.
type Node struct {
	Type     string `yaml:"type"`
	Name     string `yaml:"name"`
	Priority int    `yaml:"priority,omitempty"`

	// leaf
	Strategy string `yaml:"strategy,omitempty"`
	// leaf or condition
	Script string `yaml:"script,omitempty"`

	// condition
	Key  string   `yaml:"key,omitempty"`
	Expr string   `yaml:"expr,omitempty"`
	Vars []string `yaml:"vars,omitempty"`

	Children []Node `yaml:"children,omitempty"`
}

// Parse decodes a document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("treedoc: %w", err)
	}
	return &doc, nil
}

// Load reads and decodes the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// ParsePolicy maps a policy name to a tree.Policy. The empty name means
// forever.
func ParsePolicy(name string) (tree.Policy, error) {
	switch name {
	case "", "forever":
		return tree.RunForever, nil
	case "untilSuccess":
		return tree.RunUntilSuccess, nil
	case "untilFailure":
		return tree.RunUntilFailure, nil
	default:
		return nil, fmt.Errorf("treedoc: unknown policy %q", name)
	}
}

// Factory creates a fresh strategy for one leaf.
type Factory func(bb *blackboard.Blackboard) tree.Strategy

// Registry maps strategy names to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, factory Factory) {
	r.factories[name] = factory
}

// Lookup returns the factory for name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	f, ok := r.factories[name]
	return f, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Builder turns documents into trees for one blackboard.
type Builder struct {
	Registry   *Registry
	Blackboard *blackboard.Blackboard
	// Host resolves script leaves and conditions; optional.
	Host *script.Host
	// Rand seeds random selectors; optional.
	Rand *rand.Rand
}

// Build constructs the tree described by doc.
func (b *Builder) Build(doc *Document) (*tree.BehaviourTree, error) {
	if b.Blackboard == nil {
		return nil, errors.New("treedoc: builder has no blackboard")
	}
	policy, err := ParsePolicy(doc.Policy)
	if err != nil {
		return nil, err
	}
	children := make([]tree.Node, 0, len(doc.Children))
	for i := range doc.Children {
		child, err := b.node(&doc.Children[i], doc.Name)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return tree.NewBehaviourTree(doc.Name, policy, children...), nil
}

func (b *Builder) node(n *Node, parent string) (tree.Node, error) {
	path := parent + "/" + n.Name
	switch n.Type {
	case TypeSequence, TypeSelector, TypePriority, TypeRandom:
		children, err := b.children(n, path)
		if err != nil {
			return nil, err
		}
		switch n.Type {
		case TypeSequence:
			return tree.NewSequence(n.Name, n.Priority, children...), nil
		case TypeSelector:
			return tree.NewSelector(n.Name, n.Priority, children...), nil
		case TypePriority:
			return tree.NewPrioritySelector(n.Name, n.Priority, children...), nil
		default:
			r := tree.NewRandomSelector(n.Name, n.Priority, children...)
			if b.Rand != nil {
				r.SetRand(b.Rand)
			}
			return r, nil
		}

	case TypeInverter, TypeUntilFail:
		if len(n.Children) != 1 {
			return nil, fmt.Errorf("treedoc: %s: %s needs exactly one child, got %d", path, n.Type, len(n.Children))
		}
		child, err := b.node(&n.Children[0], path)
		if err != nil {
			return nil, err
		}
		var out tree.Node
		if n.Type == TypeInverter {
			out = tree.NewInverter(n.Name, child)
		} else {
			out = tree.NewUntilFail(n.Name, child)
		}
		out.SetPriority(n.Priority)
		return out, nil

	case TypeLeaf:
		strategy, err := b.strategy(n, path)
		if err != nil {
			return nil, err
		}
		return tree.NewLeaf(n.Name, n.Priority, strategy), nil

	case TypeCondition:
		p, err := b.predicate(n, path)
		if err != nil {
			return nil, err
		}
		return tree.NewLeaf(n.Name, n.Priority, tree.NewConditionStrategy(p)), nil

	default:
		return nil, fmt.Errorf("%w: %s: %q", ErrUnknownNodeType, path, n.Type)
	}
}

func (b *Builder) children(n *Node, path string) ([]tree.Node, error) {
	out := make([]tree.Node, 0, len(n.Children))
	for i := range n.Children {
		child, err := b.node(&n.Children[i], path)
		if err != nil {
			return nil, err
		}
		out = append(out, child)
	}
	return out, nil
}

func (b *Builder) strategy(n *Node, path string) (tree.Strategy, error) {
	switch {
	case n.Strategy != "":
		if b.Registry == nil {
			return nil, fmt.Errorf("%w: %s: %q (no registry)", ErrUnknownStrategy, path, n.Strategy)
		}
		factory, ok := b.Registry.Lookup(n.Strategy)
		if !ok {
			return nil, fmt.Errorf("%w: %s: %q", ErrUnknownStrategy, path, n.Strategy)
		}
		return factory(b.Blackboard), nil
	case n.Script != "":
		if b.Host == nil {
			return nil, fmt.Errorf("treedoc: %s: script leaf without a script host", path)
		}
		s, err := b.Host.Strategy(n.Script)
		if err != nil {
			return nil, fmt.Errorf("treedoc: %s: %w", path, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("treedoc: %s: leaf needs a strategy or script", path)
	}
}

func (b *Builder) predicate(n *Node, path string) (predicate.Predicate, error) {
	switch {
	case n.Expr != "":
		p, err := predicate.NewExpr(b.Blackboard, n.Expr, n.Vars...)
		if err != nil {
			return nil, fmt.Errorf("treedoc: %s: %w", path, err)
		}
		return p, nil
	case n.Key != "":
		return predicate.NewBool(b.Blackboard, n.Key), nil
	case n.Script != "":
		if b.Host == nil {
			return nil, fmt.Errorf("treedoc: %s: script condition without a script host", path)
		}
		p, err := b.Host.Predicate(n.Script)
		if err != nil {
			return nil, fmt.Errorf("treedoc: %s: %w", path, err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("treedoc: %s: condition needs key, expr or script", path)
	}
}
