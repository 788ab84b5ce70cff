package planning

import (
	"fmt"
	"slices"

	bt "github.com/joeycumines/go-behaviortree"
	pabt "github.com/joeycumines/go-pabt"
)

// ActionRegistry holds planning actions by name.
type ActionRegistry struct {
	actions map[string]pabt.IAction
}

// NewActionRegistry returns an empty registry.
func NewActionRegistry() *ActionRegistry {
	return &ActionRegistry{actions: make(map[string]pabt.IAction)}
}

// Register adds action under name, replacing any previous action.
func (r *ActionRegistry) Register(name string, action pabt.IAction) {
	r.actions[name] = action
}

// Get returns the action registered under name, or nil.
func (r *ActionRegistry) Get(name string) pabt.IAction {
	return r.actions[name]
}

// Names returns the registered names, sorted.
func (r *ActionRegistry) Names() []string {
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// All returns the registered actions sorted by name, so that plans are
// reproducible.
func (r *ActionRegistry) All() []pabt.IAction {
	result := make([]pabt.IAction, 0, len(r.actions))
	for _, name := range r.Names() {
		result = append(result, r.actions[name])
	}
	return result
}

// Action is a named pabt.IAction.
type Action struct {
	Name string

	// each group is a conjunction; the groups are alternatives
	conditions []pabt.IConditions
	effects    pabt.Effects
	node       bt.Node
}

var _ pabt.IAction = (*Action)(nil)

// NewAction returns an action. It panics if node is nil.
func NewAction(name string, conditions []pabt.IConditions, effects pabt.Effects, node bt.Node) *Action {
	if node == nil {
		panic(fmt.Sprintf("planning.NewAction: nil node (action=%s)", name))
	}
	return &Action{
		Name:       name,
		conditions: conditions,
		effects:    effects,
		node:       node,
	}
}

// Conditions implements pabt.IAction.
func (a *Action) Conditions() []pabt.IConditions { return a.conditions }

// Effects implements pabt.IAction.
func (a *Action) Effects() pabt.Effects { return a.effects }

// Node implements pabt.IAction.
func (a *Action) Node() bt.Node { return a.node }

// ActionBuilder assembles an Action.
type ActionBuilder struct {
	name       string
	conditions []pabt.IConditions
	effects    pabt.Effects
	node       bt.Node
}

// NewActionBuilder starts an action called name.
func NewActionBuilder(name string) *ActionBuilder {
	return &ActionBuilder{name: name}
}

// WithConditions adds an alternative group of preconditions, all of which
// must hold.
func (b *ActionBuilder) WithConditions(conds ...pabt.Condition) *ActionBuilder {
	b.conditions = append(b.conditions, conds)
	return b
}

// WithEffect adds an effect.
func (b *ActionBuilder) WithEffect(key, value any) *ActionBuilder {
	b.effects = append(b.effects, NewEffect(key, value))
	return b
}

// WithNode sets the node performing the action.
func (b *ActionBuilder) WithNode(node bt.Node) *ActionBuilder {
	b.node = node
	return b
}

// Build returns the action. A missing node becomes one that succeeds
// immediately.
func (b *ActionBuilder) Build() *Action {
	node := b.node
	if node == nil {
		node = bt.New(func([]bt.Node) (bt.Status, error) { return bt.Success, nil })
	}
	return NewAction(b.name, b.conditions, b.effects, node)
}
