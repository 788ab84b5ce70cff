package planning

import (
	"fmt"

	bt "github.com/joeycumines/go-behaviortree"
	pabt "github.com/joeycumines/go-pabt"

	"github.com/joeycumines/decisioncore/internal/gobt"
	"github.com/joeycumines/decisioncore/internal/tree"
)

// PlanStrategy ticks a plan towards goal. The plan is built on first use and
// rebuilt after Reset or a Failure, so it reflects the actions registered at
// that time and the next call after a Failure starts from scratch.
//
// Planning and tick errors are reported as Failure and kept for Err.
type PlanStrategy struct {
	state *State
	goal  []pabt.IConditions
	node  bt.Node
	err   error
}

var (
	_ tree.Strategy = (*PlanStrategy)(nil)
	_ tree.Resetter = (*PlanStrategy)(nil)
)

// NewPlanStrategy returns a strategy planning over state. Each goal group is
// a conjunction; the groups are alternatives.
func NewPlanStrategy(state *State, goal []pabt.IConditions) *PlanStrategy {
	return &PlanStrategy{state: state, goal: goal}
}

// Process implements tree.Strategy.
func (p *PlanStrategy) Process() tree.Status {
	if p.node == nil {
		plan, err := pabt.INew(p.state, p.goal)
		if err != nil {
			p.err = fmt.Errorf("planning: create plan: %w", err)
			return tree.Failure
		}
		p.node = plan.Node()
	}
	status, err := p.node.Tick()
	if err != nil {
		p.node = nil
		p.err = fmt.Errorf("planning: tick: %w", err)
		return tree.Failure
	}
	out, ok := gobt.FromBT(status)
	if !ok {
		p.node = nil
		p.err = fmt.Errorf("planning: plan returned invalid status %d", status)
		return tree.Failure
	}
	if out == tree.Failure {
		p.node = nil
	}
	return out
}

// Reset implements tree.Resetter, discarding the plan and the last error.
func (p *PlanStrategy) Reset() {
	p.node = nil
	p.err = nil
}

// Err returns the error behind the last Failure, if any.
func (p *PlanStrategy) Err() error { return p.err }
