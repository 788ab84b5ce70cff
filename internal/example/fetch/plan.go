package fetch

import (
	bt "github.com/joeycumines/go-behaviortree"
	pabt "github.com/joeycumines/go-pabt"

	"github.com/joeycumines/decisioncore/internal/blackboard"
	"github.com/joeycumines/decisioncore/internal/gobt"
	"github.com/joeycumines/decisioncore/internal/planning"
)

// bowlReach is how close the dog must be to eat or drink.
const bowlReach = 0.2

// NewPlannedBowl returns a strategy planning its way to an emptied bowl:
// the goal is active == false, reached by consuming the bowl, which needs
// the dog at the bowl, which needs the bowl to be in reach. When the bowl is
// out of reach the plan runs for a few ticks while it expands, then fails,
// since no action makes the bowl reachable; the next call plans again.
func NewPlannedBowl(w *World, bb *blackboard.Blackboard, bowl *Entity, inReach, at, active string, speed float64) *planning.PlanStrategy {
	state := planning.NewState(bb)

	move := NewMoveToTarget(w, w.Dog, bowl, speed, bowlReach)
	state.RegisterAction(planning.NewActionBuilder("MoveToBowl").
		WithConditions(planning.EqualityCond(inReach, true)).
		WithEffect(at, true).
		WithNode(bt.New(func([]bt.Node) (bt.Status, error) {
			status := move.Process()
			bb.SetValue(bb.GetOrRegisterKey(at), w.Dog.Pos.Dist(bowl.Pos) < bowlReach)
			return gobt.ToBT(status), nil
		})).
		Build())

	state.RegisterAction(planning.NewActionBuilder("ConsumeBowl").
		WithConditions(planning.EqualityCond(at, true)).
		WithEffect(active, false).
		WithNode(bt.New(func([]bt.Node) (bt.Status, error) {
			w.SetActive(bowl, false)
			bb.SetValue(bb.GetOrRegisterKey(active), false)
			return bt.Success, nil
		})).
		Build())

	return planning.NewPlanStrategy(state, []pabt.IConditions{{planning.EqualityCond(active, false)}})
}
