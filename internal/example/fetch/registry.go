package fetch

import (
	"github.com/joeycumines/decisioncore/internal/blackboard"
	"github.com/joeycumines/decisioncore/internal/tree"
	"github.com/joeycumines/decisioncore/internal/treedoc"
)

// Register adds the dog's strategies to reg, so tree documents can name
// them. Each factory returns a fresh strategy bound to the dog's world;
// FetchBall and the planned bowl strategies read the blackboard of the tree
// being built.
func (d *Dog) Register(reg *treedoc.Registry) {
	w := d.world
	reg.Register("FetchBall", func(bb *blackboard.Blackboard) tree.Strategy {
		f := NewFetchBall(w, bb, 6, 0.5, 2)
		f.SetLogger(d.logger)
		return f
	})
	reg.Register("RunToOwner", func(*blackboard.Blackboard) tree.Strategy {
		return NewMoveToTarget(w, w.Dog, w.Owner, 5, 4)
	})
	reg.Register("MoveToFoodBowl", func(*blackboard.Blackboard) tree.Strategy {
		return NewMoveToTarget(w, w.Dog, w.Food, 5, bowlReach)
	})
	reg.Register("MoveToWaterBowl", func(*blackboard.Blackboard) tree.Strategy {
		return NewMoveToTarget(w, w.Dog, w.Water, 3, bowlReach)
	})
	reg.Register("EatFood", func(*blackboard.Blackboard) tree.Strategy {
		return tree.NewActionStrategy(func() { w.SetActive(w.Food, false) })
	})
	reg.Register("DrinkWater", func(*blackboard.Blackboard) tree.Strategy {
		return tree.NewActionStrategy(func() { w.SetActive(w.Water, false) })
	})
	reg.Register("PlanEat", func(bb *blackboard.Blackboard) tree.Strategy {
		return NewPlannedBowl(w, bb, w.Food, KeyFoodInReach, KeyAtFood, KeyFoodActive, 5)
	})
	reg.Register("PlanDrink", func(bb *blackboard.Blackboard) tree.Strategy {
		return NewPlannedBowl(w, bb, w.Water, KeyWaterInReach, KeyAtWater, KeyWaterActive, 3)
	})
	reg.Register("Explore", func(*blackboard.Blackboard) tree.Strategy {
		return d.newExplore()
	})
}
