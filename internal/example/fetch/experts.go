package fetch

import (
	"github.com/joeycumines/decisioncore/internal/arbiter"
	"github.com/joeycumines/decisioncore/internal/blackboard"
)

// Insistence of the owner and keeper experts. A due dismissal pre-empts
// the next throw.
const (
	PickUpInsistence  = 40
	DismissInsistence = 35
	ThrowInsistence   = 30
	CallInsistence    = 20
	RefillInsistence  = 5
)

func boolValue(bb *blackboard.Blackboard, name string) bool {
	v, _ := blackboard.TryGetValue[bool](bb, bb.GetOrRegisterKey(name))
	return v
}

func intValue(bb *blackboard.Blackboard, name string) int {
	v, _ := blackboard.TryGetValue[int](bb, bb.GetOrRegisterKey(name))
	return v
}

// PickUpExpert has the owner pick up the ball the dog dropped nearby,
// counting the fetch.
type PickUpExpert struct {
	World *World
	Reach float64
}

func (e *PickUpExpert) Name() string { return "PickUp" }

func (e *PickUpExpert) Insistence(*blackboard.Blackboard) int {
	w := e.World
	if w.HeldBy != nil || w.Thrown || w.Ball.Pos.Dist(w.Owner.Pos) > e.Reach {
		return 0
	}
	return PickUpInsistence
}

func (e *PickUpExpert) Execute(bb *blackboard.Blackboard) error {
	w := e.World
	bb.PassAction(func() {
		if !w.Grab(w.Owner) {
			return
		}
		bb.SetValue(bb.GetOrRegisterKey(KeyFetches), intValue(bb, KeyFetches)+1)
		bb.SetValue(bb.GetOrRegisterKey(KeyRound), intValue(bb, KeyRound)+1)
	})
	return nil
}

// ThrowExpert has the owner throw the ball up to Distance away once a called
// dog is within Range.
type ThrowExpert struct {
	World    *World
	Range    float64
	Distance float64
}

func (e *ThrowExpert) Name() string { return "Throw" }

func (e *ThrowExpert) Insistence(bb *blackboard.Blackboard) int {
	w := e.World
	if w.HeldBy != w.Owner || !boolValue(bb, KeyCalledDog) || w.Dog.Pos.Dist(w.Owner.Pos) > e.Range {
		return 0
	}
	return ThrowInsistence
}

func (e *ThrowExpert) Execute(bb *blackboard.Blackboard) error {
	w := e.World
	target := w.RandomPoint(w.Owner.Pos, e.Distance)
	bb.PassAction(func() { w.Throw(target) })
	return nil
}

// CallExpert has the owner call the dog once Every seconds have passed since
// it was last dismissed.
type CallExpert struct {
	World *World
	Every float64
}

func (e *CallExpert) Name() string { return "Call" }

func (e *CallExpert) Insistence(bb *blackboard.Blackboard) int {
	w := e.World
	if boolValue(bb, KeyCalledDog) || w.HeldBy != w.Owner {
		return 0
	}
	since, _ := blackboard.TryGetValue[float64](bb, bb.GetOrRegisterKey(KeyDismissedAt))
	if w.Now-since < e.Every {
		return 0
	}
	return CallInsistence
}

func (e *CallExpert) Execute(bb *blackboard.Blackboard) error {
	bb.PassAction(func() {
		bb.SetValue(bb.GetOrRegisterKey(KeyCalledDog), true)
		bb.SetValue(bb.GetOrRegisterKey(KeyRound), 0)
	})
	return nil
}

// DismissExpert sends the dog off once it has fetched Rounds times since it
// was called.
type DismissExpert struct {
	World  *World
	Rounds int
}

func (e *DismissExpert) Name() string { return "Dismiss" }

func (e *DismissExpert) Insistence(bb *blackboard.Blackboard) int {
	w := e.World
	if !boolValue(bb, KeyCalledDog) || w.HeldBy != w.Owner || intValue(bb, KeyRound) < e.Rounds {
		return 0
	}
	return DismissInsistence
}

func (e *DismissExpert) Execute(bb *blackboard.Blackboard) error {
	w := e.World
	bb.PassAction(func() {
		bb.SetValue(bb.GetOrRegisterKey(KeyCalledDog), false)
		bb.SetValue(bb.GetOrRegisterKey(KeyDismissedAt), w.Now)
	})
	return nil
}

// KeeperExpert refills emptied bowls after Delay seconds, moving them to a
// new spot.
type KeeperExpert struct {
	World *World
	Delay float64
}

func (e *KeeperExpert) Name() string { return "Keeper" }

func (e *KeeperExpert) Insistence(*blackboard.Blackboard) int {
	if len(e.empty()) == 0 {
		return 0
	}
	return RefillInsistence
}

func (e *KeeperExpert) Execute(bb *blackboard.Blackboard) error {
	w := e.World
	for _, bowl := range e.empty() {
		pos := w.RandomPoint(Vec{}, w.Size*2/3)
		bb.PassAction(func() {
			bowl.Pos = pos
			w.SetActive(bowl, true)
		})
	}
	return nil
}

func (e *KeeperExpert) empty() []*Entity {
	var out []*Entity
	for _, bowl := range []*Entity{e.World.Food, e.World.Water} {
		if !bowl.Active && e.World.Now-bowl.Changed >= e.Delay {
			out = append(out, bowl)
		}
	}
	return out
}

// Experts returns the owner and keeper experts for w with their default
// tuning.
func Experts(w *World) []arbiter.Expert {
	return []arbiter.Expert{
		&PickUpExpert{World: w, Reach: 2.5},
		&ThrowExpert{World: w, Range: 6, Distance: 15},
		&CallExpert{World: w, Every: 20},
		&DismissExpert{World: w, Rounds: 3},
		&KeeperExpert{World: w, Delay: 10},
	}
}
