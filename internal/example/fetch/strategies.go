package fetch

import (
	"log/slog"

	"github.com/joeycumines/decisioncore/internal/blackboard"
	"github.com/joeycumines/decisioncore/internal/tree"
)

// MoveToTarget walks an entity towards a target, succeeding once closer than
// the reach distance.
type MoveToTarget struct {
	world  *World
	entity *Entity
	target *Entity
	speed  float64
	reach  float64
}

// NewMoveToTarget returns a strategy walking entity towards target at speed
// until it is within reach.
func NewMoveToTarget(w *World, entity, target *Entity, speed, reach float64) *MoveToTarget {
	return &MoveToTarget{world: w, entity: entity, target: target, speed: speed, reach: reach}
}

// Process implements tree.Strategy.
func (m *MoveToTarget) Process() tree.Status {
	if m.entity.Pos.Dist(m.target.Pos) < m.reach {
		m.entity.Speed = 0
		m.world.LookAt(m.entity, m.target.Pos)
		return tree.Success
	}
	m.world.MoveTowards(m.entity, m.target.Pos, m.speed)
	return tree.Running
}

// arrived is how close Explore needs to get to a destination.
const arrived = 0.5

// Explore wanders between random destinations. Every interval it pauses to
// scan, enlarging its detectors' radius by multiplier; when the pause ends
// it heads for a detected target, if any. Explore never finishes.
type Explore struct {
	world     *World
	detectors []*ObjectDetector
	baseRadii []float64

	speed      float64
	radius     float64
	interval   float64
	pause      float64
	multiplier float64

	elapsed  float64
	pausing  bool
	pauseEnd float64
	dest     Vec
	hasDest  bool
	logger   *slog.Logger
}

// NewExplore returns an explore strategy for the world's dog.
func NewExplore(w *World, speed, radius, interval, pause, multiplier float64, detectors ...*ObjectDetector) *Explore {
	e := &Explore{
		world:      w,
		detectors:  detectors,
		speed:      speed,
		radius:     radius,
		interval:   interval,
		pause:      pause,
		multiplier: multiplier,
		logger:     slog.Default(),
	}
	for _, d := range detectors {
		e.baseRadii = append(e.baseRadii, d.Radius())
	}
	return e
}

// SetLogger replaces the logger, slog.Default by default. A nil logger is
// ignored.
func (e *Explore) SetLogger(logger *slog.Logger) {
	if logger != nil {
		e.logger = logger
	}
}

// Pausing reports whether the dog is stopped for a scan.
func (e *Explore) Pausing() bool { return e.pausing }

// Destination returns the current destination, if any.
func (e *Explore) Destination() (Vec, bool) { return e.dest, e.hasDest }

// Process implements tree.Strategy.
func (e *Explore) Process() tree.Status {
	e.elapsed += e.world.Dt
	if e.elapsed >= e.interval {
		if !e.pausing {
			e.startPause()
		}
		if e.world.Now < e.pauseEnd {
			return tree.Running
		}
		e.endPause()
	}
	dog := e.world.Dog
	if !e.hasDest || dog.Pos.Dist(e.dest) <= arrived {
		e.newDestination()
	}
	e.world.MoveTowards(dog, e.dest, e.speed)
	return tree.Running
}

func (e *Explore) startPause() {
	e.logger.Debug("explore: pausing to scan", "until", e.world.Now+e.pause)
	e.pausing = true
	e.pauseEnd = e.world.Now + e.pause
	e.world.Dog.Speed = 0
	for i, d := range e.detectors {
		d.SetRadius(e.baseRadii[i] * e.multiplier)
	}
}

func (e *Explore) endPause() {
	e.pausing = false
	e.elapsed = 0
	found := false
	for _, d := range e.detectors {
		if !found && d.CanDetect() {
			e.dest, e.hasDest, found = d.Target.Pos, true, true
			e.logger.Debug("explore: heading for detected target", "target", d.Target.Name)
		}
	}
	e.restoreRadii()
	if !found {
		e.newDestination()
	}
}

func (e *Explore) newDestination() {
	e.dest = e.world.RandomPoint(e.world.Dog.Pos, e.radius)
	e.hasDest = true
}

func (e *Explore) restoreRadii() {
	for i, d := range e.detectors {
		d.SetRadius(e.baseRadii[i])
	}
}

// Reset implements tree.Resetter.
func (e *Explore) Reset() {
	e.pausing = false
	e.elapsed = 0
	e.hasDest = false
	e.restoreRadii()
}

// FetchPhase is a step of the fetch routine.
type FetchPhase int

const (
	WaitingForThrow FetchPhase = iota
	MovingToBall
	PickingUpBall
	ReturningToOwner
	DroppingBall
)

func (p FetchPhase) String() string {
	switch p {
	case WaitingForThrow:
		return "WaitingForThrow"
	case MovingToBall:
		return "MovingToBall"
	case PickingUpBall:
		return "PickingUpBall"
	case ReturningToOwner:
		return "ReturningToOwner"
	case DroppingBall:
		return "DroppingBall"
	default:
		return "FetchPhase(?)"
	}
}

// FetchBall runs the fetch routine: chase the thrown ball, pick it up, bring
// it back and drop it at the owner's feet, then wait for the next throw. It
// starts by chasing, and fails only while waiting if the dog is no longer
// called.
type FetchBall struct {
	world  *World
	bb     *blackboard.Blackboard
	thrown blackboard.Key
	called blackboard.Key

	speed       float64
	pickupRange float64
	dropRange   float64
	waitRange   float64

	phase  FetchPhase
	logger *slog.Logger
}

// NewFetchBall returns a fetch routine for the world's dog reading
// KeyBallThrown and KeyCalledDog from bb.
func NewFetchBall(w *World, bb *blackboard.Blackboard, speed, pickupRange, dropRange float64) *FetchBall {
	return &FetchBall{
		world:       w,
		bb:          bb,
		thrown:      bb.GetOrRegisterKey(KeyBallThrown),
		called:      bb.GetOrRegisterKey(KeyCalledDog),
		speed:       speed,
		pickupRange: pickupRange,
		dropRange:   dropRange,
		waitRange:   4,
		phase:       MovingToBall,
		logger:      slog.Default(),
	}
}

// Phase returns the current phase.
func (f *FetchBall) Phase() FetchPhase { return f.phase }

// SetLogger replaces the logger, slog.Default by default. A nil logger is
// ignored.
func (f *FetchBall) SetLogger(logger *slog.Logger) {
	if logger != nil {
		f.logger = logger
	}
}

// Process implements tree.Strategy.
func (f *FetchBall) Process() tree.Status {
	w, dog := f.world, f.world.Dog
	switch f.phase {
	case WaitingForThrow:
		if called, ok := blackboard.TryGetValue[bool](f.bb, f.called); ok && !called {
			f.logger.Debug("fetch: dog dismissed")
			return tree.Failure
		}
		if dog.Pos.Dist(w.Owner.Pos) > f.waitRange {
			w.MoveTowards(dog, w.Owner.Pos, f.speed)
		}
		if thrown, _ := blackboard.TryGetValue[bool](f.bb, f.thrown); thrown {
			f.bb.SetValue(f.thrown, false)
			f.setPhase(MovingToBall)
		}

	case MovingToBall:
		w.MoveTowards(dog, w.Ball.Pos, f.speed)
		if dog.Pos.Dist(w.Ball.Pos) <= f.pickupRange {
			f.setPhase(PickingUpBall)
		}

	case PickingUpBall:
		if w.HeldBy == dog || w.Grab(dog) {
			f.setPhase(ReturningToOwner)
		} else {
			// the owner got there first
			f.setPhase(WaitingForThrow)
		}

	case ReturningToOwner:
		w.MoveTowards(dog, w.Owner.Pos, f.speed)
		if dog.Pos.Dist(w.Owner.Pos) <= f.dropRange {
			f.setPhase(DroppingBall)
		}

	case DroppingBall:
		w.Drop(dog)
		f.bb.SetValue(f.thrown, false)
		f.setPhase(WaitingForThrow)

	default:
		return tree.Failure
	}
	return tree.Running
}

func (f *FetchBall) setPhase(p FetchPhase) {
	f.logger.Debug("fetch", "from", f.phase, "to", p)
	f.phase = p
}

// Reset implements tree.Resetter, restarting with the chase.
func (f *FetchBall) Reset() { f.phase = MovingToBall }
