// Package fetch is a headless dog-and-owner world driven by the decision
// core.
//
// A behaviour tree decides what the dog does: fetch a thrown ball, run to
// the owner when called, eat or drink from a bowl in reach, or explore. The
// owner and the bowls are driven by arbiter experts, and a state machine
// tracks the dog's gait. Everything advances in fixed time steps, so a run is
// reproducible for a given seed.
package fetch

import (
	"math"
	"math/rand/v2"
)

// Vec is a point or direction on the ground plane.
type Vec struct{ X, Y float64 }

func (v Vec) Add(o Vec) Vec         { return Vec{v.X + o.X, v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec         { return Vec{v.X - o.X, v.Y - o.Y} }
func (v Vec) Scale(f float64) Vec   { return Vec{v.X * f, v.Y * f} }
func (v Vec) Dot(o Vec) float64     { return v.X*o.X + v.Y*o.Y }
func (v Vec) Len() float64          { return math.Hypot(v.X, v.Y) }
func (v Vec) Dist(o Vec) float64    { return v.Sub(o).Len() }
func (v Vec) Normalize() Vec {
	l := v.Len()
	if l == 0 {
		return Vec{}
	}
	return v.Scale(1 / l)
}

// Angle returns the angle between a and b in degrees, 0 if either is zero.
func Angle(a, b Vec) float64 {
	la, lb := a.Len(), b.Len()
	if la == 0 || lb == 0 {
		return 0
	}
	cos := math.Max(-1, math.Min(1, a.Dot(b)/(la*lb)))
	return math.Acos(cos) * 180 / math.Pi
}

// Entity is anything with a position in the world.
type Entity struct {
	Name    string
	Pos     Vec
	Forward Vec
	// Speed is the speed of the entity's last move, zero when it stood
	// still.
	Speed float64
	// Active is false for an emptied bowl.
	Active bool
	// Changed is the world time Active last changed.
	Changed   float64
	Animation string
}

// World holds the dog, its owner, the ball and two bowls.
type World struct {
	Dog   *Entity
	Owner *Entity
	Ball  *Entity
	Food  *Entity
	Water *Entity

	// Dt is the simulated duration of one step, in seconds.
	Dt  float64
	Now float64
	// Size is the half-extent of the square play area centred on the
	// origin.
	Size float64

	// HeldBy is the entity carrying the ball, nil while it lies on the
	// ground.
	HeldBy *Entity
	// Thrown is set by a throw and cleared when the ball is picked up.
	Thrown bool

	rng *rand.Rand
}

// NewWorld returns the starting layout: the owner holds the ball at the
// origin with the dog nearby and both bowls full.
func NewWorld(seed uint64) *World {
	w := &World{
		Dog:   &Entity{Name: "dog", Pos: Vec{8, 0}, Forward: Vec{-1, 0}, Active: true},
		Owner: &Entity{Name: "owner", Pos: Vec{0, 0}, Forward: Vec{1, 0}, Active: true},
		Ball:  &Entity{Name: "ball", Active: true},
		Food:  &Entity{Name: "food bowl", Pos: Vec{-12, 10}, Active: true},
		Water: &Entity{Name: "water bowl", Pos: Vec{12, 10}, Active: true},
		Dt:    0.1,
		Size:  30,
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	w.HeldBy = w.Owner
	w.Ball.Pos = w.Owner.Pos
	return w
}

// Rand returns the world's random source.
func (w *World) Rand() *rand.Rand { return w.rng }

// Step advances the clock by Dt.
func (w *World) Step() { w.Now += w.Dt }

// MoveTowards moves e up to speed*Dt towards target, carrying the ball if e
// holds it, and returns the remaining distance.
func (w *World) MoveTowards(e *Entity, target Vec, speed float64) float64 {
	d := target.Sub(e.Pos)
	dist := d.Len()
	if dist == 0 {
		e.Speed = 0
		return 0
	}
	e.Forward = d.Normalize()
	step := speed * w.Dt
	if step >= dist {
		e.Pos = target
		e.Speed = dist / w.Dt
	} else {
		e.Pos = e.Pos.Add(e.Forward.Scale(step))
		e.Speed = speed
	}
	if w.HeldBy == e {
		w.Ball.Pos = e.Pos
	}
	return e.Pos.Dist(target)
}

// LookAt turns e to face target.
func (w *World) LookAt(e *Entity, target Vec) {
	if f := target.Sub(e.Pos).Normalize(); f != (Vec{}) {
		e.Forward = f
	}
}

// Throw moves the ball from the owner's hand to to, clamped to the play
// area. It reports false if the owner is not holding the ball.
func (w *World) Throw(to Vec) bool {
	if w.HeldBy != w.Owner {
		return false
	}
	w.HeldBy = nil
	w.Ball.Pos = w.clamp(to)
	w.Thrown = true
	return true
}

// Grab gives the ball to e if it lies on the ground.
func (w *World) Grab(e *Entity) bool {
	if w.HeldBy != nil {
		return false
	}
	w.HeldBy = e
	w.Ball.Pos = e.Pos
	w.Thrown = false
	return true
}

// Drop puts the ball held by e on the ground at e's feet.
func (w *World) Drop(e *Entity) bool {
	if w.HeldBy != e {
		return false
	}
	w.HeldBy = nil
	w.Ball.Pos = e.Pos
	return true
}

// SetActive fills or empties a bowl.
func (w *World) SetActive(e *Entity, active bool) {
	if e.Active == active {
		return
	}
	e.Active = active
	e.Changed = w.Now
}

// RandomPoint returns a uniformly distributed point within radius of
// center, clamped to the play area.
func (w *World) RandomPoint(center Vec, radius float64) Vec {
	r := radius * math.Sqrt(w.rng.Float64())
	theta := 2 * math.Pi * w.rng.Float64()
	return w.clamp(center.Add(Vec{r * math.Cos(theta), r * math.Sin(theta)}))
}

func (w *World) clamp(v Vec) Vec {
	return Vec{
		X: math.Max(-w.Size, math.Min(w.Size, v.X)),
		Y: math.Max(-w.Size, math.Min(w.Size, v.Y)),
	}
}
