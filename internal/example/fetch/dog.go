package fetch

import (
	"log/slog"

	"github.com/joeycumines/decisioncore/internal/agent"
	"github.com/joeycumines/decisioncore/internal/blackboard"
	"github.com/joeycumines/decisioncore/internal/fsm"
	"github.com/joeycumines/decisioncore/internal/predicate"
	"github.com/joeycumines/decisioncore/internal/tree"
)

// Blackboard entries shared by the dog, its sensors and the owner.
const (
	KeyCalledDog    = "CalledDog"
	KeyBallInHand   = "BallInHand"
	KeyBallThrown   = "BallThrown"
	KeyFoodInReach  = "FoodBowlInReach"
	KeyWaterInReach = "WaterBowlInReach"
	KeyFoodActive   = "FoodBowlActive"
	KeyWaterActive  = "WaterBowlActive"
	KeyAtFood       = "AtFoodBowl"
	KeyAtWater      = "AtWaterBowl"
	KeyFetches      = "Fetches"
	KeyRound        = "Round"
	KeyDismissedAt  = "DismissedAt"
)

// Gait is the dog's animation state.
type Gait string

const (
	GaitIdle  Gait = "idle"
	GaitWalk  Gait = "walk"
	GaitRun   Gait = "run"
	GaitCarry Gait = "carry"
)

// runSpeed is the speed from which the dog runs rather than walks.
const runSpeed = 4

var animations = map[Gait]string{
	GaitIdle:  "Idle_2",
	GaitWalk:  "Walk_Fwd",
	GaitRun:   "Run_Fwd",
	GaitCarry: "Trot_Fwd",
}

type gaitState struct {
	dog  *Entity
	gait Gait
}

func (s gaitState) OnEnter() { s.dog.Animation = animations[s.gait] }

// Dog couples the world's dog to a blackboard. It senses the world into the
// blackboard, tracks its gait, and builds the behaviour tree deciding what
// it does.
type Dog struct {
	world  *World
	bb     *blackboard.Blackboard
	food   *ObjectDetector
	water  *ObjectDetector
	gait   *fsm.StateMachine[Gait]
	onGait func(from, to Gait)
	logger *slog.Logger

	tree  *tree.BehaviourTree
	fetch *FetchBall
}

// DogOption configures a Dog.
type DogOption func(*Dog)

// WithDogLogger sets the logger of the dog's state machine and strategies.
func WithDogLogger(logger *slog.Logger) DogOption {
	return func(d *Dog) {
		d.logger = logger
	}
}

// WithDetectionStrategy replaces the radius detection of both bowl
// detectors.
func WithDetectionStrategy(s DetectionStrategy) DogOption {
	return func(d *Dog) {
		d.food.SetStrategy(s)
		d.water.SetStrategy(s)
	}
}

// NewDog returns the dog of w using bb. CalledDog and BallThrown are
// initialised unless bb already holds them, so seeded values win.
func NewDog(w *World, bb *blackboard.Blackboard, opts ...DogOption) *Dog {
	d := &Dog{
		world: w,
		bb:    bb,
		food:  NewObjectDetector(w.Dog, w.Food, 6, 1, nil),
		water: NewObjectDetector(w.Dog, w.Water, 6, 1, nil),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	for name, v := range map[string]bool{KeyCalledDog: true, KeyBallThrown: false} {
		if k := bb.GetOrRegisterKey(name); !bb.Has(k) {
			bb.SetValue(k, v)
		}
	}
	d.gait = d.newGait()
	if err := d.gait.SetState(GaitIdle); err != nil {
		panic(err)
	}
	d.sense()
	d.tree = d.BuildTree()
	return d
}

func (d *Dog) newExplore() *Explore {
	e := NewExplore(d.world, 1.5, 25, 5, 3, 2, d.food, d.water)
	e.SetLogger(d.logger)
	return e
}

func (d *Dog) newGait() *fsm.StateMachine[Gait] {
	dog := d.world.Dog
	m := fsm.New(
		fsm.WithLogger[Gait](d.logger),
		fsm.OnTransition(func(from, to Gait) {
			if d.onGait != nil {
				d.onGait(from, to)
			}
		}),
	)
	for g := range animations {
		m.AddState(g, gaitState{dog: dog, gait: g})
	}
	still := predicate.Func(func() bool { return dog.Speed == 0 })
	walking := predicate.Func(func() bool { return dog.Speed > 0 && dog.Speed < runSpeed })
	running := predicate.Func(func() bool { return dog.Speed >= runSpeed })
	carrying := predicate.Func(func() bool { return d.world.HeldBy == dog })

	m.AddAnyTransition(GaitCarry, carrying)
	m.AddTransition(GaitCarry, GaitIdle, predicate.Not(carrying))
	m.AddTransition(GaitIdle, GaitWalk, walking)
	m.AddTransition(GaitIdle, GaitRun, running)
	m.AddTransition(GaitWalk, GaitRun, running)
	m.AddTransition(GaitWalk, GaitIdle, still)
	m.AddTransition(GaitRun, GaitWalk, walking)
	m.AddTransition(GaitRun, GaitIdle, still)
	return m
}

// World returns the dog's world.
func (d *Dog) World() *World { return d.world }

// Blackboard returns the dog's blackboard.
func (d *Dog) Blackboard() *blackboard.Blackboard { return d.bb }

// Tree returns the tree built by NewDog.
func (d *Dog) Tree() *tree.BehaviourTree { return d.tree }

// Fetch returns the fetch routine of the built-in tree.
func (d *Dog) Fetch() *FetchBall { return d.fetch }

// Gait returns the current gait.
func (d *Dog) Gait() Gait {
	g, _ := d.gait.Current()
	return g
}

// OnGait sets a hook called on every gait change.
func (d *Dog) OnGait(fn func(from, to Gait)) { d.onGait = fn }

// Update advances the world by one step: the gait follows the last move, the
// clock and detectors advance, and the blackboard is refreshed from the
// world. It implements agent.Machine.
func (d *Dog) Update() error {
	if err := d.gait.Update(); err != nil {
		return err
	}
	d.world.Dog.Speed = 0
	d.world.Step()
	d.food.Tick(d.world.Dt)
	d.water.Tick(d.world.Dt)
	d.sense()
	return nil
}

func (d *Dog) sense() {
	w, bb := d.world, d.bb
	set := func(name string, v bool) { bb.SetValue(bb.GetOrRegisterKey(name), v) }
	set(KeyBallInHand, w.HeldBy == w.Dog)
	set(KeyBallThrown, w.Thrown)
	set(KeyFoodInReach, d.food.CanDetect())
	set(KeyWaterInReach, d.water.CanDetect())
	set(KeyFoodActive, w.Food.Active)
	set(KeyWaterActive, w.Water.Active)
	set(KeyAtFood, w.Dog.Pos.Dist(w.Food.Pos) < bowlReach)
	set(KeyAtWater, w.Dog.Pos.Dist(w.Water.Pos) < bowlReach)
}

// guard returns p, resetting seq whenever p does not hold so a branch that
// lost its precondition restarts from scratch.
func guard(seq tree.Node, p predicate.Predicate) predicate.Predicate {
	return predicate.Func(func() bool {
		if p.Evaluate() {
			return true
		}
		seq.Reset()
		return false
	})
}

// BuildTree builds a fresh copy of the dog's tree:
//
//	Dog
//	  Dog Logic (priority)
//	    FetchBall (200): BallThrown, FetchBall
//	    RunToOwner (100): CalledDog, RunToOwner
//	    GetFoodOrWater (50, priority): GoToFoodBowl (20), GoToWaterBowl (10)
//	    Explore (1, priority): GoToFoodBowl (20), GoToWaterBowl (10), Explore
//
// The bowl sequences exist twice since a node has a single parent.
func (d *Dog) BuildTree() *tree.BehaviourTree {
	w, bb := d.world, d.bb

	fetch := tree.NewSequence("FetchBall", 200)
	d.fetch = NewFetchBall(w, bb, 6, 0.5, 2)
	d.fetch.SetLogger(d.logger)
	fetch.AddChild(
		tree.NewCondition("BallThrown", guard(fetch, predicate.NewBool(bb, KeyBallThrown))),
		tree.NewLeaf("FetchBallProcess", 0, d.fetch),
	)

	runToOwner := tree.NewSequence("RunToOwner", 100)
	runToOwner.AddChild(
		tree.NewCondition("CalledDog", guard(runToOwner, predicate.NewBool(bb, KeyCalledDog))),
		tree.NewLeaf("RunToOwner", 0, NewMoveToTarget(w, w.Dog, w.Owner, 5, 4)),
	)

	food := func() tree.Node {
		return d.bowl("GoToFoodBowl", 20, w.Food, KeyFoodInReach, KeyFoodActive, 5,
			"IsFoodBowlAvailable", "MoveToFoodBowl", "EatFood")
	}
	water := func() tree.Node {
		return d.bowl("GoToWaterBowl", 10, w.Water, KeyWaterInReach, KeyWaterActive, 3,
			"IsWaterBowlAvailable", "MoveToWaterBowl", "DrinkWater")
	}

	logic := tree.NewPrioritySelector("Dog Logic", 0,
		fetch,
		runToOwner,
		tree.NewPrioritySelector("GetFoodOrWater", 50, food(), water()),
		tree.NewPrioritySelector("Explore", 1,
			food(),
			water(),
			tree.NewLeaf("Explore", 0, d.newExplore()),
		),
	)
	return tree.NewBehaviourTree("Dog", tree.RunForever, logic)
}

// bowl builds a sequence walking to an available bowl and emptying it.
func (d *Dog) bowl(name string, priority int, bowl *Entity, inReach, active string, speed float64, available, move, consume string) tree.Node {
	bb := d.bb
	seq := tree.NewSequence(name, priority)
	seq.AddChild(
		tree.NewCondition(available, guard(seq, predicate.All(
			predicate.NewBool(bb, inReach),
			predicate.NewBool(bb, active),
		))),
		tree.NewLeaf(move, 0, NewMoveToTarget(d.world, d.world.Dog, bowl, speed, bowlReach)),
		tree.NewAction(consume, func() { d.world.SetActive(bowl, false) }),
	)
	return seq
}

// Agent returns an agent driving the dog with the owner and keeper experts.
// root replaces the dog's own tree when not nil. Gait changes are reported
// through the agent.
func (d *Dog) Agent(name string, root tree.Node, opts ...agent.Option) *agent.Agent {
	if root == nil {
		root = d.tree
	}
	opts = append([]agent.Option{
		agent.WithBlackboard(d.bb),
		agent.WithStateMachine(d),
		agent.WithExperts(Experts(d.world)...),
	}, opts...)
	a := agent.New(name, root, opts...)
	d.OnGait(agent.TransitionHook[Gait](a))
	return a
}
