// Package agent drives the decision loop of autonomous agents.
//
// Each tick of an Agent updates its state machine, processes its behaviour
// tree, runs one arbitration cycle over its blackboard and finally runs the
// actions the winning expert passed, in order.
package agent

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joeycumines/decisioncore/internal/arbiter"
	"github.com/joeycumines/decisioncore/internal/blackboard"
	"github.com/joeycumines/decisioncore/internal/metrics"
	"github.com/joeycumines/decisioncore/internal/tree"
)

// Machine is the part of a state machine an agent drives, satisfied by
// *fsm.StateMachine of any id type.
type Machine interface {
	Update() error
}

// Trace describes one completed tick.
type Trace struct {
	Agent      string
	Tick       int
	Status     tree.Status
	Winner     string
	Insistence int
	Actions    int
	Duration   time.Duration
	Err        error
}

// Agent owns a blackboard, a tree, an arbiter and optionally a state
// machine. It is not safe for concurrent use.
type Agent struct {
	id      uuid.UUID
	name    string
	bb      *blackboard.Blackboard
	root    tree.Node
	arbiter *arbiter.Arbiter
	experts []arbiter.Expert // pending registration
	machine Machine
	logger  *slog.Logger
	metrics *metrics.Collector
	trace   func(Trace)

	ticks      int
	last       tree.Status
	winner     string
	insistence int
}

// Option configures an Agent.
type Option func(*Agent)

// WithBlackboard uses bb instead of a new blackboard.
func WithBlackboard(bb *blackboard.Blackboard) Option {
	return func(a *Agent) {
		a.bb = bb
	}
}

// WithStateMachine sets the machine updated at the start of each tick.
func WithStateMachine(m Machine) Option {
	return func(a *Agent) {
		a.machine = m
	}
}

// WithExperts registers experts with the agent's arbiter, in order.
func WithExperts(experts ...arbiter.Expert) Option {
	return func(a *Agent) {
		a.experts = append(a.experts, experts...)
	}
}

// WithLogger sets the logger for the agent and its arbiter.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// WithMetrics records ticks and selections in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(a *Agent) {
		a.metrics = c
	}
}

// WithTrace sets a hook called after every tick.
func WithTrace(fn func(Trace)) Option {
	return func(a *Agent) {
		a.trace = fn
	}
}

// New returns an agent running root. Unless WithBlackboard is given, the
// agent gets its own blackboard.
func New(name string, root tree.Node, opts ...Option) *Agent {
	if root == nil {
		panic("agent: nil tree")
	}
	a := &Agent{
		id:   uuid.New(),
		name: name,
		root: root,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.bb == nil {
		a.bb = blackboard.New()
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	a.logger = a.logger.With("agent", a.name)
	a.arbiter = arbiter.New(
		arbiter.WithLogger(a.logger),
		arbiter.WithObserver(a.observe),
	)
	for _, e := range a.experts {
		a.arbiter.Register(e)
	}
	a.experts = nil
	return a
}

// ID returns the agent's unique id.
func (a *Agent) ID() uuid.UUID { return a.id }

// Name returns the agent's name.
func (a *Agent) Name() string { return a.name }

// Blackboard returns the agent's blackboard.
func (a *Agent) Blackboard() *blackboard.Blackboard { return a.bb }

// Tree returns the root node.
func (a *Agent) Tree() tree.Node { return a.root }

// Arbiter returns the agent's arbiter.
func (a *Agent) Arbiter() *arbiter.Arbiter { return a.arbiter }

// Ticks returns the number of completed ticks.
func (a *Agent) Ticks() int { return a.ticks }

// LastStatus returns the tree status of the last tick, or 0 before the first.
func (a *Agent) LastStatus() tree.Status { return a.last }

func (a *Agent) observe(winner arbiter.Expert, insistence int) {
	a.winner = arbiter.Describe(winner)
	a.insistence = insistence
	if a.metrics != nil {
		a.metrics.ObserveSelection(a.name, a.winner)
	}
}

// Tick runs one decision cycle.
//
// An error from the state machine aborts the tick. An expert error is
// returned after the passed actions have run.
func (a *Agent) Tick() (tree.Status, error) {
	start := time.Now()
	a.winner, a.insistence = "", 0

	if a.machine != nil {
		if err := a.machine.Update(); err != nil {
			return 0, fmt.Errorf("agent %s: state machine: %w", a.name, err)
		}
	}

	status := a.root.Process()

	actions, err := a.arbiter.BlackboardIteration(a.bb)
	for _, action := range actions {
		action()
	}

	a.ticks++
	a.last = status
	elapsed := time.Since(start)

	if a.metrics != nil {
		a.metrics.ObserveTick(a.name, status.String(), elapsed)
	}
	a.logger.Debug("agent tick",
		"tick", a.ticks,
		"tree", a.root.Name(),
		"status", status,
		"expert", a.winner,
		"actions", len(actions))
	if a.trace != nil {
		a.trace(Trace{
			Agent:      a.name,
			Tick:       a.ticks,
			Status:     status,
			Winner:     a.winner,
			Insistence: a.insistence,
			Actions:    len(actions),
			Duration:   elapsed,
			Err:        err,
		})
	}
	if err != nil {
		return status, fmt.Errorf("agent %s: %w", a.name, err)
	}
	return status, nil
}

// RecordTransition reports a state change to the agent's log and metrics.
func (a *Agent) RecordTransition(from, to string) {
	a.logger.Debug("agent state transition", "from", from, "to", to)
	if a.metrics != nil {
		a.metrics.ObserveTransition(a.name, from, to)
	}
}

// TransitionHook adapts RecordTransition for fsm.OnTransition.
func TransitionHook[ID comparable](a *Agent) func(from, to ID) {
	return func(from, to ID) {
		a.RecordTransition(fmt.Sprint(from), fmt.Sprint(to))
	}
}
