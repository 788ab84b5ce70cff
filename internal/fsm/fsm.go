// Package fsm implements a finite-state machine keyed by comparable ids, with
// per-state transitions and global transitions checked from any state.
package fsm

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/joeycumines/decisioncore/internal/predicate"
)

var (
	// ErrNoCurrentState is returned by Update and FixedUpdate before
	// SetState.
	ErrNoCurrentState = errors.New("fsm: no current state")
	// ErrUnknownState is returned by SetState for an id never referenced.
	ErrUnknownState = errors.New("fsm: unknown state")
)

// State is any value. It participates in the machine's lifecycle through
// the optional Enterer, Exiter, Updater and FixedUpdater interfaces.
type State any

// Enterer is called when its state becomes current.
type Enterer interface{ OnEnter() }

// Exiter is called when its state stops being current.
type Exiter interface{ OnExit() }

// Updater is called on every Update while its state is current.
type Updater interface{ Update() }

// FixedUpdater is called on every FixedUpdate while its state is current.
type FixedUpdater interface{ FixedUpdate() }

// Transition moves the machine to To when Predicate holds.
type Transition[ID comparable] struct {
	To        ID
	Predicate predicate.Predicate
}

type stateNode[ID comparable] struct {
	id          ID
	state       State
	transitions []Transition[ID]
}

// StateMachine is a state machine over ids of type ID. It is not safe for
// concurrent use.
type StateMachine[ID comparable] struct {
	nodes   []stateNode[ID]
	index   map[ID]int
	any     []Transition[ID]
	current int // -1 until SetState

	logger       *slog.Logger
	onTransition func(from, to ID)
}

// Option configures a StateMachine.
type Option[ID comparable] func(*StateMachine[ID])

// WithLogger sets the logger used for transition events.
func WithLogger[ID comparable](logger *slog.Logger) Option[ID] {
	return func(m *StateMachine[ID]) {
		m.logger = logger
	}
}

// OnTransition sets a hook called after every state change, including
// SetState. from is the zero ID when there was no current state.
func OnTransition[ID comparable](fn func(from, to ID)) Option[ID] {
	return func(m *StateMachine[ID]) {
		m.onTransition = fn
	}
}

// New returns an empty machine without a current state.
func New[ID comparable](opts ...Option[ID]) *StateMachine[ID] {
	m := &StateMachine[ID]{
		index:   make(map[ID]int),
		current: -1,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

// node returns the arena index for id, creating an empty node on first
// reference.
func (m *StateMachine[ID]) node(id ID) int {
	if i, ok := m.index[id]; ok {
		return i
	}
	m.nodes = append(m.nodes, stateNode[ID]{id: id})
	i := len(m.nodes) - 1
	m.index[id] = i
	return i
}

// AddState binds state to id, replacing any previous binding. A nil state is
// allowed; its lifecycle calls are skipped.
func (m *StateMachine[ID]) AddState(id ID, state State) {
	m.nodes[m.node(id)].state = state
}

// AddTransition adds a transition from one id to another, checked in
// registration order while from is current.
func (m *StateMachine[ID]) AddTransition(from, to ID, p predicate.Predicate) {
	m.node(to)
	i := m.node(from)
	m.nodes[i].transitions = append(m.nodes[i].transitions, Transition[ID]{To: to, Predicate: p})
}

// AddAnyTransition adds a transition checked before the current state's own
// transitions, whatever the current state.
func (m *StateMachine[ID]) AddAnyTransition(to ID, p predicate.Predicate) {
	m.node(to)
	m.any = append(m.any, Transition[ID]{To: to, Predicate: p})
}

// Current returns the current id, if any.
func (m *StateMachine[ID]) Current() (ID, bool) {
	if m.current < 0 {
		var zero ID
		return zero, false
	}
	return m.nodes[m.current].id, true
}

// State returns the state bound to id.
func (m *StateMachine[ID]) State(id ID) (State, bool) {
	i, ok := m.index[id]
	if !ok {
		return nil, false
	}
	return m.nodes[i].state, true
}

// SetState makes id current. The previous state, if any and different, is
// exited first. Setting the current state again does nothing.
func (m *StateMachine[ID]) SetState(id ID) error {
	i, ok := m.index[id]
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnknownState, id)
	}
	m.changeState(i)
	return nil
}

// Update checks transitions, then calls the current state's Update. Global
// transitions are checked first; the first predicate to hold wins, and a
// global transition into the current state suppresses the current state's
// own transitions for this call.
func (m *StateMachine[ID]) Update() error {
	if m.current < 0 {
		return ErrNoCurrentState
	}
	if to, ok := m.transition(); ok {
		m.changeState(to)
	}
	if u, ok := m.nodes[m.current].state.(Updater); ok {
		u.Update()
	}
	return nil
}

// FixedUpdate calls the current state's FixedUpdate. Transitions are only
// checked by Update.
func (m *StateMachine[ID]) FixedUpdate() error {
	if m.current < 0 {
		return ErrNoCurrentState
	}
	if u, ok := m.nodes[m.current].state.(FixedUpdater); ok {
		u.FixedUpdate()
	}
	return nil
}

func (m *StateMachine[ID]) transition() (int, bool) {
	for _, t := range m.any {
		if t.Predicate.Evaluate() {
			return m.index[t.To], true
		}
	}
	for _, t := range m.nodes[m.current].transitions {
		if t.Predicate.Evaluate() {
			return m.index[t.To], true
		}
	}
	return 0, false
}

func (m *StateMachine[ID]) changeState(to int) {
	if to == m.current {
		return
	}
	var from ID
	if m.current >= 0 {
		prev := &m.nodes[m.current]
		from = prev.id
		if e, ok := prev.state.(Exiter); ok {
			e.OnExit()
		}
	}
	next := &m.nodes[to]
	if e, ok := next.state.(Enterer); ok {
		e.OnEnter()
	}
	m.current = to
	m.logger.Debug("fsm transition", "from", from, "to", next.id)
	if m.onTransition != nil {
		m.onTransition(from, next.id)
	}
}
