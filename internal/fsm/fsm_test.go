package fsm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeycumines/decisioncore/internal/predicate"
)

type recorder struct {
	name string
	log  *[]string
}

func (r *recorder) OnEnter()     { *r.log = append(*r.log, "enter "+r.name) }
func (r *recorder) OnExit()      { *r.log = append(*r.log, "exit "+r.name) }
func (r *recorder) Update()      { *r.log = append(*r.log, "update "+r.name) }
func (r *recorder) FixedUpdate() { *r.log = append(*r.log, "fixed "+r.name) }

type id int

const (
	idle id = iota
	walk
	run
)

func newMachine(log *[]string) *StateMachine[id] {
	m := New[id]()
	m.AddState(idle, &recorder{"idle", log})
	m.AddState(walk, &recorder{"walk", log})
	m.AddState(run, &recorder{"run", log})
	return m
}

func TestUpdate_BeforeSetState(t *testing.T) {
	t.Parallel()

	m := New[string]()
	m.AddState("a", nil)
	require.ErrorIs(t, m.Update(), ErrNoCurrentState)
	require.ErrorIs(t, m.FixedUpdate(), ErrNoCurrentState)
	_, ok := m.Current()
	require.False(t, ok)
}

func TestSetState(t *testing.T) {
	t.Parallel()

	var log []string
	m := newMachine(&log)

	require.ErrorIs(t, m.SetState(id(42)), ErrUnknownState)

	require.NoError(t, m.SetState(idle))
	require.NoError(t, m.SetState(idle))
	require.NoError(t, m.SetState(walk))
	require.Equal(t, []string{"enter idle", "exit idle", "enter walk"}, log)

	cur, ok := m.Current()
	require.True(t, ok)
	require.Equal(t, walk, cur)
}

func TestUpdate_TransitionThenUpdate(t *testing.T) {
	t.Parallel()

	var log []string
	m := newMachine(&log)
	tired := false
	m.AddTransition(idle, walk, predicate.True)
	m.AddTransition(walk, idle, predicate.Func(func() bool { return tired }))
	require.NoError(t, m.SetState(idle))
	log = nil

	require.NoError(t, m.Update())
	require.Equal(t, []string{"exit idle", "enter walk", "update walk"}, log)

	log = nil
	require.NoError(t, m.Update())
	require.Equal(t, []string{"update walk"}, log)

	tired = true
	log = nil
	require.NoError(t, m.Update())
	require.Equal(t, []string{"exit walk", "enter idle", "update idle"}, log)
}

func TestUpdate_AnyTransitionPreempts(t *testing.T) {
	t.Parallel()

	var log []string
	m := newMachine(&log)
	m.AddTransition(idle, walk, predicate.True)
	m.AddAnyTransition(run, predicate.True)
	require.NoError(t, m.SetState(idle))
	log = nil

	require.NoError(t, m.Update())
	require.Equal(t, []string{"exit idle", "enter run", "update run"}, log)

	// the global transition into run keeps matching and blocks everything else
	log = nil
	m.AddTransition(run, walk, predicate.True)
	require.NoError(t, m.Update())
	require.Equal(t, []string{"update run"}, log)
}

func TestUpdate_FirstTruePredicateWins(t *testing.T) {
	t.Parallel()

	var log []string
	m := newMachine(&log)
	m.AddTransition(idle, walk, predicate.False)
	m.AddTransition(idle, run, predicate.True)
	m.AddTransition(idle, walk, predicate.True)
	require.NoError(t, m.SetState(idle))

	require.NoError(t, m.Update())
	cur, _ := m.Current()
	require.Equal(t, run, cur)
}

func TestFixedUpdate_DoesNotTransition(t *testing.T) {
	t.Parallel()

	var log []string
	m := newMachine(&log)
	m.AddTransition(idle, walk, predicate.True)
	require.NoError(t, m.SetState(idle))
	log = nil

	require.NoError(t, m.FixedUpdate())
	require.Equal(t, []string{"fixed idle"}, log)
}

func TestLazyNodesAndNilStates(t *testing.T) {
	t.Parallel()

	m := New[string]()
	m.AddTransition("a", "b", predicate.True)
	require.NoError(t, m.SetState("a"))
	require.NoError(t, m.Update())
	cur, _ := m.Current()
	require.Equal(t, "b", cur)

	state, ok := m.State("b")
	require.True(t, ok)
	require.Nil(t, state)
	_, ok = m.State("c")
	require.False(t, ok)
}

func TestOnTransition(t *testing.T) {
	t.Parallel()

	type change struct{ from, to string }
	var changes []change
	m := New(OnTransition(func(from, to string) {
		changes = append(changes, change{from, to})
	}))
	m.AddTransition("a", "b", predicate.True)
	require.NoError(t, m.SetState("a"))
	require.NoError(t, m.Update())
	require.Equal(t, []change{{"", "a"}, {"a", "b"}}, changes)
}
