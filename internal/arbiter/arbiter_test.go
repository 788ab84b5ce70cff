package arbiter

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeycumines/decisioncore/internal/blackboard"
)

type mockExpert struct {
	name       string
	insistence int
	executed   int
	err        error
	log        *[]string
}

func (m *mockExpert) Name() string { return m.name }

func (m *mockExpert) Insistence(*blackboard.Blackboard) int { return m.insistence }

func (m *mockExpert) Execute(bb *blackboard.Blackboard) error {
	m.executed++
	bb.PassAction(func() {
		if m.log != nil {
			*m.log = append(*m.log, m.name)
		}
	})
	return m.err
}

type valueExpert struct{ fields []int }

func (valueExpert) Insistence(*blackboard.Blackboard) int { return 1 }
func (valueExpert) Execute(*blackboard.Blackboard) error  { return nil }

func TestBlackboardIteration_EarliestOfTiedWinsOnce(t *testing.T) {
	t.Parallel()

	var log []string
	zero := &mockExpert{name: "zero", log: &log}
	first := &mockExpert{name: "first", insistence: 7, log: &log}
	second := &mockExpert{name: "second", insistence: 7, log: &log}

	a := New()
	a.Register(zero)
	a.Register(first)
	a.Register(second)

	bb := blackboard.New()
	actions, err := a.BlackboardIteration(bb)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	require.Equal(t, []int{0, 1, 0}, []int{zero.executed, first.executed, second.executed})
	require.Empty(t, bb.PassedActions(), "queue is drained")

	for _, action := range actions {
		action()
	}
	require.Equal(t, []string{"first"}, log)
}

func TestBlackboardIteration_NoWinner(t *testing.T) {
	t.Parallel()

	negative := &mockExpert{name: "negative", insistence: -3}
	zero := &mockExpert{name: "zero"}
	a := New()
	a.Register(negative)
	a.Register(zero)

	bb := blackboard.New()
	// actions passed outside of arbitration are still drained
	bb.PassAction(func() {})

	actions, err := a.BlackboardIteration(bb)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	require.Zero(t, negative.executed+zero.executed)
	require.Empty(t, bb.PassedActions())

	actions, err = New().BlackboardIteration(bb)
	require.NoError(t, err)
	require.Empty(t, actions)
}

func TestBlackboardIteration_ExecuteError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	failing := &mockExpert{name: "failing", insistence: 1, err: boom}
	a := New()
	a.Register(failing)

	bb := blackboard.New()
	actions, err := a.BlackboardIteration(bb)
	require.ErrorIs(t, err, boom)
	require.ErrorContains(t, err, "failing")
	require.Len(t, actions, 1, "actions passed before the error are returned")
	require.Empty(t, bb.PassedActions())
}

func TestRegister(t *testing.T) {
	t.Parallel()

	a := New()
	e := &mockExpert{name: "e", insistence: 1}
	a.Register(e)
	a.Register(e)
	require.Equal(t, 1, a.Len())

	other := &mockExpert{name: "e", insistence: 1}
	a.Register(other)
	require.Equal(t, []Expert{e, other}, a.Experts())

	a.Deregister(e)
	require.Equal(t, []Expert{other}, a.Experts(), "deregister matches the exact instance")
	a.Deregister(e)
	require.Equal(t, 1, a.Len())

	require.Panics(t, func() { a.Register(nil) })
	require.Panics(t, func() { a.Register(valueExpert{}) })
	require.NotPanics(t, func() { a.Deregister(valueExpert{}) })
}

func TestObserverAndLogging(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var (
		winners     []Expert
		insistences []int
	)
	a := New(WithLogger(logger), WithObserver(func(winner Expert, insistence int) {
		winners = append(winners, winner)
		insistences = append(insistences, insistence)
	}))
	low := &mockExpert{name: "low", insistence: 2}
	high := &mockExpert{name: "high", insistence: 9}
	a.Register(low)
	a.Register(high)

	_, err := a.BlackboardIteration(blackboard.New())
	require.NoError(t, err)
	require.Equal(t, []Expert{high}, winners)
	require.Equal(t, []int{9}, insistences)
	require.Contains(t, buf.String(), "expert=high")
	require.Contains(t, buf.String(), "insistence=9")
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	require.Equal(t, "named", Describe(&mockExpert{name: "named"}))
	require.Equal(t, "arbiter.valueExpert", Describe(valueExpert{}))
}

type faultyExpert struct {
	mockExpert
	fault error
}

func (f *faultyExpert) InsistenceError() error { return f.fault }

func TestBlackboardIteration_InsistenceErrors(t *testing.T) {
	t.Parallel()

	bb := blackboard.New()
	boom := errors.New("boom")
	faulty := &faultyExpert{mockExpert: mockExpert{name: "faulty", insistence: 99}, fault: boom}
	steady := &mockExpert{name: "steady", insistence: 1}
	a := New()
	a.Register(faulty)
	a.Register(steady)

	actions, err := a.BlackboardIteration(bb)
	require.ErrorIs(t, err, boom)
	require.ErrorContains(t, err, "faulty insistence")
	require.Len(t, actions, 1, "the failed expert sits out, the next one wins")
	require.Zero(t, faulty.executed)
	require.Equal(t, 1, steady.executed)

	faulty.fault = nil
	actions, err = a.BlackboardIteration(bb)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	require.Equal(t, 1, faulty.executed)

	faulty.fault = boom
	steady.err = errors.New("steady failed")
	_, err = a.BlackboardIteration(bb)
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, err, steady.err)
}
