package blackboard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlackboard_GetOrRegisterKeyInterns(t *testing.T) {
	t.Parallel()

	bb := New()
	a := bb.GetOrRegisterKey("X")
	b := bb.GetOrRegisterKey("X")
	require.Equal(t, a, b)

	c := bb.GetOrRegisterKey("Y")
	require.NotEqual(t, a, c)

	name, ok := bb.Name(a)
	require.True(t, ok)
	require.Equal(t, "X", name)

	k, ok := bb.Lookup("Y")
	require.True(t, ok)
	require.Equal(t, c, k)

	_, ok = bb.Lookup("Z")
	require.False(t, ok)
}

func TestBlackboard_ZeroValueUsable(t *testing.T) {
	t.Parallel()

	var bb Blackboard
	_, ok := bb.Value(Key{})
	require.False(t, ok)
	require.Equal(t, 0, bb.Len())

	k := bb.GetOrRegisterKey("lazy")
	bb.SetValue(k, 1)
	v, ok := TryGetValue[int](&bb, k)
	require.True(t, ok)
	require.Equal(t, 1, v)
}

func TestBlackboard_SetThenTryGet(t *testing.T) {
	t.Parallel()

	bb := New()
	k := bb.GetOrRegisterKey("BallThrown")

	v, ok := TryGetValue[bool](bb, k)
	require.False(t, ok)
	require.False(t, v)

	bb.SetValue(k, true)
	v, ok = TryGetValue[bool](bb, k)
	require.True(t, ok)
	require.True(t, v)

	// mutation is visible immediately
	bb.SetValue(k, false)
	v, ok = TryGetValue[bool](bb, k)
	require.True(t, ok)
	require.False(t, v)
}

func TestBlackboard_TypeMismatchFailsSoftly(t *testing.T) {
	t.Parallel()

	bb := New()
	k := bb.GetOrRegisterKey("count")
	bb.SetValue(k, 42)

	s, ok := TryGetValue[string](bb, k)
	require.False(t, ok)
	require.Empty(t, s)

	f, ok := TryGetValue[float64](bb, k)
	require.False(t, ok)
	require.Zero(t, f)

	i, ok := TryGetValue[int](bb, k)
	require.True(t, ok)
	require.Equal(t, 42, i)
}

func TestBlackboard_DeleteKeepsKey(t *testing.T) {
	t.Parallel()

	bb := New()
	k := bb.GetOrRegisterKey("a")
	bb.SetValue(k, "v")
	require.True(t, bb.Has(k))

	bb.Delete(k)
	require.False(t, bb.Has(k))
	require.Equal(t, k, bb.GetOrRegisterKey("a"))
	require.Equal(t, []string{"a"}, bb.Names())
}

func TestBlackboard_Snapshot(t *testing.T) {
	t.Parallel()

	bb := New()
	bb.SetValue(bb.GetOrRegisterKey("a"), 1)
	bb.SetValue(bb.GetOrRegisterKey("b"), "two")
	bb.GetOrRegisterKey("unset")

	snapshot := bb.Snapshot()
	require.Equal(t, map[string]any{"a": 1, "b": "two"}, snapshot)

	snapshot["c"] = 3
	_, ok := bb.Lookup("c")
	require.False(t, ok)
}

func TestBlackboard_PassedActions(t *testing.T) {
	t.Parallel()

	bb := New()
	require.Empty(t, bb.PassedActions())

	var calls []int
	bb.PassAction(func() { calls = append(calls, 1) })
	bb.PassAction(nil)
	bb.PassAction(func() { calls = append(calls, 2) })

	actions := bb.PassedActions()
	require.Len(t, actions, 2)

	bb.ClearActions()
	require.Empty(t, bb.PassedActions())

	// the returned copy survives clearing
	for _, a := range actions {
		a()
	}
	require.Equal(t, []int{1, 2}, calls)
}

func TestBlackboard_CollisionProbes(t *testing.T) {
	t.Parallel()

	bb := New()
	first := bb.GetOrRegisterKey("first")

	// simulate a collision: occupy the slot "second" would hash to
	second := Key{hash: fnv1a("second")}
	bb.names[second] = "squatter"
	bb.keys["squatter"] = second

	k := bb.GetOrRegisterKey("second")
	require.NotEqual(t, second, k)
	require.NotEqual(t, first, k)
	name, ok := bb.Name(k)
	require.True(t, ok)
	require.Equal(t, "second", name)
	require.Equal(t, k, bb.GetOrRegisterKey("second"))
}

func TestFNV1a(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		in   string
		want uint32
	}{
		{"", 2166136261},
		{"a", 0xe40c292c},
		{"foobar", 0xbf9cf968},
	} {
		require.Equal(t, tc.want, fnv1a(tc.in), tc.in)
	}
}
