package blackboard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeed(t *testing.T) {
	t.Parallel()

	bb := New()
	err := bb.Seed([]Entry{
		{Name: "CalledDog", Type: TypeBool, Value: false},
		{Name: "Speed", Type: TypeFloat, Value: 5},
		{Name: "Lives", Type: TypeInt, Value: float64(3)},
		{Name: "Owner", Type: TypeString, Value: "player"},
		{Name: "Flag", Type: TypeBool, Value: "true"},
	})
	require.NoError(t, err)

	called, ok := TryGetValue[bool](bb, bb.GetOrRegisterKey("CalledDog"))
	require.True(t, ok)
	require.False(t, called)

	speed, ok := TryGetValue[float64](bb, bb.GetOrRegisterKey("Speed"))
	require.True(t, ok)
	require.Equal(t, 5.0, speed)

	lives, ok := TryGetValue[int](bb, bb.GetOrRegisterKey("Lives"))
	require.True(t, ok)
	require.Equal(t, 3, lives)

	owner, ok := TryGetValue[string](bb, bb.GetOrRegisterKey("Owner"))
	require.True(t, ok)
	require.Equal(t, "player", owner)

	flag, ok := TryGetValue[bool](bb, bb.GetOrRegisterKey("Flag"))
	require.True(t, ok)
	require.True(t, flag)
}

func TestSeed_Errors(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name  string
		entry Entry
	}{
		{"empty name", Entry{Type: TypeBool, Value: true}},
		{"unknown type", Entry{Name: "x", Type: "vector", Value: 1}},
		{"fractional int", Entry{Name: "x", Type: TypeInt, Value: 1.5}},
		{"bad bool", Entry{Name: "x", Type: TypeBool, Value: "maybe"}},
		{"bool from int", Entry{Name: "x", Type: TypeBool, Value: 1}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Error(t, New().Seed([]Entry{tc.entry}))
		})
	}

	_, err := ConvertValue("vector", nil)
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestTypeOf(t *testing.T) {
	t.Parallel()

	for v, want := range map[any]string{true: TypeBool, 3: TypeInt, 1.5: TypeFloat, "x": TypeString} {
		got, ok := TypeOf(v)
		require.True(t, ok, "%T", v)
		require.Equal(t, want, got)
		_, err := ConvertValue(got, v)
		require.NoError(t, err)
	}
	for _, v := range []any{nil, int64(1), []int{1}, struct{}{}} {
		_, ok := TypeOf(v)
		require.False(t, ok, "%T", v)
	}
}
