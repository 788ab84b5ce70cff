package predicate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeycumines/decisioncore/internal/blackboard"
)

func TestCombinators(t *testing.T) {
	t.Parallel()

	calls := 0
	counting := Func(func() bool {
		calls++
		return true
	})

	require.True(t, True.Evaluate())
	require.False(t, False.Evaluate())
	require.True(t, Not(False).Evaluate())
	require.False(t, Func(nil).Evaluate())

	require.True(t, All().Evaluate())
	require.False(t, Any().Evaluate())

	require.False(t, All(False, counting).Evaluate())
	require.Equal(t, 0, calls, "All short-circuits")
	require.True(t, Any(True, counting).Evaluate())
	require.Equal(t, 0, calls, "Any short-circuits")

	require.True(t, All(True, counting).Evaluate())
	require.Equal(t, 1, calls)
}

func TestBool(t *testing.T) {
	t.Parallel()

	bb := blackboard.New()
	p := NewBool(bb, "CalledDog")
	require.False(t, p.Evaluate())

	p.Default = true
	require.True(t, p.Evaluate(), "unset uses default")

	bb.SetValue(p.Key(), "yes")
	require.True(t, p.Evaluate(), "mistyped uses default")

	bb.SetValue(p.Key(), false)
	require.False(t, p.Evaluate())
}

func TestCompare(t *testing.T) {
	t.Parallel()

	bb := blackboard.New()
	hunger := FromKey(bb, "Hunger")

	for _, tc := range []struct {
		name  string
		value any
		op    Op
		right any
		want  bool
	}{
		{"int gt float", 60, Greater, 50.0, true},
		{"int ge int", 50, GreaterOrEqual, 50, true},
		{"float lt", 10.5, Less, 11, true},
		{"le false", 12, LessOrEqual, 11, false},
		{"numeric equal across types", int64(7), Equal, 7, true},
		{"not equal", 7, NotEqual, 8, true},
		{"string equal", "a", Equal, "a", true},
		{"string order", "a", Less, "b", true},
		{"mixed order", "a", Less, 1, false},
		{"bool equal", true, Equal, true, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			bb := blackboard.New()
			src := FromKey(bb, "v")
			bb.SetValue(bb.GetOrRegisterKey("v"), tc.value)
			require.Equal(t, tc.want, NewCompare(src, tc.op, Const{tc.right}).Evaluate())
		})
	}

	require.False(t, NewCompare(hunger, Equal, Const{nil}).Evaluate(), "missing left side")
	require.Equal(t, ">=", GreaterOrEqual.String())
}

func TestExpr(t *testing.T) {
	t.Parallel()

	bb := blackboard.New()
	p, err := NewExpr(bb, `Hunger > 50 && !CalledDog`, "Hunger", "CalledDog")
	require.NoError(t, err)
	require.Equal(t, `Hunger > 50 && !CalledDog`, p.Source())

	bb.SetValue(bb.GetOrRegisterKey("Hunger"), 80)
	bb.SetValue(bb.GetOrRegisterKey("CalledDog"), false)
	require.True(t, p.Evaluate())
	require.NoError(t, p.LastError())

	bb.SetValue(bb.GetOrRegisterKey("CalledDog"), true)
	require.False(t, p.Evaluate())

	require.Equal(t, map[string]any{"Hunger": 80, "CalledDog": true}, p.Env())
}

func TestExpr_UnsetVariable(t *testing.T) {
	t.Parallel()

	bb := blackboard.New()
	p, err := NewExpr(bb, `Ball == nil`, "Ball")
	require.NoError(t, err)
	require.True(t, p.Evaluate())

	bb.SetValue(bb.GetOrRegisterKey("Ball"), "red")
	require.False(t, p.Evaluate())
}

func TestExpr_CompileErrors(t *testing.T) {
	t.Parallel()

	bb := blackboard.New()
	_, err := NewExpr(bb, "")
	require.Error(t, err)

	_, err = NewExpr(bb, `1 +`)
	require.Error(t, err)

	_, err = NewExpr(bb, `1 + 2`)
	require.Error(t, err, "non-boolean expressions are rejected at compile time")
}

func TestProgramCache(t *testing.T) {
	t.Parallel()

	c := NewProgramCache(2)
	a, err := Compile(`true`)
	require.NoError(t, err)
	b, err := Compile(`false`)
	require.NoError(t, err)

	c.Put("a", a)
	c.Put("b", b)
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Put("c", a)
	_, ok = c.Get("b")
	require.False(t, ok, "least recently used entry evicted")
	_, ok = c.Get("a")
	require.True(t, ok)

	c.Resize(1)
	require.Equal(t, 1, c.Len())

	size, hits, misses := c.Stats()
	require.Equal(t, 1, size)
	require.Equal(t, int64(2), hits)
	require.Equal(t, int64(1), misses)
}
