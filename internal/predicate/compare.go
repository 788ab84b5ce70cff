package predicate

import (
	"fmt"
	"reflect"

	"github.com/joeycumines/decisioncore/internal/blackboard"
)

// Source provides a value to a comparator.
type Source interface {
	Value() (any, bool)
}

// KeySource reads a blackboard entry.
type KeySource struct {
	bb  *blackboard.Blackboard
	key blackboard.Key
}

// FromKey returns a Source reading the entry registered under name.
func FromKey(bb *blackboard.Blackboard, name string) KeySource {
	return KeySource{bb: bb, key: bb.GetOrRegisterKey(name)}
}

// Value implements Source.
func (s KeySource) Value() (any, bool) {
	return s.bb.Value(s.key)
}

// Const is a Source that always yields the wrapped value.
type Const struct{ V any }

// Value implements Source.
func (c Const) Value() (any, bool) {
	return c.V, true
}

// SourceFunc adapts a function to Source.
type SourceFunc func() (any, bool)

// Value implements Source.
func (f SourceFunc) Value() (any, bool) {
	return f()
}

// Op is a comparison operator.
type Op int

const (
	Equal Op = iota
	NotEqual
	Less
	LessOrEqual
	Greater
	GreaterOrEqual
)

func (o Op) String() string {
	switch o {
	case Equal:
		return "=="
	case NotEqual:
		return "!="
	case Less:
		return "<"
	case LessOrEqual:
		return "<="
	case Greater:
		return ">"
	case GreaterOrEqual:
		return ">="
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Compare compares two sources. Numeric values of any Go numeric type are
// compared as float64. Ordering operators on non-numeric values, or a
// missing value on either side, evaluate to false.
type Compare struct {
	Left, Right Source
	Op          Op
}

// NewCompare returns a comparator predicate.
func NewCompare(left Source, op Op, right Source) *Compare {
	return &Compare{Left: left, Right: right, Op: op}
}

// Evaluate implements Predicate.
func (c *Compare) Evaluate() bool {
	l, ok := c.Left.Value()
	if !ok {
		return false
	}
	r, ok := c.Right.Value()
	if !ok {
		return false
	}

	lf, lnum := toFloat(l)
	rf, rnum := toFloat(r)
	if lnum && rnum {
		switch c.Op {
		case Equal:
			return lf == rf
		case NotEqual:
			return lf != rf
		case Less:
			return lf < rf
		case LessOrEqual:
			return lf <= rf
		case Greater:
			return lf > rf
		case GreaterOrEqual:
			return lf >= rf
		}
		return false
	}

	switch c.Op {
	case Equal:
		return reflect.DeepEqual(l, r)
	case NotEqual:
		return !reflect.DeepEqual(l, r)
	}
	if ls, ok := l.(string); ok {
		if rs, ok := r.(string); ok {
			switch c.Op {
			case Less:
				return ls < rs
			case LessOrEqual:
				return ls <= rs
			case Greater:
				return ls > rs
			case GreaterOrEqual:
				return ls >= rs
			}
		}
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
