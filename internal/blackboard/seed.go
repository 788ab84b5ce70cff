package blackboard

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrUnsupportedType is returned by Seed for an entry whose type is unknown.
var ErrUnsupportedType = errors.New("unsupported blackboard entry type")

// Entry types accepted by Seed.
const (
	TypeBool   = "bool"
	TypeInt    = "int"
	TypeFloat  = "float"
	TypeString = "string"
)

// Entry is an initial blackboard value, typically loaded from configuration
// or a run report.
type Entry struct {
	Name  string `koanf:"name" yaml:"name" json:"name"`
	Type  string `koanf:"type" yaml:"type" json:"type"`
	Value any    `koanf:"value" yaml:"value" json:"value"`
}

// TypeOf returns the entry type of v, if it has one.
func TypeOf(v any) (string, bool) {
	switch v.(type) {
	case bool:
		return TypeBool, true
	case int:
		return TypeInt, true
	case float64:
		return TypeFloat, true
	case string:
		return TypeString, true
	default:
		return "", false
	}
}

// Seed registers and stores each entry, converting its value to the declared
// type. Entries are applied in order; the first invalid entry aborts seeding
// and is reported, entries before it remain applied.
func (b *Blackboard) Seed(entries []Entry) error {
	for i, e := range entries {
		if e.Name == "" {
			return fmt.Errorf("blackboard entry %d: empty name", i)
		}
		v, err := ConvertValue(e.Type, e.Value)
		if err != nil {
			return fmt.Errorf("blackboard entry %q: %w", e.Name, err)
		}
		b.SetValue(b.GetOrRegisterKey(e.Name), v)
	}
	return nil
}

// ConvertValue converts a loosely typed value (as decoded from YAML, JSON or
// environment variables) to the Go type backing typ.
func ConvertValue(typ string, value any) (any, error) {
	switch typ {
	case TypeBool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			return strconv.ParseBool(v)
		}
	case TypeInt:
		switch v := value.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			if v != float64(int(v)) {
				return nil, fmt.Errorf("value %v is not an integer", v)
			}
			return int(v), nil
		case string:
			return strconv.Atoi(v)
		}
	case TypeFloat:
		switch v := value.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case string:
			return strconv.ParseFloat(v, 64)
		}
	case TypeString:
		if v, ok := value.(string); ok {
			return v, nil
		}
		return fmt.Sprint(value), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, typ)
	}
	return nil, fmt.Errorf("cannot convert %T to %s", value, typ)
}
