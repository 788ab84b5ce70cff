package planning

import (
	"fmt"
	"log/slog"
	"os"

	pabt "github.com/joeycumines/go-pabt"

	"github.com/joeycumines/decisioncore/internal/blackboard"
)

var _ pabt.IState = (*State)(nil)

// debugPlanning enables verbose planning logs.
var debugPlanning = os.Getenv("DECISIONCORE_DEBUG_PLANNING") == "1"

// ActionGeneratorFunc produces actions on demand for a failed condition, for
// actions whose parameters depend on the world, like moving to a specific
// object.
type ActionGeneratorFunc func(failed pabt.Condition) ([]pabt.IAction, error)

// State implements pabt.IState over a blackboard.
type State struct {
	bb        *blackboard.Blackboard
	actions   *ActionRegistry
	generator ActionGeneratorFunc
}

// NewState returns a state reading bb, with no actions.
func NewState(bb *blackboard.Blackboard) *State {
	return &State{
		bb:      bb,
		actions: NewActionRegistry(),
	}
}

// Blackboard returns the backing blackboard.
func (s *State) Blackboard() *blackboard.Blackboard { return s.bb }

// Registry returns the static action registry.
func (s *State) Registry() *ActionRegistry { return s.actions }

// RegisterAction adds action to the registry under its name.
func (s *State) RegisterAction(action *Action) {
	s.actions.Register(action.Name, action)
}

// SetActionGenerator sets, or clears with nil, the dynamic action source.
func (s *State) SetActionGenerator(gen ActionGeneratorFunc) {
	s.generator = gen
}

// Variable implements pabt.IState. Keys are entry names, blackboard keys, or
// values with a String method; integers are formatted in decimal. A missing
// entry reads as nil.
func (s *State) Variable(key any) (any, error) {
	name, err := keyName(s.bb, key)
	if err != nil {
		return nil, err
	}
	k, ok := s.bb.Lookup(name)
	if !ok {
		if debugPlanning {
			slog.Debug("planning: variable", "key", name, "value", nil)
		}
		return nil, nil
	}
	value, _ := s.bb.Value(k)
	if debugPlanning {
		slog.Debug("planning: variable", "key", name, "value", value, "type", fmt.Sprintf("%T", value))
	}
	return value, nil
}

func keyName(bb *blackboard.Blackboard, key any) (string, error) {
	switch k := key.(type) {
	case nil:
		return "", fmt.Errorf("planning: nil variable key")
	case string:
		return k, nil
	case blackboard.Key:
		name, ok := bb.Name(k)
		if !ok {
			return "", fmt.Errorf("planning: unregistered key %v", k)
		}
		return name, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", k), nil
	case fmt.Stringer:
		return k.String(), nil
	default:
		return "", fmt.Errorf("planning: unsupported key type %T", key)
	}
}

// Actions implements pabt.IState, returning the actions with an effect that
// satisfies failed. When the generator produces any actions for failed, the
// static registry is not consulted. A nil failed condition returns every
// registered action.
func (s *State) Actions(failed pabt.Condition) ([]pabt.IAction, error) {
	registered := s.actions.All()
	if failed == nil {
		return registered, nil
	}

	var relevant []pabt.IAction
	handled := false
	if s.generator != nil {
		generated, err := s.generator(failed)
		if err != nil {
			slog.Warn("planning: action generator failed", "key", failed.Key(), "error", err)
		} else {
			for _, action := range generated {
				if satisfies(action, failed) {
					relevant = append(relevant, action)
				}
			}
			handled = len(generated) > 0
		}
	}
	if !handled {
		for _, action := range registered {
			if satisfies(action, failed) {
				relevant = append(relevant, action)
			}
		}
	}

	if debugPlanning {
		names := make([]string, 0, len(relevant))
		for _, a := range relevant {
			names = append(names, actionName(a))
		}
		slog.Debug("planning: actions", "key", failed.Key(), "relevant", names)
	}
	return relevant, nil
}

// satisfies reports whether one of action's effects sets the failed
// condition's key to a value it accepts.
func satisfies(action pabt.IAction, failed pabt.Condition) bool {
	for _, effect := range action.Effects() {
		if effect == nil {
			continue
		}
		if effect.Key() == failed.Key() && failed.Match(effect.Value()) {
			return true
		}
	}
	return false
}

func actionName(a pabt.IAction) string {
	if named, ok := a.(*Action); ok {
		return named.Name
	}
	return fmt.Sprintf("%T", a)
}
