// Package arbiter selects, once per tick, the single most insistent expert
// and lets it act on a blackboard.
//
// Experts post their work as blackboard actions rather than acting directly;
// BlackboardIteration returns the actions queued during the cycle so the
// caller can run them outside of arbitration.
package arbiter

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"

	"github.com/joeycumines/decisioncore/internal/blackboard"
)

// Expert competes for control of the blackboard.
type Expert interface {
	// Insistence reports how urgently the expert wants to act. Values of 0
	// or below never win.
	Insistence(bb *blackboard.Blackboard) int
	// Execute lets the winning expert act, usually by passing actions.
	Execute(bb *blackboard.Blackboard) error
}

// Faulter is implemented by experts whose Insistence can fail, such as
// script experts. InsistenceError reports the failure of the most recent
// Insistence call; a failed expert sits the cycle out and its error is
// returned from BlackboardIteration.
type Faulter interface {
	InsistenceError() error
}

// Observer is notified of every selection.
type Observer func(winner Expert, insistence int)

// Arbiter holds experts in registration order.
type Arbiter struct {
	experts  []Expert
	logger   *slog.Logger
	observer Observer
}

// Option configures an Arbiter.
type Option func(*Arbiter)

// WithLogger sets the logger used for selection events.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Arbiter) {
		a.logger = logger
	}
}

// WithObserver sets a hook called after each winner executes.
func WithObserver(observer Observer) Option {
	return func(a *Arbiter) {
		a.observer = observer
	}
}

// New returns an empty arbiter.
func New(opts ...Option) *Arbiter {
	a := &Arbiter{}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// Register appends expert. Registering the same instance twice is a no-op.
// It panics if expert is nil or not comparable.
func (a *Arbiter) Register(expert Expert) {
	if expert == nil {
		panic("arbiter: nil expert")
	}
	if !reflect.TypeOf(expert).Comparable() {
		panic(fmt.Sprintf("arbiter: expert of type %T is not comparable", expert))
	}
	if slices.Contains(a.experts, expert) {
		return
	}
	a.experts = append(a.experts, expert)
}

// Deregister removes expert, if registered.
func (a *Arbiter) Deregister(expert Expert) {
	if expert == nil || !reflect.TypeOf(expert).Comparable() {
		return
	}
	a.experts = slices.DeleteFunc(a.experts, func(e Expert) bool { return e == expert })
}

// Experts returns the registered experts in registration order.
func (a *Arbiter) Experts() []Expert { return slices.Clone(a.experts) }

// Len returns the number of registered experts.
func (a *Arbiter) Len() int { return len(a.experts) }

// BlackboardIteration runs one arbitration cycle over bb.
//
// The expert with the strictly greatest insistence above zero executes once;
// on ties the earliest registered wins. The blackboard's action queue is then
// drained and its previous contents returned, whether or not an expert ran
// or Execute failed.
//
// Errors from failed insistence checks (see Faulter) and from Execute are
// joined; the remaining experts still compete.
func (a *Arbiter) BlackboardIteration(bb *blackboard.Blackboard) ([]blackboard.Action, error) {
	var (
		winner Expert
		best   int
		errs   []error
	)
	for _, expert := range a.experts {
		insistence := expert.Insistence(bb)
		if f, ok := expert.(Faulter); ok {
			if err := f.InsistenceError(); err != nil {
				errs = append(errs, fmt.Errorf("arbiter: expert %s insistence: %w", Describe(expert), err))
				continue
			}
		}
		if insistence > best {
			winner, best = expert, insistence
		}
	}

	if winner != nil {
		a.logger.Debug("arbiter selected expert", "expert", Describe(winner), "insistence", best)
		if err := winner.Execute(bb); err != nil {
			errs = append(errs, fmt.Errorf("arbiter: expert %s: %w", Describe(winner), err))
		}
		if a.observer != nil {
			a.observer(winner, best)
		}
	}

	actions := bb.PassedActions()
	bb.ClearActions()
	return actions, errors.Join(errs...)
}

// Describe names an expert for logs and errors: its Name method if it has
// one, otherwise its type.
func Describe(expert Expert) string {
	if n, ok := expert.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", expert)
}
