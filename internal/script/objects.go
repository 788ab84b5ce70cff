package script

import (
	"fmt"
	"log/slog"

	"github.com/dop251/goja"

	"github.com/joeycumines/decisioncore/internal/blackboard"
	"github.com/joeycumines/decisioncore/internal/tree"
)

// Strategy runs a script object's process method as a tree.Strategy. The
// object may also define reset. Script errors and bad return values become
// Failure and are kept for Err.
type Strategy struct {
	name    string
	this    goja.Value
	process goja.Callable
	reset   goja.Callable
	err     error
}

var (
	_ tree.Strategy = (*Strategy)(nil)
	_ tree.Resetter = (*Strategy)(nil)
)

// Strategy binds the global object name.
func (h *Host) Strategy(name string) (*Strategy, error) {
	obj, err := h.object(name)
	if err != nil {
		return nil, err
	}
	process, err := h.method(name, obj, "process", false)
	if err != nil {
		return nil, err
	}
	reset, err := h.method(name, obj, "reset", true)
	if err != nil {
		return nil, err
	}
	return &Strategy{name: name, this: obj, process: process, reset: reset}, nil
}

// Name returns the script object's name.
func (s *Strategy) Name() string { return s.name }

// Process implements tree.Strategy.
func (s *Strategy) Process() tree.Status {
	v, err := s.process(s.this)
	if err != nil {
		s.err = fmt.Errorf("script: %s.process: %w", s.name, err)
		return tree.Failure
	}
	status, err := parseStatus(v)
	if err != nil {
		s.err = fmt.Errorf("script: %s.process: %w", s.name, err)
		return tree.Failure
	}
	return status
}

// Reset implements tree.Resetter.
func (s *Strategy) Reset() {
	s.err = nil
	if s.reset == nil {
		return
	}
	if _, err := s.reset(s.this); err != nil {
		s.err = fmt.Errorf("script: %s.reset: %w", s.name, err)
	}
}

// Err returns the last script error, if any.
func (s *Strategy) Err() error { return s.err }

// Expert adapts a script object with insistence and execute methods to
// arbiter.Expert. Both receive no arguments; scripts reach the blackboard
// through the blackboard global.
type Expert struct {
	name       string
	this       goja.Value
	insistence goja.Callable
	execute    goja.Callable
	logger     *slog.Logger

	insistenceErr error
	lastErr       error
}

// Expert binds the global object name.
func (h *Host) Expert(name string) (*Expert, error) {
	obj, err := h.object(name)
	if err != nil {
		return nil, err
	}
	insistence, err := h.method(name, obj, "insistence", false)
	if err != nil {
		return nil, err
	}
	execute, err := h.method(name, obj, "execute", false)
	if err != nil {
		return nil, err
	}
	return &Expert{name: name, this: obj, insistence: insistence, execute: execute, logger: h.logger}, nil
}

// Name returns the script object's name.
func (e *Expert) Name() string { return e.name }

// Insistence implements arbiter.Expert. A script error yields 0 and is kept
// for InsistenceError, so the arbiter reports it.
func (e *Expert) Insistence(*blackboard.Blackboard) int {
	v, err := e.insistence(e.this)
	if err != nil {
		e.insistenceErr = fmt.Errorf("script: %s.insistence: %w", e.name, err)
		e.lastErr = e.insistenceErr
		e.logger.Error("script: insistence failed", "expert", e.name, "error", err)
		return 0
	}
	e.insistenceErr = nil
	return int(v.ToInteger())
}

// InsistenceError implements arbiter.Faulter.
func (e *Expert) InsistenceError() error { return e.insistenceErr }

// Execute implements arbiter.Expert.
func (e *Expert) Execute(*blackboard.Blackboard) error {
	if _, err := e.execute(e.this); err != nil {
		e.lastErr = fmt.Errorf("script: %s.execute: %w", e.name, err)
		return e.lastErr
	}
	return nil
}

// LastError returns the most recent insistence or execute error, if any.
func (e *Expert) LastError() error { return e.lastErr }

// Predicate evaluates a global script function for its truthiness.
type Predicate struct {
	name    string
	fn      goja.Callable
	logger  *slog.Logger
	lastErr error
}

// Predicate binds the global function name.
func (h *Host) Predicate(name string) (*Predicate, error) {
	fn, err := h.Function(name)
	if err != nil {
		return nil, err
	}
	return &Predicate{name: name, fn: fn, logger: h.logger}, nil
}

// Evaluate implements predicate.Predicate. A script error yields false.
func (p *Predicate) Evaluate() bool {
	v, err := p.fn(goja.Undefined())
	p.lastErr = err
	if err != nil {
		p.logger.Error("script: predicate failed", "predicate", p.name, "error", err)
		return false
	}
	return v.ToBoolean()
}

// LastError returns the error from the most recent evaluation, if any.
func (p *Predicate) LastError() error { return p.lastErr }
