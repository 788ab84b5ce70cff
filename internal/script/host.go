// Package script hosts decision logic written in JavaScript.
//
// A Host owns one goja runtime bound to one blackboard. Scripts see:
//
//	status.running, status.success, status.failure
//	blackboard.get(name), blackboard.set(name, value), blackboard.has(name),
//	blackboard.delete(name), blackboard.pass(fn)
//	log.debug(msg, ...kv), log.info, log.warn, log.error
//
// and define global objects or functions that become strategies, experts and
// predicates:
//
//	var Bark = {
//		process: function () { blackboard.set("Barked", true); return status.success; },
//	};
//	var Hungry = {
//		insistence: function () { return blackboard.get("Hunger") > 50 ? 60 : 0; },
//		execute: function () { blackboard.pass(function () { blackboard.set("Eating", true); }); },
//	};
//	function IsThirsty() { return blackboard.get("Thirst") > 70; }
//
// A Host is not safe for concurrent use; like the rest of an agent it is
// driven from a single goroutine.
package script

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dop251/goja"

	"github.com/joeycumines/decisioncore/internal/blackboard"
	"github.com/joeycumines/decisioncore/internal/tree"
)

// ErrScriptFunction is returned when a script does not define a required
// object or function.
var ErrScriptFunction = errors.New("script: function not defined")

// Host is a JavaScript runtime bound to a blackboard.
type Host struct {
	vm     *goja.Runtime
	bb     *blackboard.Blackboard
	logger *slog.Logger
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the logger behind the log global.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Host) {
		h.logger = logger
	}
}

// NewHost returns a runtime with the script globals installed.
func NewHost(bb *blackboard.Blackboard, opts ...Option) *Host {
	h := &Host{vm: goja.New(), bb: bb}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	h.install()
	return h
}

// Runtime returns the underlying runtime.
func (h *Host) Runtime() *goja.Runtime { return h.vm }

// Blackboard returns the blackboard scripts read and write.
func (h *Host) Blackboard() *blackboard.Blackboard { return h.bb }

func (h *Host) install() {
	status := h.vm.NewObject()
	_ = status.Set("running", tree.Running.String())
	_ = status.Set("success", tree.Success.String())
	_ = status.Set("failure", tree.Failure.String())
	_ = h.vm.Set("status", status)

	bb := h.vm.NewObject()
	_ = bb.Set("get", func(name string) any {
		key, ok := h.bb.Lookup(name)
		if !ok {
			return nil
		}
		v, _ := h.bb.Value(key)
		return v
	})
	_ = bb.Set("set", func(name string, value goja.Value) {
		h.bb.SetValue(h.bb.GetOrRegisterKey(name), exportValue(value))
	})
	_ = bb.Set("has", func(name string) bool {
		key, ok := h.bb.Lookup(name)
		return ok && h.bb.Has(key)
	})
	_ = bb.Set("delete", func(name string) {
		if key, ok := h.bb.Lookup(name); ok {
			h.bb.Delete(key)
		}
	})
	_ = bb.Set("pass", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			panic(h.vm.NewTypeError("blackboard.pass requires a function"))
		}
		h.bb.PassAction(func() {
			if _, err := fn(goja.Undefined()); err != nil {
				h.logger.Error("script: passed action failed", "error", err)
			}
		})
		return goja.Undefined()
	})
	_ = h.vm.Set("blackboard", bb)

	log := h.vm.NewObject()
	for name, fn := range map[string]func(string, ...any){
		"debug": h.logger.Debug,
		"info":  h.logger.Info,
		"warn":  h.logger.Warn,
		"error": h.logger.Error,
	} {
		_ = log.Set(name, func(call goja.FunctionCall) goja.Value {
			args := make([]any, 0, len(call.Arguments))
			for _, a := range call.Arguments[min(1, len(call.Arguments)):] {
				args = append(args, a.Export())
			}
			fn(call.Argument(0).String(), args...)
			return goja.Undefined()
		})
	}
	_ = h.vm.Set("log", log)
}

// exportValue converts a script value for the blackboard. Whole numbers are
// stored as int, other numbers as float64.
func exportValue(v goja.Value) any {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	switch x := v.Export().(type) {
	case int64:
		return int(x)
	default:
		return x
	}
}

// Load compiles and runs a script.
func (h *Host) Load(name, code string) error {
	prg, err := goja.Compile(name, code, true)
	if err != nil {
		return fmt.Errorf("script: compile %s: %w", name, err)
	}
	if _, err := h.vm.RunProgram(prg); err != nil {
		return fmt.Errorf("script: run %s: %w", name, err)
	}
	return nil
}

// Function returns the global function name.
func (h *Host) Function(name string) (goja.Callable, error) {
	fn, ok := goja.AssertFunction(h.vm.Get(name))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrScriptFunction, name)
	}
	return fn, nil
}

// object returns the global object name.
func (h *Host) object(name string) (*goja.Object, error) {
	v := h.vm.Get(name)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, fmt.Errorf("%w: %s", ErrScriptFunction, name)
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, fmt.Errorf("script: %s is not an object", name)
	}
	return obj, nil
}

// method returns obj[name] as a function, or nil if absent and optional.
func (h *Host) method(objName string, obj *goja.Object, name string, optional bool) (goja.Callable, error) {
	v := obj.Get(name)
	if v == nil || goja.IsUndefined(v) {
		if optional {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s.%s", ErrScriptFunction, objName, name)
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return nil, fmt.Errorf("script: %s.%s is not a function", objName, name)
	}
	return fn, nil
}

// parseStatus reads a status string returned by a script. Booleans map to
// Success and Failure.
func parseStatus(v goja.Value) (tree.Status, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return 0, errors.New("script: no status returned")
	}
	if b, ok := v.Export().(bool); ok {
		if b {
			return tree.Success, nil
		}
		return tree.Failure, nil
	}
	return tree.ParseStatus(v.String())
}
