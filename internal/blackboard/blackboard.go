// Package blackboard implements the shared memory through which decision
// logic communicates: interned keys, a typed value store, and a queue of
// actions passed by experts during an arbitration cycle.
//
// A Blackboard is owned by exactly one agent (or explicitly shared by the
// composition root). It performs no locking: the tick-driven model guarantees
// a single writer per tick, and every mutation is immediately visible to any
// subsequent reader.
package blackboard

import (
	"fmt"
	"sort"
)

// Key is an opaque handle for a blackboard entry. Keys are obtained from
// Blackboard.GetOrRegisterKey, and compare equal by hash value.
type Key struct {
	hash uint32
}

// Hash returns the stable hash backing the key.
func (k Key) Hash() uint32 {
	return k.hash
}

// String implements fmt.Stringer.
func (k Key) String() string {
	return fmt.Sprintf("Key(%08x)", k.hash)
}

// Action is a side-effecting callback passed to the blackboard by an expert,
// drained by the arbiter at the end of each cycle.
type Action func()

// Blackboard is a typed key/value store with interned keys.
//
// Usage: Create with New or new(Blackboard). The internal maps are lazily
// initialized on the first write operation.
type Blackboard struct {
	keys    map[string]Key
	names   map[Key]string
	data    map[Key]any
	actions []Action
}

// New returns an empty Blackboard.
func New() *Blackboard {
	b := new(Blackboard)
	b.init()
	return b
}

func (b *Blackboard) init() {
	if b.keys == nil {
		b.keys = make(map[string]Key)
		b.names = make(map[Key]string)
	}
	if b.data == nil {
		b.data = make(map[Key]any)
	}
}

// GetOrRegisterKey returns the key for name, registering it on first use.
// Calling it twice with the same name returns equal keys. Distinct names
// never share a key: a hash collision probes forward to the next free slot.
func (b *Blackboard) GetOrRegisterKey(name string) Key {
	if k, ok := b.keys[name]; ok {
		return k
	}
	b.init()
	k := Key{hash: fnv1a(name)}
	for {
		if _, taken := b.names[k]; !taken {
			break
		}
		k.hash++
	}
	b.keys[name] = k
	b.names[k] = name
	return k
}

// Lookup returns the key registered for name, without registering it.
func (b *Blackboard) Lookup(name string) (Key, bool) {
	k, ok := b.keys[name]
	return k, ok
}

// Name returns the name a key was registered with.
func (b *Blackboard) Name(key Key) (string, bool) {
	name, ok := b.names[key]
	return name, ok
}

// SetValue stores value under key, replacing any previous value (of any type).
func (b *Blackboard) SetValue(key Key, value any) {
	b.init()
	b.data[key] = value
}

// Value returns the untyped value stored under key.
func (b *Blackboard) Value(key Key) (any, bool) {
	if b.data == nil {
		return nil, false
	}
	v, ok := b.data[key]
	return v, ok
}

// TryGetValue returns the value stored under key as a T. It reports false,
// with the zero T, when the key has no value or holds a value of another
// type. Values are never coerced.
func TryGetValue[T any](b *Blackboard, key Key) (T, bool) {
	var zero T
	v, ok := b.Value(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// Has reports whether key currently holds a value.
func (b *Blackboard) Has(key Key) bool {
	_, ok := b.Value(key)
	return ok
}

// Delete removes the value stored under key. The key itself stays
// registered.
func (b *Blackboard) Delete(key Key) {
	if b.data == nil {
		return
	}
	delete(b.data, key)
}

// Len returns the number of keys holding a value.
func (b *Blackboard) Len() int {
	return len(b.data)
}

// Names returns every registered name, sorted.
func (b *Blackboard) Names() []string {
	names := make([]string, 0, len(b.keys))
	for name := range b.keys {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a shallow copy of the stored values, keyed by name.
// It is intended for debugging and printing.
func (b *Blackboard) Snapshot() map[string]any {
	result := make(map[string]any, len(b.data))
	for k, v := range b.data {
		result[b.names[k]] = v
	}
	return result
}

// PassAction appends an action to the passed actions queue.
func (b *Blackboard) PassAction(action Action) {
	if action == nil {
		return
	}
	b.actions = append(b.actions, action)
}

// PassedActions returns a copy of the queued actions, in the order they were
// passed.
func (b *Blackboard) PassedActions() []Action {
	if len(b.actions) == 0 {
		return nil
	}
	actions := make([]Action, len(b.actions))
	copy(actions, b.actions)
	return actions
}

// ClearActions empties the passed actions queue.
func (b *Blackboard) ClearActions() {
	clear(b.actions)
	b.actions = b.actions[:0]
}
