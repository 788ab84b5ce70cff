package tree

import (
	"cmp"
	"math/rand/v2"
	"slices"
)

// PrioritySelector scans its children by descending priority within a single
// tick, returning on the first child that is Running or succeeds.
//
// The order is cached on first use and invalidated by Reset; priority changes
// made in between are not observed until then.
type PrioritySelector struct {
	composite
	sorted      []Node
	sortedValid bool
	order       func(children []Node) []Node
}

// NewPrioritySelector returns a priority selector over children.
func NewPrioritySelector(name string, priority int, children ...Node) *PrioritySelector {
	p := &PrioritySelector{composite: composite{newBase(name, priority)}}
	p.order = byPriority
	p.AddChild(children...)
	return p
}

func byPriority(children []Node) []Node {
	sorted := slices.Clone(children)
	slices.SortStableFunc(sorted, func(a, b Node) int {
		return cmp.Compare(b.Priority(), a.Priority())
	})
	return sorted
}

// Order returns the cached evaluation order, computing it if needed.
func (p *PrioritySelector) Order() []Node {
	if !p.sortedValid {
		p.sorted = p.order(p.children)
		p.sortedValid = true
	}
	return slices.Clone(p.sorted)
}

// invalidate drops the cached order.
func (p *PrioritySelector) invalidate() {
	p.sorted = nil
	p.sortedValid = false
}

// Reset implements Node, also invalidating the cached order.
func (p *PrioritySelector) Reset() {
	p.base.Reset()
	p.invalidate()
}

// Process implements Node.
func (p *PrioritySelector) Process() Status {
	p.seal()
	if !p.sortedValid {
		p.sorted = p.order(p.children)
		p.sortedValid = true
	}
	for _, child := range p.sorted {
		switch process(child) {
		case Running:
			return Running
		case Success:
			p.Reset()
			return Success
		}
	}
	p.Reset()
	return Failure
}

// RandomSelector behaves as a PrioritySelector whose cached order is a random
// permutation of its children, re-drawn each time the cache is invalidated.
type RandomSelector struct {
	PrioritySelector
	rng *rand.Rand
}

// NewRandomSelector returns a random selector over children. It draws from
// the global source until SetRand is called.
func NewRandomSelector(name string, priority int, children ...Node) *RandomSelector {
	r := &RandomSelector{PrioritySelector: PrioritySelector{composite: composite{newBase(name, priority)}}}
	r.order = r.shuffle
	r.AddChild(children...)
	return r
}

// SetRand sets the random source, typically a seeded one for reproducible
// runs.
func (r *RandomSelector) SetRand(rng *rand.Rand) {
	r.rng = rng
}

func (r *RandomSelector) shuffle(children []Node) []Node {
	shuffled := slices.Clone(children)
	swap := func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] }
	if r.rng != nil {
		r.rng.Shuffle(len(shuffled), swap)
	} else {
		rand.Shuffle(len(shuffled), swap)
	}
	return shuffled
}
