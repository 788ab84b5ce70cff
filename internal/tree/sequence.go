package tree

// Sequence processes its children in order, one step per tick, failing as
// soon as a child fails.
type Sequence struct {
	composite
}

// NewSequence returns a sequence over children.
func NewSequence(name string, priority int, children ...Node) *Sequence {
	s := &Sequence{composite{newBase(name, priority)}}
	s.AddChild(children...)
	return s
}

// Process implements Node.
//
// A Running child leaves the cursor in place. A failing child rewinds the
// cursor to the first child without resetting the others. When the last
// child succeeds the sequence resets and succeeds on the same call.
func (s *Sequence) Process() Status {
	s.seal()
	if s.currentChild >= len(s.children) {
		s.Reset()
		return Success
	}
	switch process(s.children[s.currentChild]) {
	case Running:
		return Running
	case Failure:
		s.currentChild = 0
		return Failure
	default:
		s.currentChild++
		if s.currentChild == len(s.children) {
			s.Reset()
			return Success
		}
		return Running
	}
}

// Selector processes its children in order until one succeeds. A failing
// child moves the cursor to the next sibling and reports Running: each
// failing child costs one tick.
type Selector struct {
	composite
}

// NewSelector returns a selector over children.
func NewSelector(name string, priority int, children ...Node) *Selector {
	s := &Selector{composite{newBase(name, priority)}}
	s.AddChild(children...)
	return s
}

// Process implements Node.
func (s *Selector) Process() Status {
	s.seal()
	if s.currentChild < len(s.children) {
		switch process(s.children[s.currentChild]) {
		case Running:
			return Running
		case Success:
			s.Reset()
			return Success
		default:
			s.currentChild++
			return Running
		}
	}
	s.Reset()
	return Failure
}
