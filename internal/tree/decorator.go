package tree

// Inverter swaps Success and Failure of its child. Running passes through.
type Inverter struct {
	base
}

// NewInverter returns an inverter over child.
func NewInverter(name string, child Node) *Inverter {
	i := &Inverter{newBase(name, 0)}
	i.attach(child)
	return i
}

// Process implements Node.
func (i *Inverter) Process() Status {
	i.seal()
	switch process(i.children[0]) {
	case Running:
		return Running
	case Failure:
		return Success
	default:
		return Failure
	}
}

// UntilFail repeats its child until it fails.
type UntilFail struct {
	base
}

// NewUntilFail returns an until-fail decorator over child.
func NewUntilFail(name string, child Node) *UntilFail {
	u := &UntilFail{newBase(name, 0)}
	u.attach(child)
	return u
}

// Process implements Node. Any result other than Failure reports Running; a
// Failure resets the child and is reported once.
func (u *UntilFail) Process() Status {
	u.seal()
	if process(u.children[0]) == Failure {
		u.Reset()
		return Failure
	}
	return Running
}
