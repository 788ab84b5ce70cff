package tree

// Policy decides whether the root of a BehaviourTree stops on a status.
type Policy interface {
	ShouldReturn(status Status) bool
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(status Status) bool

// ShouldReturn implements Policy.
func (f PolicyFunc) ShouldReturn(status Status) bool { return f(status) }

// Built-in policies. They are comparable, so a tree's policy can be checked
// with ==.
var (
	// RunForever never stops: the root keeps cycling its branches.
	RunForever Policy = runForever{}
	// RunUntilSuccess stops on, and returns, the first Success.
	RunUntilSuccess Policy = runUntilSuccess{}
	// RunUntilFailure stops on, and returns, the first Failure.
	RunUntilFailure Policy = runUntilFailure{}
)

type runForever struct{}

func (runForever) ShouldReturn(Status) bool { return false }

type runUntilSuccess struct{}

func (runUntilSuccess) ShouldReturn(s Status) bool { return s == Success }

type runUntilFailure struct{}

func (runUntilFailure) ShouldReturn(s Status) bool { return s == Failure }

// BehaviourTree is the root of a tree. Each Process call evaluates one
// top-level branch; unless the policy returns the status, the root moves on
// to the next branch (wrapping around) and reports Running.
type BehaviourTree struct {
	composite
	policy Policy
}

// NewBehaviourTree returns a root with the given policy, RunForever if nil.
func NewBehaviourTree(name string, policy Policy, children ...Node) *BehaviourTree {
	if policy == nil {
		policy = RunForever
	}
	t := &BehaviourTree{composite: composite{newBase(name, 0)}, policy: policy}
	t.AddChild(children...)
	return t
}

// Policy returns the continuation policy.
func (t *BehaviourTree) Policy() Policy { return t.policy }

// Process implements Node. A tree without branches fails.
func (t *BehaviourTree) Process() Status {
	t.seal()
	if len(t.children) == 0 {
		return Failure
	}
	status := process(t.children[t.currentChild])
	if t.policy.ShouldReturn(status) {
		return status
	}
	t.currentChild = (t.currentChild + 1) % len(t.children)
	return Running
}
