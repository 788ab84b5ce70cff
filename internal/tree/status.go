package tree

import "fmt"

// Status is the per-tick outcome of a node.
type Status int

const (
	_ Status = iota
	// Running indicates the node must be processed again next tick.
	Running
	// Success indicates the node completed successfully.
	Success
	// Failure indicates the node completed unsuccessfully.
	Failure
)

// Valid reports whether s is one of Running, Success or Failure.
func (s Status) Valid() bool {
	return s >= Running && s <= Failure
}

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return fmt.Sprintf("unknown status (%d)", int(s))
	}
}

// ParseStatus parses the lower-case status names produced by String.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "running":
		return Running, nil
	case "success":
		return Success, nil
	case "failure":
		return Failure, nil
	default:
		return 0, fmt.Errorf("tree: invalid status %q", s)
	}
}
