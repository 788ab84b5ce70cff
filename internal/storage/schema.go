// Package storage writes simulation reports as versioned JSON files.
package storage

import (
	"time"

	"github.com/joeycumines/decisioncore/internal/blackboard"
)

// CurrentSchemaVersion is written into every report. Read rejects other
// versions.
const CurrentSchemaVersion = "1"

// Report describes one finished simulation run.
type Report struct {
	Version   string        `json:"version"`
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	Seed      uint64        `json:"seed"`
	Interval  time.Duration `json:"interval_ns"`
	Agents    []AgentReport `json:"agents"`
}

// AgentReport is the final state of one agent.
type AgentReport struct {
	Name   string `json:"name"`
	ID     string `json:"id"`
	Ticks  int    `json:"ticks"`
	Status string `json:"status"`
	// Winners counts the ticks each expert won.
	Winners    map[string]int     `json:"winners,omitempty"`
	Blackboard []blackboard.Entry `json:"blackboard"`
	// Skipped names the blackboard entries whose values have no entry type.
	Skipped []string `json:"skipped,omitempty"`
}

// Capture records bb into r. Entries are sorted by name; values other than
// bool, int, float64 and string are listed in Skipped instead.
func (r *AgentReport) Capture(bb *blackboard.Blackboard) {
	r.Blackboard, r.Skipped = nil, nil
	for _, name := range bb.Names() {
		key, _ := bb.Lookup(name)
		v, ok := bb.Value(key)
		if !ok {
			continue
		}
		typ, ok := blackboard.TypeOf(v)
		if !ok {
			r.Skipped = append(r.Skipped, name)
			continue
		}
		r.Blackboard = append(r.Blackboard, blackboard.Entry{Name: name, Type: typ, Value: v})
	}
}

// Agent returns the report of the named agent.
func (r *Report) Agent(name string) (*AgentReport, bool) {
	for i := range r.Agents {
		if r.Agents[i].Name == name {
			return &r.Agents[i], true
		}
	}
	return nil, false
}
