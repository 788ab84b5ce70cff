package command

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"charm.land/lipgloss/v2"
	"golang.org/x/term"

	"github.com/joeycumines/decisioncore/internal/agent"
	"github.com/joeycumines/decisioncore/internal/blackboard"
	"github.com/joeycumines/decisioncore/internal/example/fetch"
	"github.com/joeycumines/decisioncore/internal/tree"
)

// printer writes traces and summaries, coloured when out is a terminal and
// NO_COLOR is unset. Agents tick on their own goroutines, so output is
// serialised.
type printer struct {
	mu    sync.Mutex
	out   io.Writer
	color bool

	name   lipgloss.Style
	dim    lipgloss.Style
	winner lipgloss.Style
	errs   lipgloss.Style
	status map[tree.Status]lipgloss.Style
}

func newPrinter(out io.Writer) *printer {
	p := &printer{
		out:    out,
		color:  isTerminal(out) && os.Getenv("NO_COLOR") == "",
		name:   lipgloss.NewStyle().Bold(true),
		dim:    lipgloss.NewStyle().Faint(true),
		winner: lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		errs:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		status: map[tree.Status]lipgloss.Style{
			tree.Running: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
			tree.Success: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
			tree.Failure: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		},
	}
	return p
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

func (p *printer) render(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

// trace prints one tick:
//
//	dog-1 #12 running Throw(30) actions=1 48µs
func (p *printer) trace(tr agent.Trace) {
	line := fmt.Sprintf("%s #%d %s",
		p.render(p.name, tr.Agent),
		tr.Tick,
		p.render(p.status[tr.Status], tr.Status.String()))
	if tr.Winner != "" {
		line += " " + p.render(p.winner, fmt.Sprintf("%s(%d)", tr.Winner, tr.Insistence))
	}
	if tr.Actions > 0 {
		line += fmt.Sprintf(" actions=%d", tr.Actions)
	}
	line += " " + p.render(p.dim, tr.Duration.Round(time.Microsecond).String())
	if tr.Err != nil {
		line += " " + p.render(p.errs, tr.Err.Error())
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, line)
}

// summary prints the final state of every dog.
func (p *printer) summary(dogs []*dog, elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, d := range dogs {
		w, bb := d.dog.World(), d.dog.Blackboard()
		fetches, _ := blackboard.TryGetValue[int](bb, bb.GetOrRegisterKey(fetch.KeyFetches))
		fmt.Fprintf(p.out, "%s ticks=%d status=%s gait=%s fetches=%d pos=(%.1f, %.1f) id=%s\n",
			p.render(p.name, d.agent.Name()),
			d.agent.Ticks(),
			p.render(p.status[d.agent.LastStatus()], d.agent.LastStatus().String()),
			d.dog.Gait(),
			fetches,
			w.Dog.Pos.X, w.Dog.Pos.Y,
			p.render(p.dim, d.agent.ID().String()))
	}
	fmt.Fprintln(p.out, p.render(p.dim, fmt.Sprintf("%d agent(s) in %s", len(dogs), elapsed.Round(time.Millisecond))))
}
