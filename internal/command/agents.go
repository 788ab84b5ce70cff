package command

import (
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/joeycumines/decisioncore/internal/agent"
	"github.com/joeycumines/decisioncore/internal/arbiter"
	"github.com/joeycumines/decisioncore/internal/blackboard"
	"github.com/joeycumines/decisioncore/internal/example/fetch"
	"github.com/joeycumines/decisioncore/internal/script"
	"github.com/joeycumines/decisioncore/internal/tree"
	"github.com/joeycumines/decisioncore/internal/treedoc"
)

// treeSource is what replaces or extends the dog's built-in tree.
type treeSource struct {
	doc        *treedoc.Document
	scriptName string
	script     string
	experts    []string
}

// loadTreeSource reads the tree document and script, either of which may be
// empty.
func loadTreeSource(docPath, scriptPath string, experts []string) (*treeSource, error) {
	src := &treeSource{scriptName: scriptPath, experts: experts}
	if docPath != "" {
		doc, err := treedoc.Load(docPath)
		if err != nil {
			return nil, err
		}
		src.doc = doc
	}
	if scriptPath != "" {
		code, err := os.ReadFile(scriptPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read script %s: %w", scriptPath, err)
		}
		src.script = string(code)
	} else if len(experts) > 0 {
		return nil, fmt.Errorf("script experts %v need a script", experts)
	}
	return src, nil
}

// dog is one simulated dog and the agent driving it.
type dog struct {
	dog   *fetch.Dog
	agent *agent.Agent
	// winners counts the ticks won by each expert. Only the agent's own
	// goroutine writes it while running.
	winners map[string]int
}

// spawn builds a dog in a world seeded with seed. The blackboard is seeded
// from the configuration before the dog initialises its own entries.
func (a *app) spawn(name string, seed uint64, src *treeSource, opts ...agent.Option) (*dog, error) {
	logger := a.logger.With("agent", name)

	bb := blackboard.New()
	if err := bb.Seed(a.cfg.Blackboard.Entries); err != nil {
		return nil, fmt.Errorf("agent %s: %w", name, err)
	}
	d := fetch.NewDog(fetch.NewWorld(seed), bb, fetch.WithDogLogger(logger))

	var host *script.Host
	if src.script != "" {
		host = script.NewHost(bb, script.WithLogger(logger))
		if err := host.Load(src.scriptName, src.script); err != nil {
			return nil, fmt.Errorf("agent %s: %w", name, err)
		}
	}

	var root tree.Node
	if src.doc != nil {
		reg := treedoc.NewRegistry()
		d.Register(reg)
		b := &treedoc.Builder{
			Registry:   reg,
			Blackboard: bb,
			Host:       host,
			Rand:       rand.New(rand.NewPCG(seed, ^seed)),
		}
		t, err := b.Build(src.doc)
		if err != nil {
			return nil, fmt.Errorf("agent %s: %w", name, err)
		}
		root = t
	}

	experts := make([]arbiter.Expert, 0, len(src.experts))
	for _, objName := range src.experts {
		e, err := host.Expert(objName)
		if err != nil {
			return nil, fmt.Errorf("agent %s: %w", name, err)
		}
		experts = append(experts, e)
	}

	opts = append([]agent.Option{agent.WithLogger(a.logger), agent.WithExperts(experts...)}, opts...)
	return &dog{dog: d, agent: d.Agent(name, root, opts...), winners: make(map[string]int)}, nil
}
