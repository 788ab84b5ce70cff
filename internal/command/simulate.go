package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/joeycumines/decisioncore/internal/agent"
	"github.com/joeycumines/decisioncore/internal/metrics"
	"github.com/joeycumines/decisioncore/internal/storage"
)

type simulateOptions struct {
	ticks       int
	interval    time.Duration
	seed        uint64
	agents      int
	treePath    string
	scriptPath  string
	experts     []string
	metricsAddr string
	trace       bool
	report      string
}

func newSimulateCommand(a *app) *cobra.Command {
	var opts simulateOptions
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run dogs playing fetch",
		Long: `Run the fetch example: each agent is a dog in its own world, with an owner
who calls it, throws the ball and sends it off again, and a keeper refilling
its food and water bowls.

With an interval of zero, agents are ticked one after the other as fast as
possible. Otherwise each agent ticks on its own goroutine every interval.

Examples:
  # One dog, 100 ticks, printing every tick
  decisioncore simulate --trace

  # Three dogs in real time, exposing Prometheus metrics
  decisioncore simulate --agents 3 --interval 50ms --ticks 2000 --metrics-addr :9464

  # Replace the built-in tree with a document using scripted leaves
  decisioncore simulate --tree dog.yaml --script dog.js

  # Write the final state of every dog to a JSON report
  decisioncore simulate --agents 2 --report run.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.applySimulateFlags(cmd, &opts); err != nil {
				return err
			}
			return a.simulate(cmd.Context(), newPrinter(cmd.OutOrStdout()), opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.ticks, "ticks", 0, "ticks to run per agent (default from sim.ticks)")
	f.DurationVar(&opts.interval, "interval", 0, "time between ticks, 0 to run flat out (default from sim.interval)")
	f.Uint64Var(&opts.seed, "seed", 0, "world seed; agent i uses seed+i (default from sim.seed)")
	f.IntVar(&opts.agents, "agents", 0, "number of dogs (default from sim.agents)")
	f.StringVar(&opts.treePath, "tree", "", "tree document replacing the built-in tree")
	f.StringVar(&opts.scriptPath, "script", "", "JavaScript file loaded into every agent")
	f.StringSliceVar(&opts.experts, "expert", nil, "script object to add as an expert (repeatable)")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")
	f.BoolVar(&opts.trace, "trace", false, "print every tick")
	f.StringVar(&opts.report, "report", "", "write a JSON report of the run to this file (default from sim.report)")
	return cmd
}

// applySimulateFlags fills opts from the configuration, keeping only the
// flags that were set.
func (a *app) applySimulateFlags(cmd *cobra.Command, opts *simulateOptions) error {
	f := cmd.Flags()
	sim := a.cfg.Sim
	if !f.Changed("ticks") {
		opts.ticks = sim.Ticks
	}
	if !f.Changed("interval") {
		opts.interval = sim.Interval
	}
	if !f.Changed("seed") {
		opts.seed = sim.Seed
	}
	if !f.Changed("agents") {
		opts.agents = sim.Agents
	}
	if !f.Changed("tree") {
		opts.treePath = a.cfg.Tree.Path
	}
	if !f.Changed("script") {
		opts.scriptPath = a.cfg.Tree.Script
	}
	if !f.Changed("expert") {
		opts.experts = a.cfg.Tree.Experts
	}
	if !f.Changed("metrics-addr") {
		opts.metricsAddr = a.cfg.Metrics.Addr
	}
	if !f.Changed("report") {
		opts.report = sim.Report
	}

	switch {
	case opts.ticks <= 0:
		return fmt.Errorf("--ticks must be positive, got %d", opts.ticks)
	case opts.agents <= 0:
		return fmt.Errorf("--agents must be positive, got %d", opts.agents)
	case opts.interval < 0:
		return fmt.Errorf("--interval must not be negative, got %v", opts.interval)
	}
	return nil
}

func (a *app) simulate(ctx context.Context, p *printer, opts simulateOptions) error {
	src, err := loadTreeSource(opts.treePath, opts.scriptPath, opts.experts)
	if err != nil {
		return err
	}

	var collector *metrics.Collector
	if opts.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		collector = metrics.New(reg)
		stop, err := serveMetrics(opts.metricsAddr, reg, a.logger)
		if err != nil {
			return err
		}
		defer stop()
	}

	var agentOpts []agent.Option
	if collector != nil {
		agentOpts = append(agentOpts, agent.WithMetrics(collector))
	}

	dogs := make([]*dog, 0, opts.agents)
	agents := make([]*agent.Agent, 0, opts.agents)
	for i := range opts.agents {
		var d *dog
		trace := func(tr agent.Trace) {
			if tr.Winner != "" {
				d.winners[tr.Winner]++
			}
			if opts.trace {
				p.trace(tr)
			}
		}
		d, err = a.spawn(fmt.Sprintf("dog-%d", i+1), opts.seed+uint64(i), src,
			slices.Concat(agentOpts, []agent.Option{agent.WithTrace(trace)})...)
		if err != nil {
			return err
		}
		dogs = append(dogs, d)
		agents = append(agents, d.agent)
	}
	if collector != nil {
		collector.Agents.Set(float64(len(agents)))
		defer collector.Agents.Set(0)
	}

	a.logger.Info("simulation started",
		"agents", len(agents),
		"ticks", opts.ticks,
		"interval", opts.interval,
		"seed", opts.seed)
	start := time.Now()
	if err := run(ctx, agents, opts.interval, opts.ticks); err != nil {
		return err
	}
	elapsed := time.Since(start)
	a.logger.Info("simulation finished", "elapsed", elapsed)

	if opts.report != "" {
		if err := a.writeReport(opts, start, elapsed, dogs); err != nil {
			return err
		}
	}

	p.summary(dogs, elapsed)
	return nil
}

// writeReport records the final state of every dog in a JSON file.
func (a *app) writeReport(opts simulateOptions, start time.Time, elapsed time.Duration, dogs []*dog) error {
	r := &storage.Report{
		StartedAt: start.UTC(),
		Elapsed:   elapsed,
		Seed:      opts.seed,
		Interval:  opts.interval,
		Agents:    make([]storage.AgentReport, len(dogs)),
	}
	for i, d := range dogs {
		ar := &r.Agents[i]
		ar.Name = d.agent.Name()
		ar.ID = d.agent.ID().String()
		ar.Ticks = d.agent.Ticks()
		ar.Status = d.agent.LastStatus().String()
		ar.Winners = d.winners
		ar.Capture(d.agent.Blackboard())
		if len(ar.Skipped) > 0 {
			a.logger.Debug("report skipped entries", "agent", ar.Name, "entries", ar.Skipped)
		}
	}
	if err := storage.Write(opts.report, r); err != nil {
		return err
	}
	a.logger.Info("report written", "path", opts.report, "agents", len(dogs))
	return nil
}

// run ticks every agent ticks times. A zero interval ticks them in turn on
// the calling goroutine, stopping early if ctx is done.
func run(ctx context.Context, agents []*agent.Agent, interval time.Duration, ticks int) error {
	if interval > 0 {
		g := agent.NewGroup()
		if err := g.Start(ctx, interval, ticks, agents...); err != nil {
			g.Stop()
			return err
		}
		return g.Wait()
	}
	for _, a := range agents {
		for range ticks {
			if ctx.Err() != nil {
				return nil
			}
			if _, err := a.Tick(); err != nil {
				return err
			}
		}
	}
	return nil
}

// serveMetrics serves reg on addr under /metrics until the returned function
// is called.
func serveMetrics(addr string, reg prometheus.Gatherer, logger *slog.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen for metrics on %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("metrics server shutdown failed", "error", err)
		}
	}, nil
}
