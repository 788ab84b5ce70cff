package agent

import (
	"context"
	"errors"
	"time"

	bt "github.com/joeycumines/go-behaviortree"

	"github.com/joeycumines/decisioncore/internal/gobt"
)

// Node returns a go-behaviortree node ticking the agent. A tick error is
// returned with a Failure status, which stops a bt.Ticker.
func (a *Agent) Node() bt.Node {
	return bt.New(func([]bt.Node) (bt.Status, error) {
		status, err := a.Tick()
		if err != nil {
			return bt.Failure, err
		}
		return gobt.ToBT(status), nil
	})
}

// Ticker starts ticking the agent every interval until ctx is done, a tick
// fails with an error, or maxTicks ticks have run (no limit if maxTicks is
// zero or less). Reaching the limit stops the ticker without an error.
func (a *Agent) Ticker(ctx context.Context, interval time.Duration, maxTicks int) bt.Ticker {
	node := a.Node()
	count := 0
	return bt.NewTickerStopOnFailure(ctx, interval, bt.New(func([]bt.Node) (bt.Status, error) {
		if maxTicks > 0 && count >= maxTicks {
			return bt.Failure, nil
		}
		count++
		if _, err := node.Tick(); err != nil {
			return bt.Failure, err
		}
		if maxTicks > 0 && count >= maxTicks {
			return bt.Failure, nil
		}
		return bt.Running, nil
	}))
}

// Run ticks the agent until ctx is done, a tick fails with an error, or
// maxTicks ticks have run. Stopping because of ctx or the tick limit is not
// an error.
func (a *Agent) Run(ctx context.Context, interval time.Duration, maxTicks int) error {
	ticker := a.Ticker(ctx, interval, maxTicks)
	<-ticker.Done()
	return tickerErr(ticker)
}

func tickerErr(t bt.Ticker) error {
	err := t.Err()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// Group runs several agents concurrently, one ticker each, under a
// bt.Manager. Agents share nothing, so no locking is involved.
type Group struct {
	manager bt.Manager
	tickers []bt.Ticker
	agents  []*Agent
}

// NewGroup returns an empty group.
func NewGroup() *Group {
	return &Group{manager: bt.NewManager()}
}

// Start begins ticking agents. See Agent.Ticker for the stop conditions of
// each agent.
func (g *Group) Start(ctx context.Context, interval time.Duration, maxTicks int, agents ...*Agent) error {
	for _, a := range agents {
		ticker := a.Ticker(ctx, interval, maxTicks)
		if err := g.manager.Add(ticker); err != nil {
			ticker.Stop()
			return err
		}
		g.tickers = append(g.tickers, ticker)
		g.agents = append(g.agents, a)
	}
	return nil
}

// Agents returns the started agents.
func (g *Group) Agents() []*Agent { return g.agents }

// Wait blocks until every agent has stopped, then stops the group. It
// returns the agents' errors, joined.
func (g *Group) Wait() error {
	errs := make([]error, 0, len(g.tickers))
	for _, t := range g.tickers {
		<-t.Done()
		errs = append(errs, tickerErr(t))
	}
	g.manager.Stop()
	<-g.manager.Done()
	return errors.Join(errs...)
}

// Stop stops every agent.
func (g *Group) Stop() {
	g.manager.Stop()
}
