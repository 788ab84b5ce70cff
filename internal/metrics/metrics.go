// Package metrics exposes agent activity as Prometheus metrics.
//
// Metrics:
//   - decisioncore_ticks_total{agent,status} - ticks by resulting tree status
//   - decisioncore_tick_duration_seconds{agent} - time spent per tick
//   - decisioncore_arbiter_selections_total{agent,expert} - winning experts
//   - decisioncore_state_transitions_total{agent,from,to} - state machine changes
//   - decisioncore_agents - agents currently running
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the metrics for a set of agents.
type Collector struct {
	Ticks        *prometheus.CounterVec
	TickDuration *prometheus.HistogramVec
	Selections   *prometheus.CounterVec
	Transitions  *prometheus.CounterVec
	Agents       prometheus.Gauge
}

// New registers the metrics with reg.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		Ticks: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "decisioncore_ticks_total",
				Help: "Total number of agent ticks by resulting tree status",
			},
			[]string{"agent", "status"},
		),
		TickDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "decisioncore_tick_duration_seconds",
				Help:    "Duration of agent ticks in seconds",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10us to ~2.6s
			},
			[]string{"agent"},
		),
		Selections: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "decisioncore_arbiter_selections_total",
				Help: "Total number of arbitration cycles won, by expert",
			},
			[]string{"agent", "expert"},
		),
		Transitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "decisioncore_state_transitions_total",
				Help: "Total number of state machine transitions",
			},
			[]string{"agent", "from", "to"},
		),
		Agents: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "decisioncore_agents",
				Help: "Number of agents currently running",
			},
		),
	}
}

// ObserveTick records one tick.
func (c *Collector) ObserveTick(agent, status string, d time.Duration) {
	c.Ticks.WithLabelValues(agent, status).Inc()
	c.TickDuration.WithLabelValues(agent).Observe(d.Seconds())
}

// ObserveSelection records an arbitration winner.
func (c *Collector) ObserveSelection(agent, expert string) {
	c.Selections.WithLabelValues(agent, expert).Inc()
}

// ObserveTransition records a state change.
func (c *Collector) ObserveTransition(agent, from, to string) {
	c.Transitions.WithLabelValues(agent, from, to).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
