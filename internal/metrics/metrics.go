// Package metrics counts what sessions do with Prometheus counters.
//
// A Collector is an engine.Observer; attach it to any number of sessions.
// play --metrics dumps the counters in text exposition format on exit.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"

	"github.com/roach88/ftality/internal/automaton"
	"github.com/roach88/ftality/internal/engine"
)

const namespace = "ftality"

// Result label values for KeysTotal.
const (
	ResultBound   = "bound"
	ResultUnbound = "unbound"
)

// Collector holds the engine counters.
type Collector struct {
	// KeysTotal counts keys fed. Labels: result (bound, unbound)
	KeysTotal *prometheus.CounterVec

	// CombosTotal counts fired labels. Labels: label
	CombosTotal *prometheus.CounterVec

	// TimeoutsTotal counts keys that found their session stale.
	TimeoutsTotal prometheus.Counter

	// MissesTotal counts bound keys that left the session at root.
	MissesTotal prometheus.Counter
}

// NewCollector creates the counters and registers them with reg.
//
// Panics if reg already holds counters of the same name.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		KeysTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keys_total",
			Help:      "Keys fed to sessions by binding result",
		}, []string{"result"}),

		CombosTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "combos_total",
			Help:      "Combo labels fired",
		}, []string{"label"}),

		TimeoutsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "timeouts_total",
			Help:      "Keys that arrived after the inactivity timeout",
		}),

		MissesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "misses_total",
			Help:      "Bound keys that broke every pending combo",
		}),
	}
}

// OnTransition implements engine.Observer.
func (c *Collector) OnTransition(_ string, tr engine.Transition) {
	if tr.Unbound {
		c.KeysTotal.WithLabelValues(ResultUnbound).Inc()
		return
	}
	c.KeysTotal.WithLabelValues(ResultBound).Inc()

	if tr.TimedOut {
		c.TimeoutsTotal.Inc()
	}
	if tr.To == automaton.Root {
		c.MissesTotal.Inc()
	}
	for _, label := range tr.Outputs {
		c.CombosTotal.WithLabelValues(label).Inc()
	}
}

// WriteText writes every metric family g gathers in Prometheus text format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("writing %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
