// Package metrics renders post-run simulation state as Prometheus
// exposition-format text. There is no live server here: the spec treats
// metrics serving as out of scope, so this is a one-shot snapshot-and-write
// step a caller runs after Simulation.Run returns, grounded on the chaos
// runner's Prometheus client and its named-gauge SLI catalogue.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/jihwankim/dscale-sim/pkg/simcontext"
)

// KeyPrefix is the KV key convention a process writes numeric results
// under to have them picked up by Snapshot. A key "metrics/quorum_size"
// becomes the gauge "dscale_sim_quorum_size".
const KeyPrefix = "metrics/"

const namespace = "dscale_sim"

// Exporter snapshots a run's KV store into Prometheus gauges, one per
// metrics/* key, each labeled by run_id so results from multiple runs can
// share one registry without colliding.
type Exporter struct {
	registry *prometheus.Registry
	gauges   map[string]*prometheus.GaugeVec
}

// New creates an empty Exporter with its own registry.
func New() *Exporter {
	return &Exporter{
		registry: prometheus.NewRegistry(),
		gauges:   make(map[string]*prometheus.GaugeVec),
	}
}

// Snapshot reads every metrics/* key from kv whose value is a numeric
// type and records it under run_id. Keys whose value cannot be converted
// to a float64 are skipped rather than causing Snapshot to fail — a
// non-numeric value under metrics/* is a caller mistake, not a reason to
// lose every other metric in the run.
func (e *Exporter) Snapshot(kv *simcontext.KV, runID string) {
	kv.Range(func(key string, value any) {
		if len(key) <= len(KeyPrefix) || key[:len(KeyPrefix)] != KeyPrefix {
			return
		}
		v, ok := asFloat64(value)
		if !ok {
			return
		}
		name := sanitizeName(key[len(KeyPrefix):])
		e.gaugeFor(name).WithLabelValues(runID).Set(v)
	})
}

func (e *Exporter) gaugeFor(name string) *prometheus.GaugeVec {
	if g, ok := e.gauges[name]; ok {
		return g
	}
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      fmt.Sprintf("simulation metric %q, snapshotted from the run's KV store", name),
	}, []string{"run_id"})
	e.registry.MustRegister(g)
	e.gauges[name] = g
	return g
}

// WriteTo renders every registered gauge in Prometheus text exposition
// format.
func (e *Exporter) WriteTo(w io.Writer) error {
	families, err := e.registry.Gather()
	if err != nil {
		return fmt.Errorf("metrics: gather: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("metrics: encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

func asFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

func sanitizeName(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
