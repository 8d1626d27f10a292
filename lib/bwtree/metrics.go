package bwtree

import (
	"fmt"
	"io"

	"github.com/VictoriaMetrics/metrics"
)

// indexMetrics wires VictoriaMetrics/metrics counters into the engine's
// Hooks. Each Index owns a private *metrics.Set instead of registering
// into the global default set, so multiple indexes in one process never
// collide on metric names.
type indexMetrics struct {
	set *metrics.Set

	splits         *metrics.Counter
	consolidations *metrics.Counter
	casRetries     *metrics.Counter
	chainLen       *metrics.Histogram
}

func newIndexMetrics(set *metrics.Set, instance string) *indexMetrics {
	if set == nil {
		set = metrics.NewSet()
	}

	m := &indexMetrics{set: set}
	m.splits = set.NewCounter(fmt.Sprintf(`bwtree_splits_total{instance=%q}`, instance))
	m.consolidations = set.NewCounter(fmt.Sprintf(`bwtree_consolidations_total{instance=%q}`, instance))
	m.casRetries = set.NewCounter(fmt.Sprintf(`bwtree_cas_retries_total{instance=%q}`, instance))
	m.chainLen = set.NewHistogram(fmt.Sprintf(`bwtree_delta_chain_length{instance=%q}`, instance))
	return m
}

// WritePrometheus writes this index's metrics in Prometheus exposition
// format, independent of whatever the process-wide default set exposes.
func (m *indexMetrics) WritePrometheus(w io.Writer) {
	m.set.WritePrometheus(w)
}
