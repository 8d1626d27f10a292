package bwtree

import "github.com/VictoriaMetrics/metrics"

// Options configures a new Index. There are no environment variables and
// no config files in the core - every field here is set once by the
// caller at construction and never mutated afterward. A companion CLI
// elsewhere in this repository is free to build an Options from flags;
// the core itself never reads outside of what it is handed.
type Options[K, V any] struct {
	// Less reports whether a sorts before b. Required.
	Less func(a, b K) bool
	// KeyEqual reports whether two keys are the same. Required.
	KeyEqual func(a, b K) bool
	// ValueEqual reports whether two values are the same. Required.
	ValueEqual func(a, b V) bool

	// Unique rejects Insert calls whose key already has a live value.
	Unique bool

	// NodeSizeBytes is the target byte budget a single node should occupy;
	// it is used only to derive slot-count bounds via unsafe.Sizeof(K)/
	// unsafe.Sizeof(V), never to actually size an allocation. Defaults to
	// 4096 if zero.
	NodeSizeBytes int

	// ConsolidateThreshold is the delta-chain length at which a chain is
	// folded into a fresh base node. Defaults to 8 if zero.
	ConsolidateThreshold int

	// MetricsSet, if non-nil, is the VictoriaMetrics set this index
	// registers its counters into. If nil, the index creates its own
	// private set rather than touching the process-wide default set.
	MetricsSet *metrics.Set

	// InstanceName distinguishes this index's metrics from any other
	// Index instance sharing a MetricsSet. Defaults to "default".
	InstanceName string

	// Logger receives diagnostic output. Defaults to a stdout logger at
	// LogInfo if nil.
	Logger Logger
}

func (o Options[K, V]) withDefaults() Options[K, V] {
	if o.NodeSizeBytes <= 0 {
		o.NodeSizeBytes = 4096
	}
	if o.ConsolidateThreshold <= 0 {
		o.ConsolidateThreshold = 8
	}
	if o.InstanceName == "" {
		o.InstanceName = "default"
	}
	if o.Logger == nil {
		o.Logger = NewLogger("bwtree", LogInfo)
	}
	return o
}
