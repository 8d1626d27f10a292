// Package bwtree implements a latch-free, ordered, multi-valued index
// using the Bw-Tree design: immutable delta chains prepended over base
// nodes, a CAS-indirected mapping table from logical page identifiers to
// chain heads, and epoch-based reclamation of retired chains.
//
// Thread-safety: every exported method on Index is safe for concurrent
// use by any number of goroutines; the index never takes a lock on its
// hot path, relying entirely on atomic loads and compare-and-swap.
package bwtree

import (
	"github.com/latchfree/bwtree/lib/db/util"

	"github.com/latchfree/bwtree/lib/bwtree/internal/engine"
)

// Index is a generic, ordered, multi-valued (bag-semantics) index keyed by
// K with values of type V.
type Index[K, V any] struct {
	tree    *engine.Tree[K, V]
	metrics *indexMetrics
	logger  Logger
	unique  bool
}

// New constructs an empty Index from opts. Less, KeyEqual and ValueEqual
// are required; every other field has a sane default.
func New[K, V any](opts Options[K, V]) *Index[K, V] {
	if opts.Less == nil || opts.KeyEqual == nil || opts.ValueEqual == nil {
		panic("bwtree: Less, KeyEqual and ValueEqual are required")
	}
	opts = opts.withDefaults()

	m := newIndexMetrics(opts.MetricsSet, opts.InstanceName)

	cfg := engine.DeriveConfig[K, V](opts.NodeSizeBytes, opts.ConsolidateThreshold)

	hooks := engine.Hooks{
		OnSplit:       func() { m.splits.Inc() },
		OnConsolidate: func() { m.consolidations.Inc() },
		OnCASRetry:    func() { m.casRetries.Inc() },
		OnChainLen:    func(n int) { m.chainLen.Update(float64(n)) },
	}

	tree := engine.New[K, V](opts.Less, opts.KeyEqual, opts.ValueEqual, opts.Unique, cfg, hooks)

	opts.Logger.Infof("index created: nodeSizeBytes=%d leafSlotMax=%d innerSlotMax=%d unique=%t",
		opts.NodeSizeBytes, cfg.LeafSlotMax, cfg.InnerSlotMax, opts.Unique)

	return &Index[K, V]{
		tree:    tree,
		metrics: m,
		logger:  opts.Logger,
		unique:  opts.Unique,
	}
}

// Insert adds (key, value). Returns ErrDuplicateKey if the index is in
// unique mode and key already has a live value; otherwise nil.
func (ix *Index[K, V]) Insert(key K, value V) error {
	switch ix.tree.Insert(key, value) {
	case nil:
		return nil
	case engine.ErrDuplicateKey:
		return ErrDuplicateKey
	default:
		panic(newError(ErrCodeCorruption, "unexpected insert failure"))
	}
}

// Delete removes one occurrence of (key, value). Returns ErrNotFound if no
// such pair is currently present.
func (ix *Index[K, V]) Delete(key K, value V) error {
	switch ix.tree.Delete(key, value) {
	case nil:
		return nil
	case engine.ErrNotFound:
		return ErrNotFound
	default:
		panic(newError(ErrCodeCorruption, "unexpected delete failure"))
	}
}

// Lookup returns every live value stored under key. The order of values
// within the returned slice is unspecified.
func (ix *Index[K, V]) Lookup(key K) []V {
	return ix.tree.Lookup(key)
}

// ScanAll returns every live value across the whole index, in ascending
// key order, with values for the same key adjacent to one another.
func (ix *Index[K, V]) ScanAll() []V {
	return ix.tree.ScanAll()
}

// Scan returns every key currently present together with its live value
// bag, in ascending key order.
func (ix *Index[K, V]) Scan() []engine.KeyValues[K, V] {
	return ix.tree.Scan()
}

// Close stops the index's background reclamation goroutine. It does not
// invalidate any value already returned by Lookup/Scan/ScanAll.
func (ix *Index[K, V]) Close() error {
	ix.tree.Close()
	return nil
}

// Stats reports runtime structural statistics about the index, grounded
// on the same NewStats helper this corpus uses elsewhere to summarize
// numeric distributions (there, shard sizes; here, leaf occupancy).
func (ix *Index[K, V]) Stats() Stats {
	occupancy := ix.tree.LeafOccupancy()
	floats := make([]float64, len(occupancy))
	for i, v := range occupancy {
		floats[i] = float64(v)
	}
	return Stats{
		LeafCount:      len(occupancy),
		LeafOccupancy:  util.NewStats(floats),
	}
}
