package engine

import (
	"sync/atomic"
)

// Hooks bundles the optional callbacks the engine invokes as it runs: on a
// split, a consolidation, a CAS retry, and for each chain-length
// observation. Any of them may be nil. It is intentionally a plain struct rather than an interface: there is
// exactly one implementation per Tree instance and no dynamic dispatch is
// wanted on this hot path.
type Hooks struct {
	OnSplit       func()
	OnConsolidate func()
	OnCASRetry    func()
	OnChainLen    func(n int)
}

// Tree is the engine-level implementation of the index: mapping table,
// root/head-leaf handles, and the mutation/split/consolidate/reclaim
// protocols. The public bwtree package wraps one Tree per Index.
type Tree[K, V any] struct {
	table *MappingTable[K, V]

	root     atomic.Uint64 // PID of the current root
	headLeaf atomic.Uint64 // PID of the leftmost leaf, for ScanAll

	less     func(a, b K) bool
	keyEq    func(a, b K) bool
	valEq    func(a, b V) bool
	unique   bool

	cfg Config

	reclaimer *reclaimer[K, V]

	hooks Hooks
}

// New constructs an empty tree with a single empty leaf as both root and
// head leaf.
func New[K, V any](less func(a, b K) bool, keyEq func(a, b K) bool, valEq func(a, b V) bool, unique bool, cfg Config, hooks Hooks) *Tree[K, V] {
	t := &Tree[K, V]{
		table:  NewMappingTable[K, V](),
		less:   less,
		keyEq:  keyEq,
		valEq:  valEq,
		unique: unique,
		cfg:    cfg,
		hooks:  hooks,
	}
	t.reclaimer = newReclaimer[K, V]()

	leaf := &node[K, V]{
		kind:       kindLeaf,
		isLeaf:     true,
		infLowKey:  true,
		infHighKey: true,
		nextLeaf:   NullPID,
	}
	pid := t.table.Allocate(leaf)
	t.root.Store(uint64(pid))
	t.headLeaf.Store(uint64(pid))
	return t
}

func (t *Tree[K, V]) RootPID() PID     { return PID(t.root.Load()) }
func (t *Tree[K, V]) HeadLeafPID() PID { return PID(t.headLeaf.Load()) }

// Close stops the background reclamation goroutine. It does not free nodes
// still reachable from the mapping table - only chains already retired.
func (t *Tree[K, V]) Close() {
	t.reclaimer.close()
}

// PinEpoch marks the calling goroutine as an active reader until the
// matching Unpin call, preventing the reclaimer from freeing any chain
// retired in between. Insert, Delete, Lookup, Scan and LeafOccupancy each
// pin for their whole body, via g := t.PinEpoch(); defer t.Unpin(g).
func (t *Tree[K, V]) PinEpoch() *Guard {
	return t.reclaimer.pin()
}

// Unpin releases a Guard obtained from PinEpoch.
func (t *Tree[K, V]) Unpin(g *Guard) {
	t.reclaimer.release(g)
}
