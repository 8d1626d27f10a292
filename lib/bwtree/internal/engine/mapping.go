package engine

import "sync/atomic"

// mappingPage is the second level of the mapping table: a fixed array of
// atomic chain-head pointers. Once a page pointer is published into the
// top-level array it is never replaced - only the slots inside it are
// CAS'd.
type mappingPage[K, V any] struct {
	slots [mappingPageSize]atomic.Pointer[node[K, V]]
}

// MappingTable is the PID -> chain-head registry (component C1). It is the
// sole resolver from a logical page identifier to the node currently
// installed there; no other structure in this package ever holds a PID's
// payload directly.
type MappingTable[K, V any] struct {
	pages [mappingPageSize]atomic.Pointer[mappingPage[K, V]]
	next  atomic.Uint64 // next PID to hand out, monotonic
}

// NewMappingTable returns an empty mapping table. PID 0 (NullPID) is
// reserved and never allocated.
func NewMappingTable[K, V any]() *MappingTable[K, V] {
	t := &MappingTable[K, V]{}
	t.next.Store(1)
	return t
}

// Get returns the current chain head for pid, or nil if the slot has never
// been written (or was never part of an allocated page).
func (t *MappingTable[K, V]) Get(pid PID) *node[K, V] {
	page, slot := splitPID(pid)
	p := t.pages[page].Load()
	if p == nil {
		return nil
	}
	return p.slots[slot].Load()
}

// Allocate reserves a fresh PID and publishes initialHead as its chain
// head. initialHead.pid is stamped with the new PID.
func (t *MappingTable[K, V]) Allocate(initialHead *node[K, V]) PID {
	pid := PID(t.next.Add(1) - 1)
	initialHead.pid = pid

	page, slot := splitPID(pid)
	p := t.pages[page].Load()
	if p == nil {
		candidate := &mappingPage[K, V]{}
		if t.pages[page].CompareAndSwap(nil, candidate) {
			p = candidate
		} else {
			// Lost the race to install this page; the loser's candidate is
			// simply dropped, the GC reclaims it.
			p = t.pages[page].Load()
		}
	}

	if !p.slots[slot].CompareAndSwap(nil, initialHead) {
		panic("engine: mapping table slot already occupied for a freshly allocated pid")
	}
	return pid
}

// Install attempts to swing pid's slot from expected to next via a single
// CAS and reports whether it succeeded. next.pid is stamped before the CAS
// is attempted. On success the caller hands expected to the reclaimer; on
// failure the caller retains ownership of next.
func (t *MappingTable[K, V]) Install(pid PID, expected, next *node[K, V]) bool {
	page, slot := splitPID(pid)
	p := t.pages[page].Load()
	if p == nil {
		return false
	}
	next.pid = pid
	return p.slots[slot].CompareAndSwap(expected, next)
}
