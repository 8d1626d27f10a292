package engine

import "github.com/latchfree/bwtree/lib/db/util"

// epochHeap is a min-heap of pending retirements ordered by retirement
// epoch, used by the reclaimer's single consumer goroutine to find the
// oldest retirements first. It is a thin wrapper around util.MapHeap,
// keyed by a synthetic sequence number (MapHeap's key) and prioritized by
// retirement epoch (MapHeap's priority); the actual retirement payload
// doesn't fit in MapHeap's uint64-only item, so it's kept in a side map
// indexed by the same sequence number.
type epochHeap[K, V any] struct {
	heap *util.MapHeap
	recs map[uint64]*retirement[K, V]
}

func newEpochHeap[K, V any]() *epochHeap[K, V] {
	return &epochHeap[K, V]{
		heap: util.NewMapHeap(),
		recs: make(map[uint64]*retirement[K, V]),
	}
}

func (h *epochHeap[K, V]) push(seq uint64, rec *retirement[K, V]) {
	h.heap.AddItem(seq, rec.epoch)
	h.recs[seq] = rec
}

func (h *epochHeap[K, V]) peek() (*retirement[K, V], uint64, bool) {
	top, ok := h.heap.Peek()
	if !ok {
		return nil, 0, false
	}
	return h.recs[top.Key], top.Priority, true
}

func (h *epochHeap[K, V]) pop() {
	top, ok := h.heap.Peek()
	if !ok {
		return
	}
	h.heap.RemoveByKey(top.Key)
	delete(h.recs, top.Key)
}

func (h *epochHeap[K, V]) len() int { return h.heap.Len() }
