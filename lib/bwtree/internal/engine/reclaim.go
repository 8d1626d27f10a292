package engine

import (
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/latchfree/bwtree/lib/db/util"
)

// retirement is one chain handed to the reclaimer, stamped with the epoch
// that was active when it was retired. No reader that pinned an epoch
// after this value can possibly still hold a reference to the chain.
type retirement[K, V any] struct {
	head  *node[K, V]
	epoch uint64
}

// Guard represents one pinned epoch. Callers must call Unpin exactly once,
// normally via defer, for the duration they may hold references obtained
// from the tree.
type Guard struct {
	id    uint64
	epoch uint64
}

// reclaimer implements the epoch-based garbage collection discipline the
// distilled design leaves as an open question (the original's garbage
// table is produced into but never drained). Retirements are pushed from
// any number of mutator goroutines through util.LockFreeMPSC and drained
// by one background goroutine into an epochHeap - a util.MapHeap keyed by
// a synthetic sequence number rather than a PID, since a PID can be
// retired more than once over its lifetime.
type reclaimer[K, V any] struct {
	epoch atomic.Uint64

	activeGuards *xsync.MapOf[uint64, uint64] // guard id -> pinned epoch
	nextGuardID  atomic.Uint64

	queue *util.LockFreeMPSC[retirement[K, V]]
	seq   atomic.Uint64

	done chan struct{}
}

func newReclaimer[K, V any]() *reclaimer[K, V] {
	r := &reclaimer[K, V]{
		activeGuards: xsync.NewMapOf[uint64, uint64](),
		queue:        util.NewLockFreeMPSC[retirement[K, V]](),
		done:         make(chan struct{}),
	}
	r.epoch.Store(1)
	go r.drain()
	return r
}

// pin records the calling goroutine's presence at the current epoch and
// returns a Guard that must be released when the caller is done
// dereferencing anything it obtained from the tree.
func (r *reclaimer[K, V]) pin() *Guard {
	id := r.nextGuardID.Add(1)
	e := r.epoch.Load()
	r.activeGuards.Store(id, e)
	return &Guard{id: id, epoch: e}
}

func (r *reclaimer[K, V]) release(g *Guard) {
	r.activeGuards.Delete(g.id)
}

// retire hands a retired chain head to the background reclaimer.
func (r *reclaimer[K, V]) retire(head *node[K, V]) {
	e := r.epoch.Add(1) - 1
	r.queue.Push(&retirement[K, V]{head: head, epoch: e})
}

// oldestPinnedEpoch returns the lowest epoch any live guard has pinned, or
// the reclaimer's current epoch if no guard is active (meaning everything
// retired so far is safe to free).
func (r *reclaimer[K, V]) oldestPinnedEpoch() uint64 {
	oldest := r.epoch.Load()
	r.activeGuards.Range(func(_ uint64, e uint64) bool {
		if e < oldest {
			oldest = e
		}
		return true
	})
	return oldest
}

// drain is the single consumer goroutine: it pulls retirements off the MPSC
// queue's output channel into a local epochHeap and periodically frees every
// entry older than the oldest pinned epoch. A ticker drives the reclaim
// check independently of new arrivals, since a guard's release never wakes
// this goroutine on its own. Freeing a chain walks MergeDelta.original_node
// once per chain via a visited-node set so a chain reachable through both
// the ordinary next-chain and a merge back-reference is never double freed.
func (r *reclaimer[K, V]) drain() {
	defer close(r.done)

	pending := newEpochHeap[K, V]()
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	recv := r.queue.Recv()
	for {
		select {
		case rec, ok := <-recv:
			if !ok {
				r.reclaimSafe(pending, true)
				return
			}
			pending.push(r.seq.Add(1), rec)
		case <-ticker.C:
		}
		r.reclaimSafe(pending, false)
	}
}

// reclaimSafe frees every pending chain retired before the oldest pinned
// epoch. When force is set (the queue has been closed and drained to
// completion) it frees everything regardless of epoch, since no further
// readers can appear once the tree itself is closing.
func (r *reclaimer[K, V]) reclaimSafe(pending *epochHeap[K, V], force bool) {
	safe := r.oldestPinnedEpoch()
	for {
		item, epoch, ok := pending.peek()
		if !ok || (!force && epoch >= safe) {
			return
		}
		pending.pop()
		freeChain(item)
	}
}

func (r *reclaimer[K, V]) close() {
	r.queue.Close()
	<-r.done
}

// freeChain walks a retired chain to completion, following both the
// ordinary delta-chain next pointer and, for a MergeDelta, the borrowed
// original_node reference exactly once. There is nothing to actually
// release in Go beyond dropping references, but the walk itself is the
// part worth getting right: a future merge implementation depends on never
// visiting the same sub-chain twice.
func freeChain[K, V any](rec *retirement[K, V]) {
	visited := map[*node[K, V]]bool{}
	var walk func(n *node[K, V])
	walk = func(n *node[K, V]) {
		for n != nil {
			if visited[n] {
				return
			}
			visited[n] = true
			if n.kind == kindMerge && n.mergeOriginal != nil {
				walk(n.mergeOriginal)
			}
			n = n.next
		}
	}
	walk(rec.head)
}
