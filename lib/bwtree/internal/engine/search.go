package engine

// Path records the PIDs visited during a root-to-leaf search, root first
// and the target leaf last, together with the chain head observed at each.
// The split protocol reads a node's parent from it; a failed search is
// restarted from the root rather than re-anchored.
type Path[K, V any] struct {
	pids  []PID
	heads []*node[K, V]
}

func (p *Path[K, V]) leafPID() PID          { return p.pids[len(p.pids)-1] }
func (p *Path[K, V]) leafHead() *node[K, V] { return p.heads[len(p.heads)-1] }

// firstOverCapacity scans the path from the leaf upward to the root and
// returns the deepest node that is full, i.e. whose slotUse has reached its
// configured slot-count bound, so that it is split before it would receive
// one more entry. Scanning bottom-up means a leaf split that fills its
// parent is caught by the very next call: each splitIfNeeded iteration
// re-searches from the root, so a parent filled by the previous round's
// split is found and split in turn.
func (p *Path[K, V]) firstOverCapacity(cfg Config) (idx int, pid PID, head *node[K, V], over bool) {
	for i := len(p.pids) - 1; i >= 0; i-- {
		h := p.heads[i]
		max := cfg.LeafSlotMax
		if !h.isLeaf {
			max = cfg.InnerSlotMax
		}
		if h.slotUse >= max {
			return i, p.pids[i], h, true
		}
	}
	return 0, NullPID, nil, false
}

// Search walks from rootPID to the leaf that should contain key, following
// SplitDelta and MergeDelta redirections and IndexEntryDelta overlays as it
// encounters them. It never blocks: if a slot is momentarily nil (a
// concurrent retirement raced ahead of this reader) the caller should
// restart the whole operation from the root.
func (t *Tree[K, V]) Search(rootPID PID, key K) (*Path[K, V], bool) {
	path := &Path[K, V]{}
	pid := rootPID

	for {
		head := t.table.Get(pid)
		if head == nil {
			return nil, false
		}
		path.pids = append(path.pids, pid)
		path.heads = append(path.heads, head)

		childPID, isLeaf, redirected := t.descend(head, key)
		if redirected {
			// A SplitDelta sent us sideways to a sibling at the same level;
			// drop the top of the path so the next iteration puts the
			// sibling in its place rather than growing the path.
			path.pids = path.pids[:len(path.pids)-1]
			path.heads = path.heads[:len(path.heads)-1]
			pid = childPID
			continue
		}
		if isLeaf {
			return path, true
		}
		pid = childPID
	}
}

// descend inspects a single chain head (which may be a delta) and decides
// where to go next for key. redirected means "stay at this level, but the
// real chain head is childPID" (a split/merge sideways move); otherwise
// childPID is either the next PID to descend into, or - when isLeaf is true
// - irrelevant and the current PID is the answer.
func (t *Tree[K, V]) descend(head *node[K, V], key K) (childPID PID, isLeaf bool, redirected bool) {
	cur := head
	for cur != nil {
		switch cur.kind {
		case kindSplit:
			if !t.less(key, cur.splitKey) {
				return cur.splitPID, false, true
			}
		case kindMerge:
			if !t.less(key, cur.mergeKey) {
				// Route into the other chain directly; it has no PID of
				// its own to redirect through, so resolve from its own
				// head.
				return t.descendFromMergedNode(cur.mergeOriginal, key)
			}
		case kindRemove:
			// Removed nodes are never installed by any mutation path in
			// this repository; if one is ever encountered the caller
			// should restart from root rather than guess.
			return NullPID, false, false
		case kindIndexEntry:
			if inRangeHalfOpen(t.less, key, cur.ieLowKey, cur.ieHighKey, false, cur.ieInfHigh) {
				return cur.ieChildPID, false, false
			}
		case kindRecordInsert, kindRecordDelete:
			// leaf deltas carry no routing information beyond "this is a
			// leaf chain"; fall through to base dispatch below.
		case kindLeaf:
			return NullPID, true, false
		case kindInner:
			return t.descendInnerBase(cur, key), false, false
		}
		cur = cur.next
	}
	return NullPID, false, false
}

func (t *Tree[K, V]) descendFromMergedNode(n *node[K, V], key K) (PID, bool, bool) {
	childPID, isLeaf, _ := t.descend(n, key)
	return childPID, isLeaf, false
}

func (t *Tree[K, V]) descendInnerBase(base *node[K, V], key K) PID {
	for i, k := range base.slotkey {
		if t.less(key, k) {
			return base.childid[i]
		}
	}
	return base.childid[len(base.childid)-1]
}

func inRangeHalfOpen[K any](less func(a, b K) bool, key, low, high K, infLow, infHigh bool) bool {
	if !infLow && less(key, low) {
		return false
	}
	if !infHigh && !less(key, high) {
		return false
	}
	return true
}
