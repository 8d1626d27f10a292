package engine

import "runtime"

// ErrDuplicateKey and ErrNotFound are sentinel results the engine returns
// to the public package, which wraps them in its own typed Error. The
// engine itself never panics for these - they are expected outcomes, not
// invariant violations.
var (
	ErrDuplicateKey = &engineErr{"key already present"}
	ErrNotFound     = &engineErr{"value not found for key"}
)

type engineErr struct{ msg string }

func (e *engineErr) Error() string { return e.msg }

// Insert adds (key, value) to the index, following the protocol in the
// design: split first if the target leaf is already over capacity, then
// search again, then CAS a RecordDelta onto the (possibly new) target
// leaf. On a lost CAS race the whole thing restarts from the split check.
func (t *Tree[K, V]) Insert(key K, value V) error {
	g := t.PinEpoch()
	defer t.Unpin(g)

	for {
		t.splitIfNeeded(key)

		path, ok := t.Search(t.RootPID(), key)
		if !ok {
			continue
		}
		pid := path.leafPID()
		head := path.leafHead()

		if t.cfg.ConsolidateThreshold > 0 && head.deltaLen >= t.cfg.ConsolidateThreshold {
			t.consolidate(pid, head)
			continue
		}

		if !inRangeHalfOpen(t.less, key, head.lowKey, head.highKey, head.infLowKey, head.infHighKey) {
			continue // structural change moved our range out from under us
		}

		folded := foldLeaf(t.less, t.keyEq, t.valEq, head)
		present := false
		for _, k := range folded.keys {
			if t.keyEq(k, key) {
				present = true
				break
			}
		}
		if t.unique && present {
			return ErrDuplicateKey
		}

		delta := &node[K, V]{
			kind:       kindRecordInsert,
			next:       head,
			isLeaf:     true,
			lowKey:     head.lowKey,
			highKey:    head.highKey,
			infLowKey:  head.infLowKey,
			infHighKey: head.infHighKey,
			deltaLen:   head.deltaLen + 1,
			recKey:     key,
			recVal:     value,
			slotUse:    head.slotUse,
		}
		if !present {
			delta.slotUse++
		}

		if t.table.Install(pid, head, delta) {
			t.hooks.bumpLen(delta.deltaLen)
			return nil
		}
		t.hooks.bump(t.hooks.OnCASRetry)
		backoffRetry()
	}
}

// Delete removes one occurrence of (key, value), following the same loop as
// Insert: split check, search, consolidation of a long chain, then a CAS of
// a RecordDelta. If that occurrence is the key's only live value, the key
// itself disappears from slotUse; otherwise only the bag shrinks.
func (t *Tree[K, V]) Delete(key K, value V) error {
	g := t.PinEpoch()
	defer t.Unpin(g)

	for {
		t.splitIfNeeded(key)

		path, ok := t.Search(t.RootPID(), key)
		if !ok {
			continue
		}
		pid := path.leafPID()
		head := path.leafHead()

		if t.cfg.ConsolidateThreshold > 0 && head.deltaLen >= t.cfg.ConsolidateThreshold {
			t.consolidate(pid, head)
			continue
		}

		if !inRangeHalfOpen(t.less, key, head.lowKey, head.highKey, head.infLowKey, head.infHighKey) {
			continue
		}

		folded := foldLeaf(t.less, t.keyEq, t.valEq, head)
		var total int
		var matching int
		for i, k := range folded.keys {
			if !t.keyEq(k, key) {
				continue
			}
			total = len(folded.values[i])
			for _, v := range folded.values[i] {
				if t.valEq(v, value) {
					matching++
				}
			}
		}
		if matching == 0 {
			return ErrNotFound
		}

		delta := &node[K, V]{
			kind:       kindRecordDelete,
			next:       head,
			isLeaf:     true,
			lowKey:     head.lowKey,
			highKey:    head.highKey,
			infLowKey:  head.infLowKey,
			infHighKey: head.infHighKey,
			deltaLen:   head.deltaLen + 1,
			recKey:     key,
			recVal:     value,
			slotUse:    head.slotUse,
		}
		if total == 1 {
			delta.slotUse--
		}

		if t.table.Install(pid, head, delta) {
			t.hooks.bumpLen(delta.deltaLen)
			return nil
		}
		t.hooks.bump(t.hooks.OnCASRetry)
		backoffRetry()
	}
}

func backoffRetry() {
	runtime.Gosched()
}

func (h Hooks) bump(f func()) {
	if f != nil {
		f()
	}
}

// bumpLen reports a chain length observation to OnChainLen, if configured.
func (h Hooks) bumpLen(n int) {
	if h.OnChainLen != nil {
		h.OnChainLen(n)
	}
}
