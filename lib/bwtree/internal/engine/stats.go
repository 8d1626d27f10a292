package engine

// LeafOccupancy walks the leaf horizontal list and returns each leaf's
// live key count, in left-to-right order. It exists purely for the
// public package's Stats() method to feed into a size histogram; it is
// not on any hot path.
func (t *Tree[K, V]) LeafOccupancy() []int {
	g := t.PinEpoch()
	defer t.Unpin(g)

	var out []int
	pid := t.HeadLeafPID()
	visited := map[PID]bool{}
	for pid != NullPID {
		if visited[pid] {
			break
		}
		visited[pid] = true
		head := t.table.Get(pid)
		if head == nil {
			break
		}
		folded := foldLeaf(t.less, t.keyEq, t.valEq, head)
		out = append(out, len(folded.keys))
		pid = folded.nextLf
	}
	return out
}
