package engine

// Lookup returns every live value stored under key, in unspecified order
// within the key. It is the read-only counterpart to getValue in the
// design notes: a single top-down walk of the target leaf's chain.
func (t *Tree[K, V]) Lookup(key K) []V {
	g := t.PinEpoch()
	defer t.Unpin(g)

	for {
		path, ok := t.Search(t.RootPID(), key)
		if !ok {
			continue
		}
		head := path.leafHead()
		folded := foldLeaf(t.less, t.keyEq, t.valEq, head)
		for i, k := range folded.keys {
			if t.keyEq(k, key) {
				out := make([]V, len(folded.values[i]))
				copy(out, folded.values[i])
				return out
			}
		}
		return nil
	}
}
