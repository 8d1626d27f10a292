package engine

import "testing"

func intLess(a, b int) bool     { return a < b }
func intEqual(a, b int) bool    { return a == b }
func strEqual(a, b string) bool { return a == b }

func TestFoldLeafAppliesInsertsAndDeletesInOrder(t *testing.T) {
	base := &node[int, string]{
		kind:       kindLeaf,
		isLeaf:     true,
		infLowKey:  true,
		infHighKey: true,
		slotkey:    []int{1, 2},
		slotdata:   [][]string{{"a"}, {"b"}},
	}
	// chain, most recent first: delete (2, "b"), insert (3, "c"), insert (1, "a2")
	d1 := &node[int, string]{kind: kindRecordInsert, next: base, recKey: 1, recVal: "a2"}
	d2 := &node[int, string]{kind: kindRecordInsert, next: d1, recKey: 3, recVal: "c"}
	head := &node[int, string]{kind: kindRecordDelete, next: d2, recKey: 2, recVal: "b"}

	folded := foldLeaf(intLess, intEqual, strEqual, head)

	if len(folded.keys) != 2 {
		t.Fatalf("folded.keys = %v, want 2 keys (1 and 3)", folded.keys)
	}
	if folded.keys[0] != 1 || folded.keys[1] != 3 {
		t.Fatalf("folded.keys = %v, want [1 3]", folded.keys)
	}
	if len(folded.values[0]) != 2 {
		t.Fatalf("values for key 1 = %v, want 2 values", folded.values[0])
	}
}

func TestFoldLeafSplitTruncates(t *testing.T) {
	base := &node[int, string]{
		kind:       kindLeaf,
		isLeaf:     true,
		infLowKey:  true,
		infHighKey: true,
		slotkey:    []int{1, 2, 3, 4},
		slotdata:   [][]string{{"a"}, {"b"}, {"c"}, {"d"}},
	}
	head := &node[int, string]{kind: kindSplit, next: base, splitKey: 3, splitPID: PID(7)}

	folded := foldLeaf(intLess, intEqual, strEqual, head)

	if len(folded.keys) != 2 {
		t.Fatalf("folded.keys = %v, want keys 1 and 2 only", folded.keys)
	}
	if folded.high != 3 || folded.infHi {
		t.Fatalf("folded.high = %v (infHi=%v), want 3 (finite)", folded.high, folded.infHi)
	}
	if folded.nextLf != PID(7) {
		t.Fatalf("folded.nextLf = %d, want the split sibling's pid", folded.nextLf)
	}
}

func TestFoldInnerAppliesIndexEntry(t *testing.T) {
	base := &node[int, struct{}]{
		kind:       kindInner,
		infLowKey:  true,
		infHighKey: true,
		slotkey:    []int{10},
		childid:    []PID{1, 2},
	}
	head := &node[int, struct{}]{kind: kindIndexEntry, next: base, ieLowKey: 20, ieChildPID: 3}

	folded := foldInner[int, struct{}](intLess, intEqual, head)

	if len(folded.keys) != 2 {
		t.Fatalf("folded.keys = %v, want [10 20]", folded.keys)
	}
	if folded.keys[0] != 10 || folded.keys[1] != 20 {
		t.Fatalf("folded.keys = %v, want [10 20]", folded.keys)
	}
	if folded.childid[0] != 1 || folded.childid[1] != 2 || folded.childid[2] != 3 {
		t.Fatalf("folded.childid = %v, want [1 2 3]", folded.childid)
	}
}
