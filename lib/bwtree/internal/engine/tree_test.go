package engine

import (
	"fmt"
	"testing"
)

func newTestTree(t *testing.T, leafMax int) *Tree[int, string] {
	t.Helper()
	cfg := Config{LeafSlotMax: leafMax, LeafSlotMin: leafMax / 2, InnerSlotMax: leafMax, InnerSlotMin: leafMax / 2, ConsolidateThreshold: 8}
	tree := New[int, string](intLess, intEqual, strEqual, false, cfg, Hooks{})
	t.Cleanup(tree.Close)
	return tree
}

func TestTreeSplitsWhenOverCapacity(t *testing.T) {
	tree := newTestTree(t, 8)

	for i := 1; i <= 9; i++ {
		if err := tree.Insert(i, v(i)); err != nil {
			t.Fatalf("Insert(%d) failed: %v", i, err)
		}
	}

	rootHead := tree.table.Get(tree.RootPID())
	if rootHead.isLeaf {
		t.Fatalf("root should have become an Inner after the 9th insert forced a split")
	}

	all := tree.ScanAll()
	if len(all) != 9 {
		t.Fatalf("ScanAll = %v (%d values), want 9", all, len(all))
	}
}

func TestTreeConsolidationIsIdempotent(t *testing.T) {
	tree := newTestTree(t, 64)

	for i := 0; i < 9; i++ {
		if err := tree.Insert(1, "x"); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
		if err := tree.Delete(1, "x"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
	}
	if err := tree.Insert(1, "final"); err != nil {
		t.Fatalf("final insert failed: %v", err)
	}

	pid := tree.RootPID()
	head := tree.table.Get(pid)
	tree.consolidate(pid, head)

	head2 := tree.table.Get(pid)
	if head2.deltaLen != 0 {
		t.Fatalf("deltaLen after consolidation = %d, want 0", head2.deltaLen)
	}

	tree.consolidate(pid, head2)
	head3 := tree.table.Get(pid)
	if len(head3.slotkey) != len(head2.slotkey) {
		t.Fatalf("consolidating twice changed the folded content: %v vs %v", head2.slotkey, head3.slotkey)
	}

	got := tree.Lookup(1)
	if len(got) != 1 || got[0] != "final" {
		t.Fatalf("Lookup(1) after double consolidation = %v, want [final]", got)
	}
}

func TestTreeChainWellFormedness(t *testing.T) {
	tree := newTestTree(t, 64)

	for i := 0; i < 5; i++ {
		if err := tree.Insert(i, v(i)); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	pid := tree.RootPID()
	head := tree.table.Get(pid)

	cur := head
	depth := 0
	for cur != nil && cur.isDelta() {
		if cur.deltaLen != head.deltaLen-depth {
			t.Fatalf("deltaLen at depth %d = %d, want %d", depth, cur.deltaLen, head.deltaLen-depth)
		}
		depth++
		cur = cur.next
	}
	if cur == nil {
		t.Fatalf("chain never reached a base node")
	}
}

func v(i int) string { return fmt.Sprintf("v%d", i) }
