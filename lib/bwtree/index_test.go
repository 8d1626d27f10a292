package bwtree_test

import (
	"testing"

	"github.com/latchfree/bwtree/lib/bwtree"
	bwtesting "github.com/latchfree/bwtree/lib/bwtree/testing"
)

func newIntStringIndex() *bwtree.Index[int, string] {
	return bwtree.New(bwtree.Options[int, string]{
		Less:       func(a, b int) bool { return a < b },
		KeyEqual:   func(a, b int) bool { return a == b },
		ValueEqual: func(a, b string) bool { return a == b },
		// A small node budget so the conformance suite's scenarios
		// (sized for leafSlotMax=8) actually exercise splits.
		NodeSizeBytes: 8 * 24,
	})
}

func newUniqueIntStringIndex() *bwtree.Index[int, string] {
	return bwtree.New(bwtree.Options[int, string]{
		Less:          func(a, b int) bool { return a < b },
		KeyEqual:      func(a, b int) bool { return a == b },
		ValueEqual:    func(a, b string) bool { return a == b },
		NodeSizeBytes: 8 * 24,
		Unique:        true,
	})
}

func TestIndexConformance(t *testing.T) {
	bwtesting.RunIndexTests(t, "IntString", newIntStringIndex)
}

func TestIndexUniqueMode(t *testing.T) {
	bwtesting.RunUniqueIndexTests(t, "IntStringUnique", newUniqueIntStringIndex)
}

func TestDeleteMissingReturnsNotFoundCode(t *testing.T) {
	ix := newIntStringIndex()
	defer ix.Close()

	if err := ix.Delete(1, "missing"); err == nil {
		t.Fatal("expected ErrNotFound")
	} else if !isErrCode(err, bwtree.ErrCodeNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func isErrCode(err error, code bwtree.ErrCode) bool {
	e, ok := err.(*bwtree.Error)
	return ok && e.Code == code
}
