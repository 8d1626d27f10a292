// Package testing provides a reusable conformance test suite for
// instances of bwtree.Index, mirroring lib/db/testing's RunKVDBTests
// pattern of one exported entry point that fans out into t.Run subtests.
package testing

import (
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/latchfree/bwtree/lib/bwtree"
)

// Factory constructs a fresh, empty index for one subtest. K and V must
// support the comparisons the caller wired into Options when building the
// factory.
type Factory[K, V any] func() *bwtree.Index[K, V]

// RunIndexTests runs the full conformance suite against non-unique
// indexes produced by factory, keyed by int with string values - the
// concrete instantiation every scenario in this suite is written against.
// A caller exercising a different K/V pairing can still reuse the
// individual test* helpers directly with its own comparators.
func RunIndexTests(t *testing.T, name string, factory Factory[int, string]) {
	t.Run(name, func(t *testing.T) {
		t.Run("SingleLeafFill", func(t *testing.T) {
			testSingleLeafFill(t, factory())
		})
		t.Run("FirstSplit", func(t *testing.T) {
			testFirstSplit(t, factory())
		})
		t.Run("CrossSplitDelete", func(t *testing.T) {
			testCrossSplitDelete(t, factory())
		})
		t.Run("DuplicateValues", func(t *testing.T) {
			testDuplicateValues(t, factory())
		})
		t.Run("Consolidation", func(t *testing.T) {
			testConsolidation(t, factory())
		})
		t.Run("ConcurrentInserters", func(t *testing.T) {
			testConcurrentInserters(t, factory())
		})
		t.Run("RoundTrip", func(t *testing.T) {
			testRoundTrip(t, factory())
		})
	})
}

// RunUniqueIndexTests runs the unique-mode-specific conformance checks
// against indexes produced by factory, which must have been built with
// Options.Unique set to true.
func RunUniqueIndexTests(t *testing.T, name string, factory Factory[int, string]) {
	t.Run(name, func(t *testing.T) {
		t.Run("UniqueMode", func(t *testing.T) {
			testUniqueMode(t, factory)
		})
	})
}

func v(i int) string { return fmt.Sprintf("v%d", i) }

func testSingleLeafFill(t *testing.T, ix *bwtree.Index[int, string]) {
	defer ix.Close()

	for i := 1; i <= 8; i++ {
		if err := ix.Insert(i, v(i)); err != nil {
			t.Fatalf("Insert(%d) failed: %v", i, err)
		}
	}

	got := ix.ScanAll()
	sort.Strings(got)
	if len(got) != 8 {
		t.Fatalf("expected 8 values, got %d: %v", len(got), got)
	}
}

func testFirstSplit(t *testing.T, ix *bwtree.Index[int, string]) {
	defer ix.Close()

	for i := 1; i <= 9; i++ {
		if err := ix.Insert(i, v(i)); err != nil {
			t.Fatalf("Insert(%d) failed: %v", i, err)
		}
	}

	if got := ix.Lookup(4); len(got) != 1 || got[0] != v(4) {
		t.Errorf("Lookup(4) = %v, want [%s]", got, v(4))
	}
	if got := ix.Lookup(9); len(got) != 1 || got[0] != v(9) {
		t.Errorf("Lookup(9) = %v, want [%s]", got, v(9))
	}

	all := ix.ScanAll()
	if len(all) != 9 {
		t.Errorf("ScanAll returned %d values, want 9", len(all))
	}
}

func testCrossSplitDelete(t *testing.T, ix *bwtree.Index[int, string]) {
	defer ix.Close()

	for i := 1; i <= 9; i++ {
		if err := ix.Insert(i, v(i)); err != nil {
			t.Fatalf("Insert(%d) failed: %v", i, err)
		}
	}

	if err := ix.Delete(9, v(9)); err != nil {
		t.Fatalf("Delete(9) failed: %v", err)
	}

	if got := ix.Lookup(9); len(got) != 0 {
		t.Errorf("Lookup(9) after delete = %v, want empty", got)
	}
	if got := ix.Lookup(8); len(got) != 1 {
		t.Errorf("Lookup(8) = %v, want [%s]", got, v(8))
	}
}

func testDuplicateValues(t *testing.T, ix *bwtree.Index[int, string]) {
	defer ix.Close()

	for _, val := range []string{"a", "b", "a"} {
		if err := ix.Insert(5, val); err != nil {
			t.Fatalf("Insert(5, %s) failed: %v", val, err)
		}
	}

	got := ix.Lookup(5)
	if len(got) != 3 {
		t.Fatalf("Lookup(5) = %v, want 3 values", got)
	}
	countA, countB := 0, 0
	for _, val := range got {
		switch val {
		case "a":
			countA++
		case "b":
			countB++
		}
	}
	if countA != 2 || countB != 1 {
		t.Fatalf("Lookup(5) = %v, want two a's and one b", got)
	}

	if err := ix.Delete(5, "a"); err != nil {
		t.Fatalf("Delete(5, a) failed: %v", err)
	}
	got = ix.Lookup(5)
	if len(got) != 2 {
		t.Fatalf("Lookup(5) after one delete = %v, want 2 values", got)
	}
}

func testConsolidation(t *testing.T, ix *bwtree.Index[int, string]) {
	defer ix.Close()

	for i := 1; i <= 10; i++ {
		if err := ix.Insert(i, v(i)); err != nil {
			t.Fatalf("Insert(%d) failed: %v", i, err)
		}
	}

	for i := 0; i < 9; i++ {
		if err := ix.Insert(1, "transient"); err != nil {
			t.Fatalf("transient insert failed: %v", err)
		}
		if err := ix.Delete(1, "transient"); err != nil {
			t.Fatalf("transient delete failed: %v", err)
		}
	}

	got := ix.Lookup(1)
	if len(got) != 1 || got[0] != v(1) {
		t.Errorf("Lookup(1) after consolidation churn = %v, want [%s]", got, v(1))
	}

	stats := ix.Stats()
	if stats.LeafCount == 0 {
		t.Errorf("Stats().LeafCount = 0, want > 0")
	}
}

func testConcurrentInserters(t *testing.T, ix *bwtree.Index[int, string]) {
	defer ix.Close()

	const workers = 8
	const perWorker = 200

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			base := w * perWorker
			for i := 0; i < perWorker; i++ {
				key := base + i
				if err := ix.Insert(key, v(key)); err != nil {
					t.Errorf("Insert(%d) failed: %v", key, err)
				}
			}
		}(w)
	}
	wg.Wait()

	all := ix.ScanAll()
	if len(all) != workers*perWorker {
		t.Fatalf("ScanAll returned %d values, want %d", len(all), workers*perWorker)
	}

	kvs := ix.Scan()
	for i := 1; i < len(kvs); i++ {
		if kvs[i-1].Key > kvs[i].Key {
			t.Fatalf("Scan not in ascending key order at index %d: %d > %d", i, kvs[i-1].Key, kvs[i].Key)
		}
	}
}

func testUniqueMode(t *testing.T, factory Factory[int, string]) {
	ix := factory()
	defer ix.Close()

	if err := ix.Insert(1, "a"); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	err := ix.Insert(1, "b")
	if err == nil {
		t.Fatalf("second insert on unique key should have failed")
	}
}

func testRoundTrip(t *testing.T, ix *bwtree.Index[int, string]) {
	defer ix.Close()

	if err := ix.Insert(42, "answer"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	got := ix.Lookup(42)
	if len(got) != 1 || got[0] != "answer" {
		t.Fatalf("Lookup(42) = %v, want [answer]", got)
	}

	if err := ix.Delete(42, "answer"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	got = ix.Lookup(42)
	if len(got) != 0 {
		t.Fatalf("Lookup(42) after delete = %v, want empty", got)
	}

	if err := ix.Delete(42, "answer"); err == nil {
		t.Fatalf("second delete should have returned ErrNotFound")
	}
}
