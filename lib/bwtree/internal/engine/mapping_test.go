package engine

import "testing"

func TestMappingTableAllocateGetInstall(t *testing.T) {
	table := NewMappingTable[int, string]()

	head := &node[int, string]{kind: kindLeaf, isLeaf: true, infLowKey: true, infHighKey: true}
	pid := table.Allocate(head)

	if pid == NullPID {
		t.Fatalf("Allocate returned NullPID")
	}
	if got := table.Get(pid); got != head {
		t.Fatalf("Get after Allocate = %v, want the allocated node", got)
	}
	if head.pid != pid {
		t.Fatalf("Allocate did not stamp pid on the node: got %d, want %d", head.pid, pid)
	}

	delta := &node[int, string]{kind: kindRecordInsert, next: head}
	if !table.Install(pid, head, delta) {
		t.Fatalf("Install with the correct expected head should succeed")
	}
	if got := table.Get(pid); got != delta {
		t.Fatalf("Get after Install = %v, want the installed delta", got)
	}

	stale := &node[int, string]{kind: kindRecordInsert, next: head}
	if table.Install(pid, head, stale) {
		t.Fatalf("Install with a stale expected head should fail")
	}
}

func TestMappingTableDistinctPages(t *testing.T) {
	table := NewMappingTable[int, string]()

	var pids []PID
	for i := 0; i < mappingPageSize+5; i++ {
		n := &node[int, string]{kind: kindLeaf, isLeaf: true}
		pids = append(pids, table.Allocate(n))
	}

	seen := map[PID]bool{}
	for _, p := range pids {
		if seen[p] {
			t.Fatalf("duplicate pid allocated: %d", p)
		}
		seen[p] = true
		if table.Get(p) == nil {
			t.Fatalf("Get(%d) returned nil for an allocated pid", p)
		}
	}
}

func TestMappingTableGetUnallocatedIsNil(t *testing.T) {
	table := NewMappingTable[int, string]()
	if got := table.Get(PID(999999)); got != nil {
		t.Fatalf("Get on an unallocated pid = %v, want nil", got)
	}
}
