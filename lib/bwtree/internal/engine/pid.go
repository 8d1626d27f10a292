// Package engine implements the latch-free delta-chain index described by
// the bwtree package. Everything here is an implementation detail; the
// public surface lives one package up.
package engine

// PID is a logical page identifier. It never aliases a memory address - the
// mapping table is the sole resolver from PID to the current chain head.
type PID uint64

// NullPID is the sentinel meaning "no node".
const NullPID PID = 0

// mappingPageBits is the width of each level of the two-level mapping table.
// A PID's high mappingPageBits select the second-level page; the low
// mappingPageBits select the slot within it, giving 2^(2*mappingPageBits)
// addressable PIDs before the table would need a third level (never
// exercised in practice by a single process's worth of nodes).
const mappingPageBits = 10

const (
	mappingPageSize = 1 << mappingPageBits
	mappingPageMask = mappingPageSize - 1
)

func splitPID(p PID) (page, slot uint32) {
	page = uint32(p >> mappingPageBits)
	slot = uint32(p & mappingPageMask)
	return
}
