package bwtree

import "github.com/latchfree/bwtree/lib/db/util"

// Stats summarizes the current structural shape of an index. It is
// computed by walking the leaf horizontal list, so it is O(leaf count) and
// meant for occasional diagnostic use, not the hot path.
type Stats struct {
	// LeafCount is the number of leaves currently in the horizontal list.
	LeafCount int
	// LeafOccupancy summarizes the distribution of live-key counts across
	// leaves (min/max/mean/stddev), the same way this corpus summarizes
	// shard sizes elsewhere.
	LeafOccupancy util.Stats
}
