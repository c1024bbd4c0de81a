package items

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// Bijection maps raw dataset item ids to the dense, ascending-TWU-order
// ids the search core uses internally, and back. Items whose TWU falls
// below the minimum utility threshold have no entry — Forward reports
// them absent, which is how the rename pass (db.RenamePartition) drops them.
type Bijection struct {
	fwd     hash
	reverse []uint32 // new id -> raw id
	members *roaring.Bitmap
}

// Build ranks every item in twu by ascending utilization, keeps those
// with sum >= minUtil, and assigns them dense ids 1..k in that order —
// spec.md §4.H step 2's "items are renamed in ascending TWU order," the
// same order searchX must explore them in so upper-bound pruning sheds
// the lowest-utility items first.
func Build(twu *DenseAccumulator, minUtil uint64) *Bijection {
	type kv struct {
		item uint32
		sum  uint64
	}
	var kept []kv
	twu.Do(func(item uint32, sum uint64) {
		if item == 0 || sum < minUtil {
			return
		}
		kept = append(kept, kv{item, sum})
	})
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].sum != kept[j].sum {
			return kept[i].sum < kept[j].sum
		}
		return kept[i].item < kept[j].item
	})

	b := &Bijection{
		fwd:     newHash(len(kept)),
		reverse: make([]uint32, len(kept)),
		members: roaring.New(),
	}
	for newID, e := range kept {
		// Dense ids are 1-based: 0 is txn.Item's reserved invalid
		// sentinel, and the same value also doubles as the hash's own
		// empty-slot marker, so the first surviving item must land on 1,
		// not 0, to stay a valid item id once renamed.
		dense := uint32(newID) + 1
		b.fwd.put(e.item, dense)
		b.reverse[newID] = e.item
		b.members.Add(e.item)
	}
	b.members.RunOptimize()
	return b
}

// Survives is a cheap roaring-bitmap membership test over the raw item
// id space — used as the rewrite pass's first check on every item before
// the hash lookup Forward would otherwise require, since the rewrite
// walks every item of every transaction in the database and most raw
// ids are not survivors once TWU pruning has run.
func (b *Bijection) Survives(raw uint32) bool {
	return b.members.Contains(raw)
}

// Forward returns the 1-based dense id for a raw item id, or (0, false)
// if the item was pruned or never seen.
func (b *Bijection) Forward(raw uint32) (uint32, bool) {
	v, ok := b.fwd.get(raw)
	if !ok {
		return 0, false
	}
	return v, true
}

// Backward returns the raw id for a 1-based dense id.
func (b *Bijection) Backward(dense uint32) uint32 {
	return b.reverse[dense-1]
}

// Len returns the number of surviving items.
func (b *Bijection) Len() int { return len(b.reverse) }
