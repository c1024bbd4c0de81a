// Package db wraps partseq.Sequence[*txn.Transaction] with the
// transaction-database operations spec.md §4.F/§4.H need: partition-
// affine loading, dense per-item TWU accumulation, and the bulk rename
// pass that rewrites every transaction's items into the dense ascending
// order the search core relies on.
package db

import (
	"numahui/items"
	"numahui/partseq"
	"numahui/txn"
)

// weight is the default per-transaction cost metric the partitioned
// sequence uses to balance load across partitions: its serialized size.
func weight(t *txn.Transaction) uint64 { return t.BytesWeight() }

// Database is the partitioned transaction store spec.md §3 calls the
// database: one partition per worker/node, so each can be scanned and
// rewritten without cross-partition coordination.
type Database struct {
	*partseq.Sequence[*txn.Transaction]
}

// New returns an empty Database with n partitions.
func New(n int) *Database {
	return &Database{Sequence: partseq.New[*txn.Transaction](n, weight)}
}

// AccumulateTWUPartition adds, for every item in every transaction of
// partition i, that transaction's utility into twu (transaction-weighted
// utilization) using twu's atomic adder — spec.md §4.H step 1, the form
// efim's concurrent TWU pass calls from one goroutine per partition
// (spec.md §5's "atomic fetch-add"). twu must be sized to the raw
// (pre-rename) item id space.
func (d *Database) AccumulateTWUPartition(i int, twu *items.DenseAccumulator) {
	for _, t := range d.Partition(i) {
		u := uint64(t.TotalUtility())
		t.Do(func(item txn.Item, _ txn.Utility) {
			twu.AddAtomic(uint32(item), u)
		})
	}
}

// MaxRawItem scans every transaction for the highest raw item id present,
// so callers can presize a DenseAccumulator before a concurrent pass.
func (d *Database) MaxRawItem() uint32 {
	var max uint32
	d.Do(func(_ int, t *txn.Transaction) {
		t.Do(func(item txn.Item, _ txn.Utility) {
			if uint32(item) > max {
				max = uint32(item)
			}
		})
	})
	return max
}

// RenamePartition rewrites every transaction's item ids in partition i
// through bijection (old id -> new dense id) in place, drops items
// absent from bijection (below-threshold items pruned by TWU), and
// re-sorts each transaction's remaining (item, utility) pairs by the new
// id — which, because bijection assigns ids in ascending TWU order, also
// yields the ascending-by-new-id order the search core requires
// (spec.md §4.H step 2). The form efim's rename pass calls from one
// goroutine per partition, since bijection is read-only once built and
// partitions never overlap.
func (d *Database) RenamePartition(i int, bijection *items.Bijection) {
	for _, t := range d.Partition(i) {
		renameOne(t, bijection)
	}
}

// DropEmpty removes every transaction left with no surviving items after
// a rename pass pruned all of its items (spec.md §4.H step 3).
func (d *Database) DropEmpty() {
	d.EraseIf(func(t *txn.Transaction) bool { return t.Len() == 0 })
}

func renameOne(t *txn.Transaction, bijection *items.Bijection) {
	type pair struct {
		item txn.Item
		util txn.Utility
	}
	pairs := make([]pair, 0, t.Len())
	t.Do(func(item txn.Item, util txn.Utility) {
		// Most raw item ids in a real dataset are not survivors once TWU
		// pruning has run; the bitmap check is cheaper than the hash
		// lookup and rejects the common case before paying for it.
		if !bijection.Survives(uint32(item)) {
			return
		}
		if nid, ok := bijection.Forward(uint32(item)); ok {
			pairs = append(pairs, pair{txn.Item(nid), util})
		}
	})
	for i := 1; i < len(pairs); i++ {
		j := i
		for j > 0 && pairs[j-1].item > pairs[j].item {
			pairs[j-1], pairs[j] = pairs[j], pairs[j-1]
			j--
		}
	}
	rebuilt := txn.NewBuilder(len(pairs))
	for _, p := range pairs {
		rebuilt.Append(p.item, p.util)
	}
	*t = *rebuilt
}
