package efim

import (
	"sort"

	"golang.org/x/sync/errgroup"

	"numahui/bins"
	"numahui/db"
	"numahui/items"
	"numahui/partseq"
	"numahui/txn"
)

// accumulateTWU runs spec.md §4.H step 1's per-item total-weighted-
// utility reduction concurrently across partitions via errgroup — one
// goroutine per partition, atomic fetch-add into the shared accumulator
// (spec.md §5). A cheap sequential pre-scan sizes the accumulator first,
// since AddAtomic must not grow concurrently with other writers.
func accumulateTWU(database *db.Database) *items.DenseAccumulator {
	twu := items.NewDenseAccumulator(database.MaxRawItem())
	var g errgroup.Group
	for i := 0; i < database.NumPartitions(); i++ {
		i := i
		g.Go(func() error {
			database.AccumulateTWUPartition(i, twu)
			return nil
		})
	}
	g.Wait() // no partition goroutine returns an error
	return twu
}

// renameDatabase rewrites every transaction's items through bijection,
// concurrently across partitions (bijection is read-only once built, so
// partitions never contend), then drops transactions left empty.
func renameDatabase(database *db.Database, bijection *items.Bijection) {
	var g errgroup.Group
	for i := 0; i < database.NumPartitions(); i++ {
		i := i
		g.Go(func() error {
			database.RenamePartition(i, bijection)
			return nil
		})
	}
	g.Wait()
	database.DropEmpty()
}

// sortAndRepartition implements spec.md §4.H step 4: a single global
// reverse-lexicographic sort (so transactions with identical tails end
// up adjacent, which is what makes calcUtilityAndNextDB's transaction
// merging profitable), followed by partseq's own balanced_partitions /
// repartition (spec.md §4.E) over the now-sorted flat order. Because
// balanced_partitions walks contiguous spans of that order rather than
// round-robining by index, adjacent duplicates stay together — a
// balanced-by-index round-robin would scatter them and defeat the
// sort's whole purpose.
func sortAndRepartition(database *db.Database, n int) *db.Database {
	all := make([]*txn.Transaction, 0, database.Len())
	database.Do(func(_ int, t *txn.Transaction) { all = append(all, t) })

	sort.Slice(all, func(i, j int) bool { return reverseLexLess(all[i], all[j]) })

	sorted := db.New(1)
	for _, t := range all {
		sorted.PushBack(0, t)
	}

	ranges := sorted.BalancedPartitions(n)
	sorted.Repartition(ranges, partseq.DefaultMove[*txn.Transaction])
	return sorted
}

// reverseLexLess orders by the item sequence read from the end backward,
// so transactions sharing a common suffix (the part searchX's extension
// loop actually inspects) sort next to each other regardless of what
// precedes that suffix.
func reverseLexLess(a, b *txn.Transaction) bool {
	na, nb := a.Len(), b.Len()
	n := na
	if nb < n {
		n = nb
	}
	for i := 0; i < n; i++ {
		ia := a.ItemAt(na - 1 - i)
		ib := b.ItemAt(nb - 1 - i)
		if ia != ib {
			return ia < ib
		}
	}
	return na < nb
}

// accumulateFirstSU runs spec.md §4.H step 5 concurrently across
// partitions: for each transaction, a reversed running sum of utilities
// is folded into SU[item] at every position, atomically. su must already
// cover [1, numDenseItems].
func accumulateFirstSU(database *db.Database, su *bins.Array) {
	var g errgroup.Group
	for i := 0; i < database.NumPartitions(); i++ {
		i := i
		g.Go(func() error {
			for _, t := range database.Partition(i) {
				var running txn.Utility
				t.ReverseDo(func(item txn.Item, utility txn.Utility) {
					running += utility
					su.AddSUAtomic(uint32(item), uint64(running))
				})
			}
			return nil
		})
	}
	g.Wait()
}

// itemsToExplore derives spec.md §4.H step 6's SU-pruned candidate list
// from the first-SU bin array: every dense item id whose SU meets
// minUtil, in ascending dense-id (ascending-TWU) order.
func itemsToExplore(su *bins.Array, numDenseItems uint32, minUtil uint64) []uint32 {
	var out []uint32
	for i := uint32(1); i <= numDenseItems; i++ {
		if su.SU(i) >= minUtil {
			out = append(out, i)
		}
	}
	return out
}
