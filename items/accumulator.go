// Package items implements the item-space support structures spec.md
// §4.H's rename pass needs: a dense transaction-weighted-utilization
// accumulator over raw item ids, and the old-id/new-id bijection the
// rename step builds from it.
//
// The bijection's lookup side is grounded on the teacher's fixed-
// capacity Robin Hood hash map (localidx/hash.go) — Put/Get here follow
// its displacement algorithm verbatim, generalized only in that a
// Bijection additionally keeps the reverse (dense-id -> raw-id) array a
// Hash alone does not provide.
package items

import "sync/atomic"

// DenseAccumulator sums a uint64 quantity per raw item id in a flat
// array. Item ids in EFIM inputs are small dense-ish integers assigned
// by the source dataset, so a flat array beats a hash map here even
// though the bijection below needs one.
type DenseAccumulator struct {
	sums []uint64
}

// NewDenseAccumulator returns an accumulator sized for raw item ids in
// [0, maxItem].
func NewDenseAccumulator(maxItem uint32) *DenseAccumulator {
	return &DenseAccumulator{sums: make([]uint64, maxItem+1)}
}

// Add adds v to item's running sum, growing the backing array if item
// exceeds the capacity NewDenseAccumulator was given (a dataset's declared max item id
// can undercount; grow rather than panic).
func (a *DenseAccumulator) Add(item uint32, v uint64) {
	a.ensure(item)
	a.sums[item] += v
}

// AddAtomic adds v into item's running sum with an atomic fetch-add, for
// the concurrent TWU/first-SU reduction passes (spec.md §5: "updated by
// multiple tasks; MUST use atomic fetch-add"). Unlike Add, it never grows
// the backing array — growing while other goroutines may be adding
// concurrently would race, so callers must presize via NewDenseAccumulator
// from a prior sequential scan before fanning out.
func (a *DenseAccumulator) AddAtomic(item uint32, v uint64) {
	atomic.AddUint64(&a.sums[item], v)
}

func (a *DenseAccumulator) ensure(item uint32) {
	if int(item) < len(a.sums) {
		return
	}
	grown := make([]uint64, item+1)
	copy(grown, a.sums)
	a.sums = grown
}

// Get returns item's running sum (0 if never added).
func (a *DenseAccumulator) Get(item uint32) uint64 {
	if int(item) >= len(a.sums) {
		return 0
	}
	return a.sums[item]
}

// MaxItem returns the highest raw item id the accumulator has capacity
// for (not necessarily one that was ever added).
func (a *DenseAccumulator) MaxItem() uint32 { return uint32(len(a.sums)) - 1 }

// Do iterates every (item, sum) pair, including items whose sum is zero.
func (a *DenseAccumulator) Do(fn func(item uint32, sum uint64)) {
	for item, sum := range a.sums {
		fn(uint32(item), sum)
	}
}
