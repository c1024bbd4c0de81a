// Package bins implements the UtilityBinArray from spec.md §4.G: a pair
// of dense, offset-biased LU/SU vectors indexed by item id, used by
// calcFirstSU and calcUpperBoundsImpl to accumulate per-item upper
// bounds without ever touching a hash map on the hot path.
//
// Grounded on the teacher's fixed-capacity, pre-sized scratch buffers
// (ring/ring.go's backing arrays): a bin array is sized once to
// [lo, hi] and reused across calls exactly like the teacher reuses a
// ring's backing slice rather than reallocating per message.
package bins

import "sync/atomic"

// Array holds LU and SU upper-bound accumulators for items in [lo, hi],
// offset-biased so index 0 corresponds to item lo.
type Array struct {
	lo, hi uint32
	lu     []uint64
	su     []uint64
}

// New allocates a fresh Array covering [lo, hi] inclusive. Used on
// scatter (cross-node) paths where thread-local reuse is unsafe per
// spec.md §4.G/§5.
func New(lo, hi uint32) *Array {
	a := &Array{}
	a.Reset(lo, hi)
	return a
}

// Reset rezeroes the array for [lo, hi], growing the backing slices if
// needed. This is the thread-local reuse path: a worker keeps one Array
// and Resets it for each new (prefix, DB) pair instead of allocating.
func (a *Array) Reset(lo, hi uint32) {
	a.lo, a.hi = lo, hi
	n := int(hi-lo) + 1
	if n < 0 {
		n = 0
	}
	if cap(a.lu) < n {
		a.lu = make([]uint64, n)
		a.su = make([]uint64, n)
		return
	}
	a.lu = a.lu[:n]
	a.su = a.su[:n]
	for i := range a.lu {
		a.lu[i] = 0
		a.su[i] = 0
	}
}

func (a *Array) idx(item uint32) int { return int(item - a.lo) }

// InRange reports whether item falls within this array's [lo, hi].
func (a *Array) InRange(item uint32) bool { return item >= a.lo && item <= a.hi }

// LU / SU read the current accumulated bound for item.
func (a *Array) LU(item uint32) uint64 { return a.lu[a.idx(item)] }
func (a *Array) SU(item uint32) uint64 { return a.su[a.idx(item)] }

// AddLU / AddSU add x into item's bound non-atomically — for call sites
// spec.md §4.H/§9 documents as single-threaded per Array (thread-local
// reuse, no suspension points inside the accumulating loop).
func (a *Array) AddLU(item uint32, x uint64) { a.lu[a.idx(item)] += x }
func (a *Array) AddSU(item uint32, x uint64) { a.su[a.idx(item)] += x }

// AddLUAtomic / AddSUAtomic add x into item's bound with atomic
// fetch-add, for the concurrent TWU/first-SU reduction passes
// (spec.md §5: "updated by multiple tasks; MUST use atomic fetch-add").
func (a *Array) AddLUAtomic(item uint32, x uint64) {
	p := &a.lu[a.idx(item)]
	atomic.AddUint64(p, x)
}
func (a *Array) AddSUAtomic(item uint32, x uint64) {
	p := &a.su[a.idx(item)]
	atomic.AddUint64(p, x)
}

// Add element-wise adds other into a. Caller must ensure both arrays
// share the same [lo, hi] offset; mismatched ranges are an
// InvariantViolation (spec.md §7), not silently handled.
func (a *Array) Add(other *Array) error {
	if a.lo != other.lo || a.hi != other.hi {
		return ErrOffsetMismatch
	}
	for i := range a.lu {
		a.lu[i] += other.lu[i]
		a.su[i] += other.su[i]
	}
	return nil
}

// Do iterates every item in [lo, hi] with its current LU/SU pair.
func (a *Array) Do(fn func(item uint32, lu, su uint64)) {
	for i := range a.lu {
		fn(a.lo+uint32(i), a.lu[i], a.su[i])
	}
}
