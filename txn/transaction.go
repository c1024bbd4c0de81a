// Package txn implements the Transaction data model from spec.md §3/§4.F:
// a compact, sorted (Item, Utility) sequence with the two running
// aggregates (transaction utility, prefix utility) EFIM's projection step
// needs, plus the copy-on-write discipline that lets sibling branches
// share the same underlying storage until a Merge forces a copy.
//
// Storage is struct-of-arrays (parallel Items/Utils slices), the layout
// the teacher uses for its own hot per-element records
// (router/ticksoa.go's tickSoA) and the natural fit for the binary
// searches and suffix scans §4.H's search core runs over every
// transaction.
package txn

import (
	"errors"
	"sync/atomic"
)

// Item is a positive item identifier. 0 is reserved as an invalid/absent
// sentinel, matching the convention the teacher's fixed-capacity hash
// maps (localidx, pairidx) use for an empty slot.
type Item uint32

// Utility is a non-negative 64-bit utility value.
type Utility uint64

// ErrNotExclusive is returned by Merge when the receiver's payload is
// still aliased by another Transaction view; the caller must Clone first
// (spec.md §4.F: "Callers must ensure the merged-into transaction is
// uniquely owned").
var ErrNotExclusive = errors.New("txn: merge target is not exclusively owned")

// ErrExtensionMismatch is returned by Merge when the two transactions'
// item sequences differ.
var ErrExtensionMismatch = errors.New("txn: extensions differ")

// payload is the shared, (conceptually) immutable backing store. Multiple
// Transaction views may point at the same payload; refcount tracks how
// many views currently alias it, purely to decide whether Merge may
// mutate in place or must Clone first.
type payload struct {
	items   []Item
	utils   []Utility
	refcnt  int32
}

// Transaction is a logical view over a payload: a start offset plus the
// two aggregates spec.md §3 requires. Projection only ever adjusts this
// view — it never copies — which is what makes sibling projections cheap.
type Transaction struct {
	p          *payload
	start      int
	txUtil     Utility
	prefixUtil Utility
}

// NewBuilder returns an owned, empty Transaction with capacity reserved
// for n (item, utility) pairs, ready for Append. Used by parsers and by
// any call site that materializes a genuinely new transaction rather
// than projecting/merging an existing one.
func NewBuilder(capacity int) *Transaction {
	return &Transaction{
		p: &payload{
			items:  make([]Item, 0, capacity),
			utils:  make([]Utility, 0, capacity),
			refcnt: 1,
		},
	}
}

// Append adds one (item, utility) pair. The caller is responsible for
// maintaining strictly-increasing item order (spec.md §3 invariant);
// Append does not sort. Appending beyond the reserved capacity panics —
// that is an InvariantViolation per spec.md §7, not a recoverable error,
// since it means a call site mis-sized its reservation.
func (t *Transaction) Append(item Item, utility Utility) {
	if len(t.p.items) == cap(t.p.items) {
		panic("txn: Append exceeds reserved capacity")
	}
	t.p.items = append(t.p.items, item)
	t.p.utils = append(t.p.utils, utility)
	t.txUtil += utility
}

// Len returns the number of (item, utility) pairs visible from this
// view's current start offset.
func (t *Transaction) Len() int { return len(t.p.items) - t.start }

// ItemAt / UtilityAt index relative to the current view (0 == the first
// still-visible element).
func (t *Transaction) ItemAt(i int) Item       { return t.p.items[t.start+i] }
func (t *Transaction) UtilityAt(i int) Utility { return t.p.utils[t.start+i] }

// TransactionUtility / PrefixUtility are the two running aggregates.
func (t *Transaction) TransactionUtility() Utility { return t.txUtil }
func (t *Transaction) PrefixUtility() Utility      { return t.prefixUtil }

// TotalUtility is transaction_utility + prefix_utility. On a transaction
// that has not been projected it equals the transaction's own utility;
// Merge sums it; Projection keeps it only when the pivot is the view's
// first element.
func (t *Transaction) TotalUtility() Utility { return t.txUtil + t.prefixUtil }

// Do iterates (item, utility) pairs in ascending item order from the
// current view.
func (t *Transaction) Do(fn func(item Item, utility Utility)) {
	for i := t.start; i < len(t.p.items); i++ {
		fn(t.p.items[i], t.p.utils[i])
	}
}

// ReverseDo iterates in descending item order — the direction
// calcFirstSU and calcUpperBoundsImpl need (spec.md §4.H steps 5, and
// searchX step 2).
func (t *Transaction) ReverseDo(fn func(item Item, utility Utility)) {
	for i := len(t.p.items) - 1; i >= t.start; i-- {
		fn(t.p.items[i], t.p.utils[i])
	}
}

// BinarySearch finds item x among the still-visible elements, returning
// its view-relative index and true, or (-1, false) if absent.
func (t *Transaction) BinarySearch(x Item) (int, bool) {
	items := t.p.items[t.start:]
	lo, hi := 0, len(items)
	for lo < hi {
		mid := (lo + hi) / 2
		switch {
		case items[mid] == x:
			return mid, true
		case items[mid] < x:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return -1, false
}

// EraseIf removes every element for which pred returns true, compacting
// the view in place. Only valid on an exclusively owned payload — callers
// must Clone first if the transaction may be aliased, exactly like Merge.
func (t *Transaction) EraseIf(pred func(item Item, utility Utility) bool) error {
	if !t.Exclusive() {
		return ErrNotExclusive
	}
	items := t.p.items[t.start:]
	utils := t.p.utils[t.start:]
	w := 0
	for r := 0; r < len(items); r++ {
		if pred(items[r], utils[r]) {
			continue
		}
		items[w] = items[r]
		utils[w] = utils[r]
		w++
	}
	t.p.items = items[:w]
	t.p.utils = utils[:w]
	t.start = 0
	return nil
}

// Exclusive reports whether no other Transaction view currently shares
// this payload.
func (t *Transaction) Exclusive() bool { return atomic.LoadInt32(&t.p.refcnt) == 1 }

// Projection returns a new logical view starting after pivot (a
// view-relative index), recomputing both aggregates per spec.md §4.F:
// the utility of every element at-or-before pivot leaves
// transaction_utility, and only the pivot's own utility is added to
// prefix_utility, since the pivot is the item that extends the prefix.
// Elements between the old start and pivot are skipped: their utility
// is dropped from both aggregates, so TotalUtility() is unchanged only
// when pivot is the view's first element.
func (t *Transaction) Projection(pivot int) *Transaction {
	var upToPivot Utility
	for i := t.start; i <= t.start+pivot; i++ {
		upToPivot += t.p.utils[i]
	}
	atomic.AddInt32(&t.p.refcnt, 1)
	return &Transaction{
		p:          t.p,
		start:      t.start + pivot + 1,
		txUtil:     t.txUtil - upToPivot,
		prefixUtil: t.prefixUtil + t.p.utils[t.start+pivot],
	}
}

// Release drops this view's claim on its payload. Call sites that take a
// Projection or Clone and later discard it without merging should call
// Release so Exclusive() reflects reality for the next Merge decision.
func (t *Transaction) Release() {
	atomic.AddInt32(&t.p.refcnt, -1)
}

// CompareExtension reports whether two transactions have identical item
// sequences from their respective current views onward (utilities
// ignored) — the precondition spec.md §4.F requires before Merge.
func (t *Transaction) CompareExtension(other *Transaction) bool {
	if t.Len() != other.Len() {
		return false
	}
	a := t.p.items[t.start:]
	b := other.p.items[other.start:]
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Merge element-wise adds other's utilities (and both aggregates) into
// t. t must be exclusively owned; CompareExtension(other) must already
// hold. Neither precondition is silently fixed up — violating either is
// an InvariantViolation (spec.md §7).
func (t *Transaction) Merge(other *Transaction) error {
	if !t.Exclusive() {
		return ErrNotExclusive
	}
	if !t.CompareExtension(other) {
		return ErrExtensionMismatch
	}
	a := t.p.utils[t.start:]
	b := other.p.utils[other.start:]
	for i := range a {
		a[i] += b[i]
	}
	t.txUtil += other.txUtil
	t.prefixUtil += other.prefixUtil
	return nil
}

// Clone materializes an owned, exclusive copy of the currently visible
// suffix, with start reset to 0. This is the one place actual copying
// happens — spec.md §3's "sibling projections never deep-copy until a
// write (merge) forces it."
func (t *Transaction) Clone() *Transaction {
	n := t.Len()
	items := make([]Item, n)
	utils := make([]Utility, n)
	copy(items, t.p.items[t.start:])
	copy(utils, t.p.utils[t.start:])
	return &Transaction{
		p: &payload{
			items:  items,
			utils:  utils,
			refcnt: 1,
		},
		txUtil:     t.txUtil,
		prefixUtil: t.prefixUtil,
	}
}

// BytesWeight approximates this transaction's memory footprint, the
// default per-element "weight" spec.md §3 says the partitioned sequence
// uses for its running-sum index.
func (t *Transaction) BytesWeight() uint64 {
	return uint64(t.Len()) * (4 + 8)
}
