// Package partseq implements the generic partitioned sequence from
// spec.md §3/§4.E: a slice of element partitions, each carrying a
// running prefix-sum of a caller-supplied per-element weight, so a
// scheduler can split work by weight instead of by raw element count.
//
// Grounded on the teacher's ring buffers (ring/ring.go), which keep a
// similar per-partition write cursor and size accounting, generalized
// here to N partitions and a generic element type via Go 1.24 type
// parameters instead of the teacher's fixed element type.
package partseq

import "sort"

// Weigher returns the weight of one element, used to keep each
// partition's running sum current.
type Weigher[T any] func(T) uint64

// Sequence is a partitioned, weight-tracked slice of T.
type Sequence[T any] struct {
	parts  [][]T
	sums   []uint64
	weight Weigher[T]
}

// New returns an empty Sequence with n partitions.
func New[T any](n int, weight Weigher[T]) *Sequence[T] {
	if n < 1 {
		n = 1
	}
	return &Sequence[T]{
		parts:  make([][]T, n),
		sums:   make([]uint64, n),
		weight: weight,
	}
}

// NumPartitions reports how many partitions the sequence currently has.
func (s *Sequence[T]) NumPartitions() int { return len(s.parts) }

// Partition returns the elements of partition i directly; callers must
// not retain the slice across a mutating call (PushBack, EraseIf,
// Repartition all may reallocate).
func (s *Sequence[T]) Partition(i int) []T { return s.parts[i] }

// PartitionWeight returns partition i's running weight sum.
func (s *Sequence[T]) PartitionWeight(i int) uint64 { return s.sums[i] }

// Len returns the total element count across all partitions.
func (s *Sequence[T]) Len() int {
	n := 0
	for _, p := range s.parts {
		n += len(p)
	}
	return n
}

// TotalWeight returns the sum of every partition's running weight.
func (s *Sequence[T]) TotalWeight() uint64 {
	var total uint64
	for _, w := range s.sums {
		total += w
	}
	return total
}

// PushBack appends v to partition i and updates its running sum.
func (s *Sequence[T]) PushBack(i int, v T) {
	s.parts[i] = append(s.parts[i], v)
	s.sums[i] += s.weight(v)
}

// LightestPartition returns the index of the partition with the
// smallest current weight sum — the target PushBack should use when the
// caller wants round-robin-by-weight rather than round-robin-by-index
// placement (spec.md §4.E "balanced assignment").
func (s *Sequence[T]) LightestPartition() int {
	best := 0
	for i := 1; i < len(s.sums); i++ {
		if s.sums[i] < s.sums[best] {
			best = i
		}
	}
	return best
}

// Do iterates every element across every partition, partition order then
// within-partition order — the flat iterator spec.md §4.E requires.
func (s *Sequence[T]) Do(fn func(partition int, v T)) {
	for i, p := range s.parts {
		for _, v := range p {
			fn(i, v)
		}
	}
}

// EraseIf removes every element for which pred returns true from every
// partition, recomputing each partition's weight sum from scratch.
func (s *Sequence[T]) EraseIf(pred func(T) bool) {
	for i, p := range s.parts {
		w := 0
		for r := 0; r < len(p); r++ {
			if pred(p[r]) {
				continue
			}
			p[w] = p[r]
			w++
		}
		s.parts[i] = p[:w]
		s.recompute(i)
	}
}

func (s *Sequence[T]) recompute(i int) {
	var sum uint64
	for _, v := range s.parts[i] {
		sum += s.weight(v)
	}
	s.sums[i] = sum
}

// Merge appends other's elements into the matching partition index of s
// (partition counts must match) and recomputes weight sums.
func (s *Sequence[T]) Merge(other *Sequence[T]) {
	for i, p := range other.parts {
		s.parts[i] = append(s.parts[i], p...)
		s.sums[i] += other.sums[i]
	}
}

// flatElem pairs a retained element with the index of the partition it
// was read from, the "src" Repartition's move_fn hook needs.
type flatElem[T any] struct {
	v   T
	src int
}

// flatWithPrefix returns every element in Do's flat iteration order
// alongside prefix[i], the running weight sum of elements [0, i) — the
// table balancedPartitions's partition_point walk searches.
func (s *Sequence[T]) flatWithPrefix() ([]flatElem[T], []uint64) {
	flat := make([]flatElem[T], 0, s.Len())
	for i, p := range s.parts {
		for _, v := range p {
			flat = append(flat, flatElem[T]{v: v, src: i})
		}
	}
	prefix := make([]uint64, len(flat)+1)
	for i, e := range flat {
		prefix[i+1] = prefix[i] + s.weight(e.v)
	}
	return flat, prefix
}

// Range is a contiguous span [Start, End) of indices into the flat
// iteration order Do produces.
type Range struct {
	Start, End int
}

// Shrink redistributes every element currently held into newP partitions
// by round-robin over the flat iteration order (spec.md §4.E
// "shrink(P'): redistribute into P' partitions by round-robin"), then
// replaces the sequence's own partitions with the result.
func (s *Sequence[T]) Shrink(newP int) {
	if newP < 1 {
		newP = 1
	}
	next := New[T](newP, s.weight)
	i := 0
	s.Do(func(_ int, v T) {
		next.PushBack(i%newP, v)
		i++
	})
	s.parts = next.parts
	s.sums = next.sums
}

// BalancedPartitions returns p contiguous sub-ranges of the flat
// iteration order, each of approximately equal total weight (spec.md
// §4.E "balanced split"): repeatedly partition_point over the running
// weight prefix sum so each of the p chunks has weight >= total/p, with
// the last chunk absorbing whatever remains.
func (s *Sequence[T]) BalancedPartitions(p int) []Range {
	if p < 1 {
		p = 1
	}
	flat, prefix := s.flatWithPrefix()
	n := len(flat)
	ranges := make([]Range, p)
	if n == 0 {
		return ranges
	}
	total := prefix[n]
	start := 0
	for k := 0; k < p-1; k++ {
		target := total * uint64(k+1) / uint64(p)
		idx := sort.Search(n+1, func(i int) bool { return prefix[i] >= target })
		if idx < start {
			idx = start
		}
		if idx > n {
			idx = n
		}
		ranges[k] = Range{Start: start, End: idx}
		start = idx
	}
	ranges[p-1] = Range{Start: start, End: n}
	return ranges
}

// MoveFn re-homes one element, read from partition srcPartition of the
// original sequence, into partition destPartition of dest — the hook
// spec.md §4.E's repartition gives callers so a move across a NUMA
// boundary can clone storage instead of just reassigning it.
type MoveFn[T any] func(dest *Sequence[T], elem T, srcPartition, destPartition int)

// DefaultMove re-homes elem unchanged — the move_fn to pass when no
// cross-partition cloning is needed.
func DefaultMove[T any](dest *Sequence[T], elem T, srcPartition, destPartition int) {
	dest.PushBack(destPartition, elem)
}

// Repartition redistributes the sequence's elements into len(ranges) new
// partitions: ranges[i] names the contiguous span of the flat iteration
// order that becomes new partition i. moveFn re-homes each element
// individually (spec.md §4.E "repartition(ranges, move_fn)"), so a
// caller whose partitions are NUMA-affine can clone across that
// boundary rather than move bare.
func (s *Sequence[T]) Repartition(ranges []Range, moveFn MoveFn[T]) {
	flat, _ := s.flatWithPrefix()
	next := New[T](len(ranges), s.weight)
	for dest, r := range ranges {
		end := r.End
		if end > len(flat) {
			end = len(flat)
		}
		for i := r.Start; i < end; i++ {
			e := flat[i]
			moveFn(next, e.v, e.src, dest)
		}
	}
	s.parts = next.parts
	s.sums = next.sums
}
