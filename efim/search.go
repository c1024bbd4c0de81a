package efim

import (
	"sort"
	"strconv"

	"numahui/bins"
	"numahui/db"
	"numahui/partseq"
	"numahui/txn"
)

// runSearch implements spec.md §4.H's `search(prefix, DB, K, E)`: post
// searchX(j) for every j in E in parallel when |E| > 1; run the single
// branch inline, with no task overhead, when |E| == 1. done is called
// exactly once, synchronously or after every posted child has finished,
// with the first error any branch reported (or nil).
//
// DB is released (spec.md §5's "resource acquisition is scoped") once
// every branch that reads it has finished — that is what the attached
// continuation on the local wait-group does.
func (e *Engine) runSearch(prefix []uint32, DB *db.Database, K, E []uint32, depth, cpu int, done func(error)) {
	if len(E) == 0 {
		releaseDatabase(DB)
		done(nil)
		return
	}
	if len(E) == 1 {
		e.searchX(prefix, DB, K, E, 0, depth, cpu, func(err error) {
			releaseDatabase(DB)
			done(err)
		})
		return
	}

	node := 0
	if cpu >= 0 {
		if n, ok := e.topo.CPUToNode(cpu); ok {
			node = n
		}
	}
	dest := migrationDest(depth, DB.TotalWeight(), e.cfg.Thresholds.Beta3, e.cfg.Thresholds.StopTaskMigrationDepth, node)

	e.progress.Maybe(func() string {
		return "depth=" + strconv.Itoa(depth) + " branches=" + strconv.Itoa(len(E))
	})

	wg := newJoinGroup(len(E))
	for j := range E {
		j := j
		tk := newTask(func(execCPU int) {
			e.searchX(prefix, DB, K, E, j, depth, execCPU, wg.done)
		})
		e.sc.Post(tk, dest, cpu)
	}
	wg.await(func(err error) {
		releaseDatabase(DB)
		done(err)
	})
}

// searchX implements spec.md §4.H's `searchX(j, prefix, DB, K, E)`. It
// never returns a value directly — its result (emit, recurse, or stop)
// is delivered through done, since a further recursion means further
// asynchronous work this call must wait on before reporting completion.
func (e *Engine) searchX(prefix []uint32, DB *db.Database, K, E []uint32, j, depth, cpu int, done func(error)) {
	x := E[j]
	utilityPx, DBx, err := e.calcUtilityAndNextDB(x, DB, depth)
	if err != nil {
		done(err)
		return
	}

	oldName := e.bijection.Backward(x)
	nextPrefix := append(append(make([]uint32, 0, len(prefix)+1), prefix...), oldName)

	if uint64(utilityPx) >= e.cfg.MinUtil {
		e.bufferFor(cpu).Emit(nextPrefix, uint64(utilityPx))
	}

	kIdx := indexOf(K, x)
	rest := K[kIdx+1:]
	if len(rest) == 0 {
		releaseDatabase(DBx)
		done(nil)
		return
	}

	ub := bins.New(rest[0], rest[len(rest)-1])
	for p := 0; p < DBx.NumPartitions(); p++ {
		calcUpperBoundsImpl(DBx.Partition(p), rest, ub)
	}

	Kp := make([]uint32, 0, len(rest))
	var Ep []uint32
	for _, item := range rest {
		if ub.LU(item) < e.cfg.MinUtil {
			continue
		}
		Kp = append(Kp, item)
		if ub.SU(item) >= e.cfg.MinUtil {
			Ep = append(Ep, item)
		}
	}

	if len(Ep) == 0 {
		releaseDatabase(DBx)
		done(nil)
		return
	}

	e.runSearch(nextPrefix, DBx, Kp, Ep, depth+1, cpu, done)
}

// calcUtilityAndNextDB implements spec.md §4.H searchX step 1. It never
// suspends (no scheduler calls), which is what lets ub's caller reuse a
// thread-local UtilityBinArray on the non-scatter path (spec.md §5/§9).
func (e *Engine) calcUtilityAndNextDB(x uint32, DB *db.Database, depth int) (txn.Utility, *db.Database, error) {
	numParts := DB.NumPartitions()
	DBx := db.New(numParts)
	rotor := newScatterRotor(e.cfg.Thresholds.Alpha3, e.cfg.Thresholds.StopScatterAllocDepth, numParts)

	var utilityPx txn.Utility
	for p := 0; p < numParts; p++ {
		var prev *txn.Transaction
		for _, t := range DB.Partition(p) {
			idx, found := t.BinarySearch(txn.Item(x))
			if !found {
				continue
			}
			utilityPx += t.UtilityAt(idx) + t.PrefixUtility()
			if idx == t.Len()-1 {
				continue
			}

			proj := t.Projection(idx)
			switch {
			case prev != nil && prev.CompareExtension(proj):
				if !prev.Exclusive() {
					old := prev
					prev = old.Clone()
					old.Release()
				}
				if err := prev.Merge(proj); err != nil {
					return 0, nil, invariantErr("merge projected transaction", err)
				}
				proj.Release()
			default:
				if prev != nil {
					flushProjected(DBx, rotor, depth, p, prev)
				}
				prev = proj
			}
		}
		if prev != nil {
			flushProjected(DBx, rotor, depth, p, prev)
		}
	}
	return utilityPx, DBx, nil
}

// flushProjected hands one finished prevTransaction to its output
// database, consulting rotor for the scatter-allocate decision (spec.md
// §4.H searchX step 1: "route the clone of prevTransaction onto the next
// partition in rotation"). It uses the same move_fn contract
// partseq.Repartition's cross-partition re-homing hook uses: a flush
// that stays on its default partition moves the transaction as-is; one
// that scatters onto a different partition clones it first, so the
// partition it's leaving never ends up with a dangling alias into
// another partition's storage.
func flushProjected(DBx *db.Database, rotor *scatterRotor, depth, defaultPartition int, t *txn.Transaction) {
	dest := defaultPartition
	if p, ok := rotor.onFlush(depth, t.BytesWeight()); ok {
		dest = p
	}
	scatterMove(DBx.Sequence, t, defaultPartition, dest)
}

func scatterMove(dest *partseq.Sequence[*txn.Transaction], elem *txn.Transaction, srcPartition, destPartition int) {
	if destPartition != srcPartition {
		old := elem
		elem = elem.Clone()
		old.Release()
	}
	dest.PushBack(destPartition, elem)
}

// calcUpperBoundsImpl implements spec.md §4.H searchX step 2: walk one
// partition's transactions high-item-to-low, accumulating SU/LU for
// every item within the still-feasible tail.
func calcUpperBoundsImpl(transactions []*txn.Transaction, feasibleTail []uint32, ub *bins.Array) {
	for _, t := range transactions {
		total := uint64(t.TotalUtility())
		prefix := uint64(t.PrefixUtility())
		var suffix uint64
		t.ReverseDo(func(item txn.Item, utility txn.Utility) {
			suffix += uint64(utility)
			if !ub.InRange(uint32(item)) || !inSortedSet(feasibleTail, uint32(item)) {
				return
			}
			ub.AddSU(uint32(item), suffix+prefix)
			ub.AddLU(uint32(item), total)
		})
	}
}

// releaseDatabase drops this call's ownership claim on every transaction
// DB currently holds — the scoped release spec.md §5 requires once every
// branch reading DB has finished with it.
func releaseDatabase(DB *db.Database) {
	DB.Do(func(_ int, t *txn.Transaction) { t.Release() })
}

func indexOf(sorted []uint32, x uint32) int {
	return sort.Search(len(sorted), func(i int) bool { return sorted[i] >= x })
}

func inSortedSet(sorted []uint32, x uint32) bool {
	i := indexOf(sorted, x)
	return i < len(sorted) && sorted[i] == x
}
