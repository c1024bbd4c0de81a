package efim

// Thresholds holds the five speculation knobs from spec.md §4.H, all
// expressed in weight units (bytes of projected data, txn.Transaction's
// BytesWeight), plus the two recursion-depth cutoffs that disable
// scatter/migration beyond a configured depth. Kept as a table rather
// than inline magic numbers, matching constants.go's texture elsewhere
// in this tree.
type Thresholds struct {
	// Alpha1 is the file-loading scatter knob (step 1). No pass reads
	// it: dbfile.Parse assigns lines to partitions round-robin in
	// arrival order, whatever the partition weights are.
	Alpha1 uint64
	// Beta1 is the rename/sort migration knob (step 2). No pass reads
	// it: the rename and sort passes run one goroutine per partition
	// and never migrate work between nodes.
	Beta1 uint64
	// Beta2 is the first-SU migration knob (step 2b). No pass reads it:
	// the first-SU pass runs one goroutine per partition and never
	// migrates work between nodes.
	Beta2 uint64
	// Alpha3 gates scatter-allocation of cloned projected transactions
	// during recursive search (step 3).
	Alpha3 uint64
	// Beta3 gates task migration at each depth of recursive search
	// (step 3).
	Beta3 uint64

	// StopScatterAllocDepth disables Alpha3 scatter beyond this depth.
	StopScatterAllocDepth int
	// StopTaskMigrationDepth disables Beta3 migration beyond this depth.
	StopTaskMigrationDepth int
}

// DefaultThresholds is a conservative starting point: scatter and
// migrate only for transactions/sub-ranges heavier than a few cache
// lines' worth of projected data, and stop bothering past a dozen levels
// of recursion where per-branch DB sizes are already small.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Alpha1:                 1 << 20, // 1 MiB; not read by any pass
		Beta1:                  1 << 16, // 64 KiB; not read by any pass
		Beta2:                  1 << 16,
		Alpha3:                 1 << 14, // 16 KiB cumulative clone weight before scattering
		Beta3:                  1 << 14,
		StopScatterAllocDepth:  12,
		StopTaskMigrationDepth: 16,
	}
}

// disableAll is the threshold set spec.md scenario 5 ("force scatter
// path... same HUI set... only timings differ") needs at the opposite
// extreme: every knob effectively off, so results can be diffed against
// a run with DefaultThresholds().
func disableAll() Thresholds {
	return Thresholds{
		Alpha1: ^uint64(0), Beta1: ^uint64(0), Beta2: ^uint64(0),
		Alpha3: ^uint64(0), Beta3: ^uint64(0),
		StopScatterAllocDepth: 0, StopTaskMigrationDepth: 0,
	}
}
