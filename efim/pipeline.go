package efim

import (
	"fmt"

	"numahui/allocator"
	"numahui/bins"
	"numahui/db"
	"numahui/dbfile"
	"numahui/hlog"
	"numahui/items"
	"numahui/sched"
	"numahui/topology"
)

// Config holds the one run's tunables: spec.md §6's "minimum utility,
// thread count [implied by topo], scheduler type [always work-stealing
// here]" plus the speculation knobs.
type Config struct {
	MinUtil       uint64
	NumPartitions int
	Thresholds    Thresholds
	// VerifyUnique gates a debug-only post-run check that every emitted
	// HUI is distinct, via hlog.VerifyUnique/DedupChecker. The search
	// tree already guarantees uniqueness by construction (spec.md §8),
	// so this exists to catch a regression, not because it's required
	// for correctness — off by default since it's an extra full pass
	// over the result set.
	VerifyUnique bool
}

// Engine owns one mining run's scheduler, logger, and item bijection.
// Built fresh per run — spec.md §9's "process-wide singleton" applies to
// the topology model, not to a single mining engine instance, so tests
// can construct several engines over different topologies without
// global state leaking between them.
type Engine struct {
	cfg       Config
	topo      *topology.Topology
	sc        *sched.Scheduler
	bijection *items.Bijection
	logger    *hlog.Logger
	buffers   map[int]*hlog.ThreadBuffer
	progress  *hlog.ProgressReporter
	scratch   *hlog.ThreadBuffer
}

// NewEngine builds an Engine with one worker and one HUI buffer per CPU
// in topo.
func NewEngine(topo *topology.Topology, cfg Config) *Engine {
	logger := hlog.New()
	buffers := make(map[int]*hlog.ThreadBuffer)
	for _, n := range topo.Nodes() {
		for _, cpu := range n.CPUIDs {
			buffers[cpu] = logger.NewThreadBuffer()
		}
	}
	return &Engine{
		cfg:      cfg,
		topo:     topo,
		sc:       sched.New(topo),
		logger:   logger,
		buffers:  buffers,
		progress: hlog.NewProgressReporter(2),
		scratch:  logger.NewThreadBuffer(),
	}
}

// bufferFor returns the HUI buffer for cpu, falling back to a shared
// scratch buffer for any caller not running on a tracked worker CPU
// (there is none once mining has started, since every searchX runs
// inside a task a worker popped — this exists only so test harnesses
// that call searchX directly without a full scheduler still work).
func (e *Engine) bufferFor(cpu int) *hlog.ThreadBuffer {
	if b, ok := e.buffers[cpu]; ok {
		return b
	}
	return e.scratch
}

// UseAllocator configures the per-worker node-local arena warmup
// spec.md §4.B describes. Must be called before Run.
func (e *Engine) UseAllocator(a allocator.Allocator) {
	e.sc.SetAllocator(a)
}

// Stop requests early shutdown of the run's scheduler — the run driver's
// signal handler calls this on SIGINT/SIGTERM, per spec.md §5's "shutdown
// is scheduler.Stop() only." A run stopped this way returns with
// whatever partial HUI set had already been emitted, no error.
func (e *Engine) Stop() {
	e.sc.Stop()
}

// Result is one completed mining run's output.
type Result struct {
	HUIs   []dbfile.HUI
	Logger *hlog.Logger
}

// Run executes the full spec.md §4.H pipeline against an already-parsed,
// partitioned database: TWU → rename → global sort → first-SU →
// recursive search, returning every emitted HUI.
//
// database must not be used by the caller afterward — ownership transfers
// in (it is consumed by rename/sort and ultimately released by the
// search tree).
func (e *Engine) Run(database *db.Database) (*Result, error) {
	if e.cfg.NumPartitions > 0 && database.NumPartitions() != e.cfg.NumPartitions {
		// database was built under a different partition count than this
		// engine's topology calls for (e.g. parsed once and handed to an
		// engine sized for a different node count) — spec.md §4.E's
		// shrink(P') round-robins it to the right count. A full balanced
		// resort isn't worth it here since sortAndRepartition rebalances
		// everything again once renaming finishes.
		database.Shrink(e.cfg.NumPartitions)
	}
	if database.Len() == 0 {
		return &Result{Logger: e.logger}, nil
	}

	e.logger.Mark("parse")

	twu := accumulateTWU(database)
	bijection := items.Build(twu, e.cfg.MinUtil)
	e.bijection = bijection
	if bijection.Len() == 0 {
		e.logger.Mark("done")
		return &Result{Logger: e.logger}, nil
	}

	renameDatabase(database, bijection)
	e.logger.Mark("rename")

	database = sortAndRepartition(database, e.cfg.NumPartitions)
	e.logger.Mark("sort")

	numDense := uint32(bijection.Len())
	su := bins.New(1, numDense)
	accumulateFirstSU(database, su)
	e.logger.Mark("first_su")

	K := denseRange(numDense)
	E := itemsToExplore(su, numDense, e.cfg.MinUtil)
	if len(E) == 0 {
		releaseDatabase(database)
		e.logger.Mark("done")
		return &Result{Logger: e.logger}, nil
	}

	e.sc.Start()
	done := make(chan error, 1)
	root := newTask(func(cpu int) {
		e.runSearch(nil, database, K, E, 0, cpu, func(err error) { done <- err })
	})
	e.sc.Post(root, sched.Any, -1)
	err := <-done
	e.sc.Stop()
	e.logger.Mark("done")
	if err != nil {
		return nil, err
	}

	huis := e.logger.Flush()
	if e.cfg.VerifyUnique {
		if dup, ok := hlog.VerifyUnique(huis); !ok {
			return nil, invariantErr("verify unique HUIs", fmt.Errorf("duplicate itemset %v", dup))
		}
	}
	return &Result{HUIs: huis, Logger: e.logger}, nil
}

func denseRange(n uint32) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = uint32(i) + 1
	}
	return out
}

// MinePath is the convenience entry point a run driver calls: parse the
// input file per spec.md §6, then run the pipeline over it.
func MinePath(path string, cfg Config, topo *topology.Topology) (*Result, error) {
	if cfg.NumPartitions < 1 {
		cfg.NumPartitions = 1
	}
	// spec.md §8 scenario 1: an empty input is zero HUIs and exit 0, not
	// an error — only a malformed line (already surfaced by dbfile.Parse
	// as an InputError) aborts before mining starts.
	database, err := dbfile.Parse(path, cfg.NumPartitions)
	if err != nil {
		return nil, inputErr("parse "+path, err)
	}
	e := NewEngine(topo, cfg)
	return e.Run(database)
}
