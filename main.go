// ════════════════════════════════════════════════════════════════════════════════════════════════
// NUMA-Aware Concurrent EFIM Miner - Main Entry Point
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Component: Main Entry Point & Run Orchestration
//
// Description:
//   Phased run driver: Bootstrap → Mining → Report.
//   Phase 1: Topology discovery and input parsing
//   Phase 2: TWU/rename/sort/first-SU passes (run inside the mining engine)
//   Phase 3: Recursive search, with signal-driven early shutdown
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"numahui/allocator"
	"numahui/dbfile"
	"numahui/efim"
	"numahui/hlog"
	"numahui/topology"
)

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "numahui:", err)
		os.Exit(2)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "numahui:", err)
		os.Exit(1)
	}
}

// runConfig holds every flag the driver accepts: input/output paths,
// minimum utility, partition count and scheduler type, plus the
// speculation knobs and allocator mode this repo adds. There is no
// thread-count flag; one worker runs per CPU the topology reports.
type runConfig struct {
	inputPath    string
	outputPath   string
	minUtil      uint64
	partitions   int
	allocMode    string
	registryDB   string
	jsonReport   string
	scheduler    string
	verifyUnique bool
	thresholds   efim.Thresholds
}

func parseFlags(args []string) (runConfig, error) {
	fs := flag.NewFlagSet("numahui", flag.ContinueOnError)
	cfg := runConfig{thresholds: efim.DefaultThresholds()}

	fs.StringVar(&cfg.inputPath, "input", "", "path to the transaction database text file (required)")
	fs.StringVar(&cfg.outputPath, "output", "", "path to write discovered HUIs to (required); .gz suffix gzip-compresses")
	fs.Uint64Var(&cfg.minUtil, "min-util", 0, "minimum utility threshold (required)")
	fs.IntVar(&cfg.partitions, "partitions", 0, "number of database partitions; 0 picks one per discovered CPU")
	fs.StringVar(&cfg.allocMode, "alloc", "heap", "allocator mode: heap | node-local")
	fs.StringVar(&cfg.registryDB, "registry", "", "optional sqlite path to record this run's summary")
	fs.StringVar(&cfg.jsonReport, "json-report", "", "optional path to write a JSON phase-timing report")
	fs.StringVar(&cfg.scheduler, "scheduler", "work-stealing", "scheduler type; only work-stealing is implemented")
	fs.BoolVar(&cfg.verifyUnique, "verify-unique", false, "run a debug-only post-run check that every emitted HUI is distinct")

	fs.Uint64Var(&cfg.thresholds.Alpha1, "alpha1", cfg.thresholds.Alpha1, "file-load scatter threshold, bytes (accepted, not read by any pass)")
	fs.Uint64Var(&cfg.thresholds.Beta1, "beta1", cfg.thresholds.Beta1, "rename/sort migration threshold, bytes (accepted, not read by any pass)")
	fs.Uint64Var(&cfg.thresholds.Beta2, "beta2", cfg.thresholds.Beta2, "first-SU migration threshold, bytes (accepted, not read by any pass)")
	fs.Uint64Var(&cfg.thresholds.Alpha3, "alpha3", cfg.thresholds.Alpha3, "recursive scatter threshold, bytes")
	fs.Uint64Var(&cfg.thresholds.Beta3, "beta3", cfg.thresholds.Beta3, "recursive migration threshold, bytes")
	fs.IntVar(&cfg.thresholds.StopScatterAllocDepth, "stop-scatter-depth", cfg.thresholds.StopScatterAllocDepth, "disable scatter beyond this recursion depth")
	fs.IntVar(&cfg.thresholds.StopTaskMigrationDepth, "stop-migration-depth", cfg.thresholds.StopTaskMigrationDepth, "disable migration beyond this recursion depth")

	if err := fs.Parse(args); err != nil {
		return runConfig{}, err
	}
	if cfg.inputPath == "" {
		return runConfig{}, fmt.Errorf("-input is required")
	}
	if cfg.outputPath == "" {
		return runConfig{}, fmt.Errorf("-output is required")
	}
	if cfg.minUtil == 0 {
		return runConfig{}, fmt.Errorf("-min-util is required and must be > 0")
	}
	if cfg.scheduler != "work-stealing" {
		return runConfig{}, fmt.Errorf("scheduler %q not supported; only work-stealing is implemented", cfg.scheduler)
	}
	return cfg, nil
}

func run(cfg runConfig) error {
	start := time.Now()

	// PHASE 1: topology discovery and input parsing.
	topo, err := topology.Discover()
	if err != nil {
		return fmt.Errorf("discover topology: %w", err)
	}

	parts := cfg.partitions
	if parts < 1 {
		parts = 0
		for _, n := range topo.Nodes() {
			parts += len(n.CPUIDs)
		}
		if parts < 1 {
			parts = 1
		}
	}

	database, err := dbfile.Parse(cfg.inputPath, parts)
	if err != nil {
		return fmt.Errorf("parse %s: %w", cfg.inputPath, err)
	}

	alloc, err := newAllocator(cfg.allocMode)
	if err != nil {
		return fmt.Errorf("init allocator: %w", err)
	}

	// PHASE 2/3: TWU/rename/sort/first-SU, then recursive search.
	// Signal handling mirrors the teacher's pattern — a background
	// goroutine that requests scheduler shutdown on SIGINT/SIGTERM
	// instead of draining application-level subsystems.
	engine := efim.NewEngine(topo, efim.Config{
		MinUtil:       cfg.minUtil,
		NumPartitions: parts,
		Thresholds:    cfg.thresholds,
		VerifyUnique:  cfg.verifyUnique,
	})
	engine.UseAllocator(alloc)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	stopped := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "numahui: received interrupt, stopping scheduler")
			engine.Stop()
		case <-stopped:
		}
	}()
	defer close(stopped)

	result, err := engine.Run(database)
	if err != nil {
		return fmt.Errorf("mine: %w", err)
	}

	if err := dbfile.Write(cfg.outputPath, result.HUIs); err != nil {
		return fmt.Errorf("write %s: %w", cfg.outputPath, err)
	}
	fmt.Fprintf(os.Stderr, "numahui: wrote %d HUIs to %s in %s\n", len(result.HUIs), cfg.outputPath, time.Since(start))

	if cfg.registryDB != "" {
		if err := recordRun(cfg, len(result.HUIs), time.Since(start)); err != nil {
			fmt.Fprintln(os.Stderr, "numahui: registry write failed:", err)
		}
	}
	if cfg.jsonReport != "" {
		config := map[string]any{
			"input":      cfg.inputPath,
			"min_util":   cfg.minUtil,
			"partitions": parts,
			"alloc_mode": cfg.allocMode,
		}
		if err := hlog.WriteJSONReport(cfg.jsonReport, result.Logger, config, len(result.HUIs)); err != nil {
			fmt.Fprintln(os.Stderr, "numahui: json report write failed:", err)
		}
	}
	return nil
}

func newAllocator(mode string) (allocator.Allocator, error) {
	switch mode {
	case "heap":
		return allocator.New(allocator.HeapMode, "", 0)
	case "node-local":
		return allocator.New(allocator.NodeLocalMode, "", 0)
	default:
		return nil, fmt.Errorf("unknown -alloc mode %q", mode)
	}
}

func recordRun(cfg runConfig, huiCount int, wall time.Duration) error {
	reg, err := hlog.OpenRegistry(cfg.registryDB)
	if err != nil {
		return err
	}
	defer reg.Close()
	_, err = reg.RecordRun(cfg.inputPath, cfg.minUtil, cfg.partitions, huiCount, wall)
	return err
}
