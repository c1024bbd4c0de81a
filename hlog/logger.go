// Package hlog implements the logger/reporting component from spec.md
// §4.I: per-thread append-only HUI buffers collected with no cross-
// thread coordination until a single-threaded final flush, plus the
// ambient observability surface (JSON report, run registry, rate-
// limited progress, optional dedup check) spec.md's "out of scope
// collaborator" notes leave to whatever glue code wires them in.
//
// Grounded on the teacher's per-core collection pattern
// (aggregator/aggregator.go's per-ring draining into one shared
// structure) generalized from "per CPU ring" to "per worker append
// buffer," since the logger here only ever appends (no priority
// ordering needed until flush).
package hlog

import (
	"sort"
	"sync"
	"time"

	"numahui/dbfile"
)

// Logger collects high-utility itemsets from any number of concurrent
// workers with no shared lock on the hot append path (each ThreadBuffer
// takes only its own mutex), and produces the final sorted report on
// Flush.
type Logger struct {
	mu      sync.Mutex // guards buffers slice growth only, not individual appends
	buffers []*ThreadBuffer
	start   time.Time
	points  []TimePoint
}

// ThreadBuffer is one worker's private append-only HUI collection.
type ThreadBuffer struct {
	mu   sync.Mutex // single-writer-per-thread in practice; kept for safety under misuse
	huis []dbfile.HUI
}

// TimePoint records a named phase boundary for the final report.
type TimePoint struct {
	Name string
	At   time.Duration
}

// New returns a Logger with its clock started.
func New() *Logger {
	return &Logger{start: time.Now()}
}

// NewThreadBuffer allocates a per-thread buffer a worker can append to
// without contending with any other worker. Call once per worker at
// startup and retain the handle.
func (l *Logger) NewThreadBuffer() *ThreadBuffer {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := &ThreadBuffer{}
	l.buffers = append(l.buffers, b)
	return b
}

// Emit appends one HUI to buf. This is the hot path: no global lock.
func (buf *ThreadBuffer) Emit(items []uint32, utility uint64) {
	buf.mu.Lock()
	buf.huis = append(buf.huis, dbfile.HUI{Items: append([]uint32(nil), items...), Utility: utility})
	buf.mu.Unlock()
}

// Mark records a named phase boundary relative to Logger creation —
// called only from efim's top-level fan-out points, never from
// calcUtilityAndNextDB/calcUpperBoundsImpl, preserving their no-suspend
// property.
func (l *Logger) Mark(name string) {
	l.mu.Lock()
	l.points = append(l.points, TimePoint{Name: name, At: time.Since(l.start)})
	l.mu.Unlock()
}

// Flush runs single-threaded after every worker has stopped (spec.md
// §4.I), concatenating every thread buffer into one sorted HUI slice.
// Sort order is by item sequence for determinism, which also makes the
// output diffable across runs and the natural sort for the dedup check.
func (l *Logger) Flush() []dbfile.HUI {
	var all []dbfile.HUI
	for _, b := range l.buffers {
		all = append(all, b.huis...)
	}
	sort.Slice(all, func(i, j int) bool { return lessItems(all[i].Items, all[j].Items) })
	return all
}

func lessItems(a, b []uint32) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// TimePoints returns the recorded phase boundaries, in recording order.
func (l *Logger) TimePoints() []TimePoint { return l.points }
