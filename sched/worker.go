package sched

import (
	"runtime"
	"sync"
	"sync/atomic"

	"numahui/task"
)

const spinBudget = 100 // spin-check iterations before OS-park, spec.md §4.D step 3

// nodeScratchBytes is the size of the warmup arena each worker touches
// on startup when the scheduler carries a configured Allocator — just
// enough pages that first-touch NUMA placement has something to bind to
// before the hot loop begins.
const nodeScratchBytes = 64 * 1024

// Worker owns one OS thread pinned to one logical CPU, and one local
// task stack. Grounded on ring.PinnedConsumer's pin-then-loop structure,
// generalized from a single ring buffer to the steal order spec.md §4.D
// specifies.
//
// state is a plain uint32 (not sync/atomic.Uint32) because futexWait
// needs this field's raw address to park the OS thread on it.
type Worker struct {
	id    int
	cpu   int
	node  int
	local Stack
	state uint32
	sched *Scheduler
}

func newWorker(id, cpu, node int, sc *Scheduler) *Worker {
	return &Worker{id: id, cpu: cpu, node: node, sched: sc}
}

// Post pushes t directly onto this worker's own stack. Used both by the
// worker itself (self-posting children) and by try_wake_up's
// before_notify hand-in.
func (w *Worker) Post(t *task.Task) { w.local.Push(t) }

// tryWakeUp attempts the Sleeping->Notified transition; on success it
// invokes beforeNotify(w) (typically a task push) before the futex
// wake, per spec.md §4.D. Returns whether the CAS succeeded.
func (w *Worker) tryWakeUp(beforeNotify func(*Worker)) bool {
	if !atomic.CompareAndSwapUint32(&w.state, stateSleeping, stateNotified) {
		return false
	}
	if beforeNotify != nil {
		beforeNotify(w)
	}
	futexWake(&w.state, 1)
	return true
}

// forceWakeUp unconditionally sets Notified and wakes, regardless of
// current state — used by stop() and by the node-n push-to-corresponding
// -worker fallback in Scheduler.Post.
func (w *Worker) forceWakeUp() {
	atomic.StoreUint32(&w.state, stateNotified)
	futexWake(&w.state, 1)
}

// run is the worker's main loop (spec.md §4.D "Worker contract"). It
// returns once Scheduler.Stop() has been observed and the local stack
// drained.
func (w *Worker) run(stop *atomic.Bool, wg *sync.WaitGroup) {
	runtime.LockOSThread()
	setAffinity(w.cpu)
	defer func() {
		runtime.UnlockOSThread()
		wg.Done()
	}()

	if w.sched.alloc != nil {
		if scratch, err := w.sched.alloc.Alloc(nodeScratchBytes, &w.node, false); err == nil && scratch != nil {
			defer w.sched.alloc.Dealloc(scratch)
		}
	}

	for {
		if t := w.local.Pop(); t != nil {
			t.Execute(w.cpu)
			continue
		}
		if t := w.sched.steal(w); t != nil {
			t.Execute(w.cpu)
			continue
		}
		if stop.Load() {
			return
		}
		if w.trySleep(stop) {
			continue
		}
		return
	}
}

// trySleep implements the spin-then-park half of the worker contract:
// CAS Running->Sleeping, spin-check for spinBudget iterations (yielding
// between checks), then OS-park on the state word. Returns false only
// when a stop was observed and nothing remains to process.
func (w *Worker) trySleep(stop *atomic.Bool) bool {
	if !atomic.CompareAndSwapUint32(&w.state, stateRunning, stateSleeping) {
		return true // state changed under us between checks; re-loop
	}
	for i := 0; i < spinBudget; i++ {
		if atomic.LoadUint32(&w.state) != stateSleeping {
			atomic.StoreUint32(&w.state, stateRunning)
			return true
		}
		if stop.Load() {
			atomic.StoreUint32(&w.state, stateRunning)
			return false
		}
		cpuRelax()
	}
	w.sched.noteSleeping(w.node, 1)
	futexWait(&w.state, stateSleeping)
	w.sched.noteSleeping(w.node, -1)
	atomic.CompareAndSwapUint32(&w.state, stateNotified, stateRunning)
	return !stop.Load() || !w.local.Empty()
}
