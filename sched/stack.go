// Package sched implements the work-stealing scheduler from spec.md
// §4.D: per-CPU workers draining lock-free stacks, a global overflow
// stack, one spill stack per NUMA node, and the near-then-far stealing
// walk.
//
// Grounded on the teacher's ring buffers (ring/ring.go) for the
// single-producer/multi-consumer discipline and atomic-only hot path.
// Sleeping workers are tracked by per-node atomic counters in
// scheduler.go.
package sched

import (
	"sync/atomic"

	"numahui/task"
)

// Stack is a lock-free intrusive LIFO stack of *task.Task: Push is
// single-producer (the owning worker, or a poster handing a task
// directly to a sleeping worker); Pop is multi-consumer (the owner
// draining its own stack, or a stealer draining someone else's).
//
// This is the textbook Treiber stack. A node is never concurrently
// popped and re-pushed by two different goroutines without the popper
// having fully observed the pop's result first — every call site in
// this package pushes a task it either just created or just received
// exclusive ownership of via a successful Pop — so the classic ABA
// hazard (a stale head pointer becoming valid again after reuse) cannot
// arise here even without a tagged-pointer generation counter.
type Stack struct {
	head atomic.Pointer[task.Task]
}

// Push adds t to the top of the stack.
func (s *Stack) Push(t *task.Task) {
	for {
		old := s.head.Load()
		t.SetNext(old)
		if s.head.CompareAndSwap(old, t) {
			return
		}
	}
}

// Pop removes and returns the top of the stack, or nil if empty.
func (s *Stack) Pop() *task.Task {
	for {
		old := s.head.Load()
		if old == nil {
			return nil
		}
		next := old.Next()
		if s.head.CompareAndSwap(old, next) {
			return old
		}
	}
}

// Empty reports whether the stack currently has no tasks. Racy by
// nature (another goroutine may push/pop concurrently) — used only as a
// hint, never as a correctness gate.
func (s *Stack) Empty() bool { return s.head.Load() == nil }
