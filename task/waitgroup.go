package task

import "sync/atomic"

// WaitGroup is a counter with an attached continuation, resumed exactly
// once when the counter reaches zero. Unlike sync.WaitGroup, a
// continuation can be attached lazily (TryAwait) and the last Done
// resumes it inline on whatever goroutine called Done — there is no
// blocking Wait().
//
// Created with initial count 1 (the "self" guard) so that a producer can
// Add children, then release its own guard via TryAwait without a race
// against a child finishing before all children have been added.
type WaitGroup struct {
	count uint32
	k     func()
	// err latches the first error reported by any child (spec.md §7:
	// "the root task's completion reports the first error"). Retried
	// writes after the first are no-ops.
	err atomic.Pointer[error]
}

// NewWaitGroup returns a WaitGroup with count 1.
func NewWaitGroup() *WaitGroup {
	return &WaitGroup{count: 1}
}

// Add increments the counter. Must happen-before the matching Done.
func (wg *WaitGroup) Add(n uint32) {
	atomic.AddUint32(&wg.count, n)
}

// Done decrements the counter. If it reaches zero and a continuation has
// been attached, the continuation runs inline on this goroutine.
func (wg *WaitGroup) Done() {
	if atomic.AddUint32(&wg.count, ^uint32(0)) == 0 {
		if k := wg.k; k != nil {
			k()
		}
	}
}

// Fail records err as the group's terminal error if none has been
// recorded yet, then calls Done. Intermediate tasks never retry (spec.md
// §7: "retry would double-enumerate HUIs"), so the first failure wins.
func (wg *WaitGroup) Fail(err error) {
	wg.err.CompareAndSwap(nil, &err)
	wg.Done()
}

// Err returns the first error recorded by Fail, or nil.
func (wg *WaitGroup) Err() error {
	if p := wg.err.Load(); p != nil {
		return *p
	}
	return nil
}

// TryAwait attaches k as the continuation, then releases the initial
// self-guard by calling Done. It returns whether k ran inline on this
// call (true) versus will run later on some child's Done (false). The
// caller must not touch wg again after a call that returns true, since a
// concurrent Done may have already freed whatever wg is embedded in.
func (wg *WaitGroup) TryAwait(k func()) bool {
	wg.k = k
	if atomic.AddUint32(&wg.count, ^uint32(0)) == 0 {
		k()
		return true
	}
	return false
}

// IsReady reports whether a continuation has been attached and the group
// has not yet reached zero.
func (wg *WaitGroup) IsReady() bool {
	return wg.k != nil && atomic.LoadUint32(&wg.count) != 0
}
