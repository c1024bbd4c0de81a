package sched

import "sync/atomic"

func atomicLoad(addr *uint32) uint32 { return atomic.LoadUint32(addr) }

// Worker states, spec.md §4.D: a worker is Running while actively
// draining/stealing, Sleeping once it has parked, and briefly Notified
// between a waker's CAS and the worker actually resuming.
const (
	stateRunning  uint32 = 0
	stateSleeping uint32 = 1
	stateNotified uint32 = 2
)
