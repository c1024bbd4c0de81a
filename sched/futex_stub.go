//go:build !linux

package sched

import "runtime"

// futexWait/futexWake fall back to cooperative yielding off Linux —
// there is no portable OS-park primitive, so a parked worker just
// yields the OS thread repeatedly until woken (checked by the caller's
// loop), matching the spirit if not the efficiency of a real futex.
func futexWait(addr *uint32, expect uint32) {
	for atomicLoad(addr) == expect {
		runtime.Gosched()
	}
}

func futexWake(addr *uint32, n int) {}
