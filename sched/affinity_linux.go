//go:build linux

// affinity_linux.go pins the calling OS thread to one logical CPU via
// sched_setaffinity(2), adapted from ring/setaffinity_linux.go.
package sched

import "golang.org/x/sys/unix"

func setAffinity(cpu int) {
	if cpu < 0 {
		return
	}
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	_ = unix.SchedSetaffinity(0, &set)
}
