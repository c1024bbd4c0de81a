//go:build !linux

package sched

// setAffinity is a no-op off Linux: the worker still runs, just without
// a CPU pin, matching spec.md §9's "approximate on platforms lacking
// the primitive" stance already taken in allocator/numa_stub.go.
func setAffinity(int) {}
