//go:build (!amd64 && !arm64) || noasm

// cpuRelax is a no-op on architectures without a dedicated spin-wait
// hint, or when assembly is disabled.
package sched

func cpuRelax() {}
