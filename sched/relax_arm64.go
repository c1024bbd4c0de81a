//go:build arm64 && !noasm

// cpuRelax emits the ARM64 YIELD instruction, implemented in
// relax_arm64.s.
package sched

//go:noescape
func cpuRelax()
