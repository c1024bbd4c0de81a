//go:build amd64 && !noasm

// cpuRelax emits the x86_64 PAUSE instruction, implemented in
// relax_amd64.s — a busy-wait back-off hint that keeps the core in
// userspace instead of actually sleeping, following the teacher's
// ring.cpuRelax split between a Go declaration and a tiny platform .s
// file.
package sched

//go:noescape
func cpuRelax()
