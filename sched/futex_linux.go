//go:build linux

// futex_linux.go implements the OS-park/OS-wake primitive spec.md §4.D
// needs for a worker's Sleeping state, directly over the futex(2)
// syscall via golang.org/x/sys/unix — the teacher has no futex use of
// its own, but this is the natural low-level primitive for exactly the
// "OS-park on the state word" / "futex-wake" contract spec.md specifies,
// and x/sys/unix is already a direct dependency for Mmap/Madvise in
// allocator/numa_linux.go and SchedSetaffinity above.
package sched

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Futex operation codes from linux/futex.h. x/sys/unix exposes the
// futex syscall number (unix.SYS_FUTEX) but not these op constants.
const (
	futexWaitOp = 0
	futexWakeOp = 1
)

// futexWait blocks while *addr == expect, or returns immediately if it
// has already changed.
func futexWait(addr *uint32, expect uint32) {
	for {
		_, _, errno := unix.Syscall6(
			unix.SYS_FUTEX,
			uintptr(unsafe.Pointer(addr)),
			uintptr(futexWaitOp),
			uintptr(expect),
			0, 0, 0,
		)
		if errno != unix.EAGAIN && errno != unix.EINTR {
			return
		}
		if v := atomicLoad(addr); v != expect {
			return
		}
	}
}

// futexWake wakes up to n threads parked on addr.
func futexWake(addr *uint32, n int) {
	_, _, _ = unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		uintptr(futexWakeOp),
		uintptr(n),
		0, 0, 0,
	)
}
