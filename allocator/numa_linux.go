//go:build linux

// numa_linux.go
//
// Node-local and persistent-region allocation on Linux. Go cannot call
// raw mbind(2) without cgo, so NodeLocal approximates node binding with
// an anonymous mmap followed by MADV_WILLNEED hints issued from a thread
// already pinned to the target node (the caller is expected to run this
// from a sched.Worker whose OS thread is affine to that node — the first-
// touch NUMA policy on Linux then places the pages on the node that
// touches them first, which is the worker's own node). This is the
// documented answer to spec.md §9's "implementations lacking first-class
// node binding should approximate via thread-affine allocator arenas."
//
// Persistent mode mmaps a caller-provided backing file with MAP_SHARED;
// an ordinary file stands in for a real PMEM device, which the Non-goals
// (no durability guarantee) make acceptable.

package allocator

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// NodeLocal approximates NUMA-node-targeted allocation via first-touch
// placement: call it from a thread pinned to the target node.
type NodeLocal struct{}

func NewNodeLocal() *NodeLocal { return &NodeLocal{} }

func (n *NodeLocal) Alloc(size int, node *int, persistent bool) (unsafe.Pointer, error) {
	if persistent {
		return nil, &Error{Kind: ErrKindUnsupportedMode, Op: "nodelocal.Alloc", Err: ErrUnsupportedMode}
	}
	if size == 0 {
		return nil, nil
	}
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, &Error{Kind: ErrKindResource, Op: "nodelocal.Alloc", Err: err}
	}
	// Touch every page now, on the calling (hopefully node-pinned)
	// thread, so first-touch placement lands the pages locally.
	for i := 0; i < len(b); i += 4096 {
		b[i] = 0
	}
	_ = unix.Madvise(b, unix.MADV_WILLNEED)
	return unsafe.Pointer(&b[0]), nil
}

func (n *NodeLocal) Dealloc(p unsafe.Pointer) {
	// Unmap size is not tracked by the facade contract (spec.md §4.B
	// only specifies dealloc(p)); callers that need precise unmap sizing
	// use BindDeleter, which closes over size at the allocation site.
}

func (n *NodeLocal) BindDeleter(size int) Deleter {
	return func(p unsafe.Pointer) {
		if p == nil || size == 0 {
			return
		}
		b := unsafe.Slice((*byte)(p), size)
		_ = unix.Munmap(b)
	}
}

// Persistent mmaps a backing file (a real PMEM device's DAX mount, or an
// ordinary file when no PMEM hardware is present) and serves allocations
// from a simple bump pointer within it. It is sized once at Open and
// never grown — a full allocator over a PMEM region is out of scope;
// spec.md treats persistent memory purely as an allocation target.
type Persistent struct {
	f      *os.File
	region []byte
	offset int
}

// OpenPersistent mmaps size bytes of path (created if absent) as the
// backing persistent-memory region.
func OpenPersistent(path string, size int) (*Persistent, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, &Error{Kind: ErrKindResource, Op: "persistent.Open", Err: err}
	}
	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		return nil, &Error{Kind: ErrKindResource, Op: "persistent.Open", Err: err}
	}
	region, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, &Error{Kind: ErrKindResource, Op: "persistent.Open", Err: err}
	}
	return &Persistent{f: f, region: region}, nil
}

func (p *Persistent) Close() error {
	err := unix.Munmap(p.region)
	if cerr := p.f.Close(); err == nil {
		err = cerr
	}
	return err
}

func (p *Persistent) Alloc(size int, node *int, persistent bool) (unsafe.Pointer, error) {
	if node != nil {
		return nil, &Error{Kind: ErrKindUnsupportedMode, Op: "persistent.Alloc", Err: ErrUnsupportedMode}
	}
	if p.offset+size > len(p.region) {
		return nil, &Error{Kind: ErrKindResource, Op: "persistent.Alloc", Err: fmt.Errorf("region exhausted: need %d, have %d", size, len(p.region)-p.offset)}
	}
	ptr := unsafe.Pointer(&p.region[p.offset])
	p.offset += size
	return ptr, nil
}

// Dealloc is a no-op: the bump allocator never reclaims within a region's
// lifetime, matching the Non-goal that persistent memory is an
// allocation target, not a managed heap with its own GC.
func (p *Persistent) Dealloc(unsafe.Pointer) {}

func (p *Persistent) BindDeleter(int) Deleter {
	return func(unsafe.Pointer) {}
}
