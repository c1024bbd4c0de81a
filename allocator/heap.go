package allocator

import "unsafe"

// Heap is the conventional-allocation mode: every call goes through the
// Go heap via make([]byte, size), and Dealloc is a no-op (the GC reclaims
// it). NodeLocal/Persistent requests made against a Heap are rejected —
// callers that need those modes must use the platform-specific
// implementations in numa_linux.go / numa_stub.go.
type Heap struct{}

// NewHeap returns the always-available Heap allocator.
func NewHeap() *Heap { return &Heap{} }

func (h *Heap) Alloc(size int, node *int, persistent bool) (unsafe.Pointer, error) {
	if node != nil || persistent {
		return nil, &Error{Kind: ErrKindUnsupportedMode, Op: "heap.Alloc", Err: ErrUnsupportedMode}
	}
	buf := make([]byte, size)
	if size == 0 {
		return nil, nil
	}
	return unsafe.Pointer(&buf[0]), nil
}

func (h *Heap) Dealloc(unsafe.Pointer) {}

func (h *Heap) BindDeleter(int) Deleter {
	return func(unsafe.Pointer) {}
}
