//go:build !linux

package allocator

import "unsafe"

// NodeLocal on non-Linux builds always fails fast, per spec.md §4.B:
// "requested but unsupported modes must fail fast with a clear error
// kind, not silently fall back."
type NodeLocal struct{}

func NewNodeLocal() *NodeLocal { return &NodeLocal{} }

func (n *NodeLocal) Alloc(int, *int, bool) (unsafe.Pointer, error) {
	return nil, &Error{Kind: ErrKindUnsupportedMode, Op: "nodelocal.Alloc", Err: ErrUnsupportedMode}
}
func (n *NodeLocal) Dealloc(unsafe.Pointer) {}
func (n *NodeLocal) BindDeleter(int) Deleter {
	return func(unsafe.Pointer) {}
}

// Persistent on non-Linux builds always fails fast to open.
type Persistent struct{}

func OpenPersistent(string, int) (*Persistent, error) {
	return nil, &Error{Kind: ErrKindUnsupportedMode, Op: "persistent.Open", Err: ErrUnsupportedMode}
}
func (p *Persistent) Close() error                           { return nil }
func (p *Persistent) Alloc(int, *int, bool) (unsafe.Pointer, error) {
	return nil, &Error{Kind: ErrKindUnsupportedMode, Op: "persistent.Alloc", Err: ErrUnsupportedMode}
}
func (p *Persistent) Dealloc(unsafe.Pointer) {}
func (p *Persistent) BindDeleter(int) Deleter {
	return func(unsafe.Pointer) {}
}
