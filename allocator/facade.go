package allocator

import "fmt"

// New builds the Allocator for the requested mode. region/regionSize are
// only consulted for PersistentMode.
func New(mode Mode, region string, regionSize int) (Allocator, error) {
	switch mode {
	case HeapMode:
		return NewHeap(), nil
	case NodeLocalMode:
		return NewNodeLocal(), nil
	case PersistentMode:
		return OpenPersistent(region, regionSize)
	default:
		return nil, &Error{Kind: ErrKindUnsupportedMode, Op: "New", Err: fmt.Errorf("unknown mode %d", mode)}
	}
}
