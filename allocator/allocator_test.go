package allocator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeapAllocRejectsNodeLocalRequest(t *testing.T) {
	h := NewHeap()
	n := 0
	_, err := h.Alloc(16, &n, false)
	require.Error(t, err)
	var aerr *Error
	require.ErrorAs(t, err, &aerr)
	require.Equal(t, ErrKindUnsupportedMode, aerr.Kind)
}

func TestHeapAllocReturnsUsableMemory(t *testing.T) {
	h := NewHeap()
	p, err := h.Alloc(64, nil, false)
	require.NoError(t, err)
	require.NotNil(t, p)
}

func TestNewUnknownModeFailsFast(t *testing.T) {
	_, err := New(Mode(99), "", 0)
	require.Error(t, err)
}
