package items

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDenseAccumulatorAddAndGrow(t *testing.T) {
	a := NewDenseAccumulator(2)
	a.Add(1, 10)
	a.Add(1, 5)
	a.Add(9, 3) // beyond initial capacity, forces grow
	require.Equal(t, uint64(15), a.Get(1))
	require.Equal(t, uint64(3), a.Get(9))
	require.Equal(t, uint64(0), a.Get(100))
}

func TestHashPutGetRoundTrip(t *testing.T) {
	h := newHash(16)
	for k := uint32(1); k <= 20; k++ {
		h.put(k, k*10)
	}
	for k := uint32(1); k <= 20; k++ {
		v, ok := h.get(k)
		require.True(t, ok)
		require.Equal(t, k*10, v)
	}
	_, ok := h.get(999)
	require.False(t, ok)
}

func TestBuildBijectionOrdersByAscendingTWU(t *testing.T) {
	twu := NewDenseAccumulator(5)
	twu.Add(1, 100)
	twu.Add(2, 300)
	twu.Add(3, 200)
	twu.Add(4, 10) // below threshold, pruned

	b := Build(twu, 50)
	require.Equal(t, 3, b.Len())

	id2, ok := b.Forward(2)
	require.True(t, ok)
	id3, ok := b.Forward(3)
	require.True(t, ok)
	id1, ok := b.Forward(1)
	require.True(t, ok)
	require.True(t, id1 < id3)
	require.True(t, id3 < id2)

	_, ok = b.Forward(4)
	require.False(t, ok)

	require.Equal(t, uint32(2), b.Backward(id2))
	require.True(t, b.Survives(2))
	require.False(t, b.Survives(4))
}
