package bins

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResetZeroesAndReusesBackingSlice(t *testing.T) {
	a := New(10, 20)
	a.AddLU(15, 7)
	require.Equal(t, uint64(7), a.LU(15))

	a.Reset(10, 20)
	require.Equal(t, uint64(0), a.LU(15))
}

func TestAddLUAndAddSU(t *testing.T) {
	a := New(0, 4)
	a.AddLU(2, 3)
	a.AddLU(2, 4)
	a.AddSU(2, 1)
	require.Equal(t, uint64(7), a.LU(2))
	require.Equal(t, uint64(1), a.SU(2))
}

func TestAddElementWiseRequiresMatchingOffsets(t *testing.T) {
	a := New(0, 4)
	b := New(1, 5)
	err := a.Add(b)
	require.ErrorIs(t, err, ErrOffsetMismatch)

	c := New(0, 4)
	c.AddLU(0, 5)
	require.NoError(t, a.Add(c))
	require.Equal(t, uint64(5), a.LU(0))
}

func TestAtomicAddUnderConcurrency(t *testing.T) {
	a := New(0, 0)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.AddLUAtomic(0, 1)
		}()
	}
	wg.Wait()
	require.Equal(t, uint64(100), a.LU(0))
}

func TestInRange(t *testing.T) {
	a := New(5, 9)
	require.True(t, a.InRange(5))
	require.True(t, a.InRange(9))
	require.False(t, a.InRange(4))
	require.False(t, a.InRange(10))
}
