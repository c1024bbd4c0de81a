package task

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWaitGroupResumesOnZero(t *testing.T) {
	wg := NewWaitGroup()
	wg.Add(2)

	resumed := false
	inline := wg.TryAwait(func() { resumed = true })
	require.False(t, inline)
	require.False(t, resumed)

	wg.Done()
	require.False(t, resumed)

	wg.Done()
	require.True(t, resumed)
}

func TestWaitGroupTryAwaitInlineWhenNoChildren(t *testing.T) {
	wg := NewWaitGroup()
	ran := false
	inline := wg.TryAwait(func() { ran = true })
	require.True(t, inline)
	require.True(t, ran)
}

func TestWaitGroupFirstErrorWins(t *testing.T) {
	wg := NewWaitGroup()
	wg.Add(1)

	e1 := errors.New("first")
	e2 := errors.New("second")
	wg.Fail(e1)
	wg.Fail(e2)

	require.Equal(t, e1, wg.Err())
}

func TestWaitGroupIsReady(t *testing.T) {
	wg := NewWaitGroup()
	wg.Add(1)
	require.False(t, wg.IsReady())
	wg.TryAwait(func() {})
	require.True(t, wg.IsReady())
	wg.Done()
	require.False(t, wg.IsReady())
}
