package task

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExecuteRunsOnceAndClearsReady(t *testing.T) {
	var gotCPU int
	ran := 0
	tk := New(func(cpu int) {
		gotCPU = cpu
		ran++
	})
	require.True(t, tk.Ready())

	tk.Execute(7)
	require.Equal(t, 7, gotCPU)
	require.Equal(t, 1, ran)
	require.False(t, tk.Ready())
}

func TestSetNextAndNextRoundTrip(t *testing.T) {
	a := New(func(int) {})
	b := New(func(int) {})
	require.Nil(t, a.Next())
	a.SetNext(b)
	require.Same(t, b, a.Next())
}
