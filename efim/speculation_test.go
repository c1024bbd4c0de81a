package efim

import (
	"testing"

	"github.com/stretchr/testify/require"

	"numahui/sched"
)

func TestMigrationDestPinsHeavyShallowWork(t *testing.T) {
	require.Equal(t, sched.ToNode(2), migrationDest(1, 100, 50, 10, 2))
}

func TestMigrationDestLeavesLightWorkUnpinned(t *testing.T) {
	require.Equal(t, sched.Any, migrationDest(1, 10, 50, 10, 2))
}

func TestMigrationDestIgnoresWeightPastStopDepth(t *testing.T) {
	require.Equal(t, sched.Any, migrationDest(11, 100, 50, 10, 2))
}

func TestScatterRotorStaysQuietBelowAlpha(t *testing.T) {
	r := newScatterRotor(100, 10, 3)
	_, ok := r.onFlush(0, 40)
	require.False(t, ok)
	_, ok = r.onFlush(0, 40)
	require.False(t, ok)
}

func TestScatterRotorRoundRobinsOnceAlphaCrossed(t *testing.T) {
	r := newScatterRotor(100, 10, 3)
	r.onFlush(0, 60)
	p1, ok := r.onFlush(0, 60)
	require.True(t, ok)
	require.Equal(t, 0, p1)

	r.onFlush(0, 60)
	p2, ok := r.onFlush(0, 60)
	require.True(t, ok)
	require.Equal(t, 1, p2)
}

func TestScatterRotorDisabledPastStopDepth(t *testing.T) {
	r := newScatterRotor(10, 5, 3)
	_, ok := r.onFlush(6, 1000)
	require.False(t, ok)
}

func TestScatterRotorDisabledWithSinglePartition(t *testing.T) {
	r := newScatterRotor(10, 5, 1)
	_, ok := r.onFlush(0, 1000)
	require.False(t, ok)
}
