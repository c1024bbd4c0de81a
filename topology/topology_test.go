package topology

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func fourNode() *Topology {
	nodeCPUs := map[int][]int{
		0: {0, 1},
		1: {2, 3},
		2: {4, 5},
		3: {6, 7},
	}
	// Ring-ish distance matrix: adjacent nodes are closer.
	distance := [][]int{
		{10, 20, 30, 20},
		{20, 10, 20, 30},
		{30, 20, 10, 20},
		{20, 30, 20, 10},
	}
	return New(nodeCPUs, distance)
}

func TestCPUToNode(t *testing.T) {
	topo := fourNode()
	n, ok := topo.CPUToNode(5)
	require.True(t, ok)
	require.Equal(t, 2, n)

	_, ok = topo.CPUToNode(99)
	require.False(t, ok)
}

func TestNodeDistanceSelfMinimal(t *testing.T) {
	topo := fourNode()
	for _, n := range topo.Nodes() {
		for _, other := range topo.Nodes() {
			if n.ID == other.ID {
				continue
			}
			require.LessOrEqual(t, topo.NodeDistance(n.ID, n.ID), topo.NodeDistance(n.ID, other.ID))
		}
	}
}

func TestNodeDistanceSymmetric(t *testing.T) {
	topo := fourNode()
	require.Equal(t, topo.NodeDistance(0, 3), topo.NodeDistance(3, 0))
}

func TestNearNodeIDsSortedByDistance(t *testing.T) {
	topo := fourNode()
	near := topo.NearNodeIDs(0)
	require.Equal(t, 4, len(near))
	require.Equal(t, 0, near[0]) // self is always nearest
	for i := 1; i < len(near)-1; i++ {
		require.LessOrEqual(t, topo.NodeDistance(0, near[i]), topo.NodeDistance(0, near[i+1]))
	}
}

func TestNearNodeIDsTieBreakVariesBySource(t *testing.T) {
	topo := fourNode()
	// Nodes 0 and 2 are symmetric (both have two equidistant neighbours at
	// distance 20); the rotational tie-break should not pick the same
	// neighbour order for both.
	near0 := topo.NearNodeIDs(0)
	near2 := topo.NearNodeIDs(2)
	require.NotEqual(t, near0, near2)
}
