// Package topology models the NUMA layout the rest of the system plans
// around: which CPUs belong to which node, and how far nodes are from
// each other. It is read-only after construction — built once at process
// start and never mutated, mirroring the teacher's process-wide
// singletons (DESIGN NOTES §9).
package topology

import "sort"

// Node describes one NUMA node.
type Node struct {
	ID          int
	CPUIDs      []int
	NearNodeIDs []int // all node ids, sorted by distance from this node
}

// Topology is the immutable, queryable NUMA map.
type Topology struct {
	nodes      []Node
	cpuToNode  map[int]int
	distance   [][]int // distance[a][b], symmetric, distance[a][a] minimal
}

// New builds a Topology from a node->cpus map and a distance matrix
// indexed by node id. Both must be internally consistent (every node id
// referenced in distance must exist in nodeCPUs); callers on real
// hardware get this from Discover(); tests build it directly.
func New(nodeCPUs map[int][]int, distance [][]int) *Topology {
	ids := make([]int, 0, len(nodeCPUs))
	for id := range nodeCPUs {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	t := &Topology{
		cpuToNode: make(map[int]int),
		distance:  distance,
	}

	t.nodes = make([]Node, len(ids))
	for i, id := range ids {
		cpus := append([]int(nil), nodeCPUs[id]...)
		sort.Ints(cpus)
		t.nodes[i] = Node{ID: id, CPUIDs: cpus}
		for _, c := range cpus {
			t.cpuToNode[c] = id
		}
	}

	for i := range t.nodes {
		t.nodes[i].NearNodeIDs = t.nearOrder(t.nodes[i].ID)
	}
	return t
}

// Nodes returns the ordered list of node records.
func (t *Topology) Nodes() []Node { return t.nodes }

// NumNodes reports how many NUMA nodes are present.
func (t *Topology) NumNodes() int { return len(t.nodes) }

// CPUToNode is an O(1) lookup from logical CPU id to owning node id. The
// second return is false if the CPU is unknown to this topology.
func (t *Topology) CPUToNode(cpu int) (int, bool) {
	n, ok := t.cpuToNode[cpu]
	return n, ok
}

// NodeDistance returns the symmetric, self-minimal distance between two
// node ids.
func (t *Topology) NodeDistance(a, b int) int {
	return t.distance[a][b]
}

// NearNodeIDs returns all node ids sorted by distance from n, nearest
// first, as computed at construction time.
func (t *Topology) NearNodeIDs(n int) []int {
	for i := range t.nodes {
		if t.nodes[i].ID == n {
			return t.nodes[i].NearNodeIDs
		}
	}
	return nil
}

// nearOrder sorts every node id by distance from n. Ties are broken by a
// rotational offset derived from n so that two different source nodes do
// not concentrate steal/wake traffic on the same neighbour — spec.md
// §4.A's "tie broken by rotational offset."
func (t *Topology) nearOrder(n int) []int {
	ids := make([]int, len(t.nodes))
	for i, nd := range t.nodes {
		ids[i] = nd.ID
	}

	offset := n % len(ids)
	rotated := make([]int, len(ids))
	for i := range ids {
		rotated[i] = ids[(i+offset)%len(ids)]
	}

	sort.SliceStable(rotated, func(i, j int) bool {
		return t.distance[n][rotated[i]] < t.distance[n][rotated[j]]
	})
	return rotated
}
