package sched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"numahui/allocator"
	"numahui/task"
	"numahui/topology"
)

func singleNodeTopo(cpus int) *topology.Topology {
	nodeCPUs := map[int][]int{0: {}}
	for i := 0; i < cpus; i++ {
		nodeCPUs[0] = append(nodeCPUs[0], i)
	}
	return topology.New(nodeCPUs, [][]int{{0}})
}

func TestPostAnyRunsOnWorker(t *testing.T) {
	topo := singleNodeTopo(2)
	sc := New(topo)
	sc.Start()
	defer sc.Stop()

	done := make(chan struct{}, 1)
	sc.Post(task.New(func(int) { close(done) }), Any, -1)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran")
	}
}

func TestPostToNodeRunsOnThatNode(t *testing.T) {
	nodeCPUs := map[int][]int{0: {0}, 1: {1}}
	topo := topology.New(nodeCPUs, [][]int{{0, 1}, {1, 0}})
	sc := New(topo)
	sc.Start()
	defer sc.Stop()

	done := make(chan struct{}, 1)
	sc.Post(task.New(func(int) { close(done) }), ToNode(1), -1)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran on node 1")
	}
}

func TestStopDrainsAndJoinsWithinBound(t *testing.T) {
	topo := singleNodeTopo(4)
	sc := New(topo)
	sc.Start()

	var n int
	done := make(chan struct{})
	go func() {
		sc.Post(task.New(func(int) { n = 1 }), Any, -1)
		close(done)
	}()
	<-done

	stopped := make(chan struct{})
	go func() {
		sc.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop did not join within 3s")
	}
	require.Equal(t, 1, n)
}

func TestWorkersRunWithAllocatorConfigured(t *testing.T) {
	topo := singleNodeTopo(2)
	sc := New(topo)
	sc.SetAllocator(allocator.NewHeap())
	sc.Start()
	defer sc.Stop()

	done := make(chan struct{}, 1)
	sc.Post(task.New(func(int) { close(done) }), Any, -1)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran with allocator configured")
	}
}
