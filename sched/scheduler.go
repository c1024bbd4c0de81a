package sched

import (
	"math/rand"
	"sync"
	"sync/atomic"

	"numahui/allocator"
	"numahui/task"
	"numahui/topology"
)

// Dest selects a posting target: ANY lets the scheduler pick, Node
// pins to a specific NUMA node (spec.md §4.D "Posting").
type Dest struct {
	Node  int
	IsAny bool
}

// Any is the typical posting destination.
var Any = Dest{IsAny: true}

// ToNode posts to a specific node.
func ToNode(n int) Dest { return Dest{Node: n} }

// Scheduler owns the worker pool, the global overflow stack, and one
// spill stack per NUMA node, per spec.md §4.D "Scheduler contract".
type Scheduler struct {
	topo    *topology.Topology
	workers []*Worker
	byCPU   map[int]*Worker

	global Stack
	node   []Stack // one spill stack per node

	sleeping []atomic.Int64 // per-node sleeping-worker counter
	anySleep atomic.Int64

	nearCPUs map[int][]int // cpu -> shuffled other CPUs of its own node
	farCPUs  map[int][]int // cpu -> shuffled CPUs of other nodes

	stop atomic.Bool
	join sync.WaitGroup

	alloc allocator.Allocator // optional; nil means no per-worker arena warmup
}

// SetAllocator configures the facade each worker uses to warm a small
// node-local scratch arena before entering its run loop (spec.md §4.B's
// "implementations lacking first-class node binding should approximate
// via thread-affine allocator arenas"). Must be called before Start.
func (sc *Scheduler) SetAllocator(a allocator.Allocator) {
	sc.alloc = a
}

// New builds a Scheduler with one worker per CPU in topo.
func New(topo *topology.Topology) *Scheduler {
	sc := &Scheduler{
		topo:     topo,
		byCPU:    make(map[int]*Worker),
		node:     make([]Stack, topo.NumNodes()),
		sleeping: make([]atomic.Int64, topo.NumNodes()),
		nearCPUs: make(map[int][]int),
		farCPUs:  make(map[int][]int),
	}
	for _, n := range topo.Nodes() {
		for _, cpu := range n.CPUIDs {
			w := newWorker(len(sc.workers), cpu, n.ID, sc)
			sc.workers = append(sc.workers, w)
			sc.byCPU[cpu] = w
		}
	}
	for _, n := range topo.Nodes() {
		for _, cpu := range n.CPUIDs {
			sc.nearCPUs[cpu] = shuffledExcluding(n.CPUIDs, cpu)
			var far []int
			for _, other := range topo.NearNodeIDs(n.ID) {
				if other == n.ID {
					continue
				}
				far = append(far, nodeCPUs(topo, other)...)
			}
			rand.Shuffle(len(far), func(i, j int) { far[i], far[j] = far[j], far[i] })
			sc.farCPUs[cpu] = far
		}
	}
	return sc
}

func nodeCPUs(topo *topology.Topology, id int) []int {
	for _, n := range topo.Nodes() {
		if n.ID == id {
			return n.CPUIDs
		}
	}
	return nil
}

func shuffledExcluding(cpus []int, exclude int) []int {
	out := make([]int, 0, len(cpus))
	for _, c := range cpus {
		if c != exclude {
			out = append(out, c)
		}
	}
	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Start launches one OS-thread-pinned loop per worker.
func (sc *Scheduler) Start() {
	sc.join.Add(len(sc.workers))
	for _, w := range sc.workers {
		go w.run(&sc.stop, &sc.join)
	}
}

// Post implements spec.md §4.D's posting algorithm. callerCPU is -1 if
// the caller is not itself a worker thread.
func (sc *Scheduler) Post(t *task.Task, dest Dest, callerCPU int) {
	if dest.IsAny {
		sc.postAny(t, callerCPU)
		return
	}
	sc.postNode(t, dest.Node, callerCPU)
}

func (sc *Scheduler) postAny(t *task.Task, callerCPU int) {
	if sc.anySleep.Load() > 0 {
		startNode := 0
		if w, ok := sc.byCPU[callerCPU]; ok {
			startNode = w.node
		}
		for _, nid := range sc.topo.NearNodeIDs(startNode) {
			for _, cpu := range nodeCPUs(sc.topo, nid) {
				if w := sc.byCPU[cpu]; w.tryWakeUp(func(w *Worker) { w.Post(t) }) {
					return
				}
			}
		}
	}
	if w, ok := sc.byCPU[callerCPU]; ok {
		w.Post(t)
		return
	}
	sc.global.Push(t)
	sc.wakeAny()
}

func (sc *Scheduler) postNode(t *task.Task, n int, callerCPU int) {
	if sc.sleeping[n].Load() > 0 {
		for _, cpu := range nodeCPUs(sc.topo, n) {
			if w := sc.byCPU[cpu]; w.tryWakeUp(func(w *Worker) { w.Post(t) }) {
				return
			}
		}
	}
	if caller, ok := sc.byCPU[callerCPU]; ok {
		target := sc.correspondingWorker(caller, n)
		if target != nil {
			target.Post(t)
			target.forceWakeUp()
			return
		}
	}
	sc.node[n].Push(t)
	sc.wakeNode(n)
}

// correspondingWorker returns node n's worker with the same id_in_node
// as caller, per spec.md §4.D.
func (sc *Scheduler) correspondingWorker(caller *Worker, n int) *Worker {
	cpus := nodeCPUs(sc.topo, n)
	idInNode := -1
	for i, cpu := range nodeCPUs(sc.topo, caller.node) {
		if cpu == caller.cpu {
			idInNode = i
			break
		}
	}
	if idInNode < 0 || idInNode >= len(cpus) {
		return nil
	}
	return sc.byCPU[cpus[idInNode]]
}

func (sc *Scheduler) wakeAny() {
	for _, w := range sc.workers {
		if w.tryWakeUp(nil) {
			return
		}
	}
}

func (sc *Scheduler) wakeNode(n int) {
	for _, cpu := range nodeCPUs(sc.topo, n) {
		if sc.byCPU[cpu].tryWakeUp(nil) {
			return
		}
	}
}

// steal implements spec.md §4.D's stealing order for worker w.
func (sc *Scheduler) steal(w *Worker) *task.Task {
	if t := sc.node[w.node].Pop(); t != nil {
		return t
	}
	if t := sc.global.Pop(); t != nil {
		return t
	}
	for _, cpu := range sc.nearCPUs[w.cpu] {
		if t := sc.byCPU[cpu].local.Pop(); t != nil {
			return t
		}
	}
	for _, cpu := range sc.farCPUs[w.cpu] {
		if t := sc.byCPU[cpu].local.Pop(); t != nil {
			return t
		}
	}
	return nil
}

func (sc *Scheduler) noteSleeping(node int, delta int64) {
	sc.sleeping[node].Add(delta)
	sc.anySleep.Add(delta)
}

// Stop force-wakes every worker, lets them drain their stacks, and
// joins — spec.md §4.D's only shutdown primitive.
func (sc *Scheduler) Stop() {
	sc.stop.Store(true)
	for _, w := range sc.workers {
		w.forceWakeUp()
	}
	sc.join.Wait()
}

// NumWorkers reports the worker pool size.
func (sc *Scheduler) NumWorkers() int { return len(sc.workers) }
