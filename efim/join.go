package efim

import "numahui/task"

// joinGroup adapts task.WaitGroup's "attach continuation, last Done runs
// it inline" protocol to the fork-join shape runSearch needs: n children
// posted up front, a single callback once every one of them has reported
// in, carrying the first error any of them raised.
type joinGroup struct {
	wg *task.WaitGroup
}

func newJoinGroup(n int) *joinGroup {
	wg := task.NewWaitGroup()
	wg.Add(uint32(n))
	return &joinGroup{wg: wg}
}

// done is the per-child completion callback: nil means the child
// succeeded, non-nil latches it as the group's terminal error.
func (g *joinGroup) done(err error) {
	if err != nil {
		g.wg.Fail(err)
		return
	}
	g.wg.Done()
}

// await attaches k, releasing the group's own initial guard. k is called
// exactly once, either inline (if every child had already reported) or
// later from whichever child's done call was last.
func (g *joinGroup) await(k func(error)) {
	g.wg.TryAwait(func() { k(g.wg.Err()) })
}

func newTask(fn func(cpu int)) *task.Task { return task.New(fn) }
