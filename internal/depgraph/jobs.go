package depgraph

import (
	"sync"

	"strata/internal/tasks"
)

// JobAction is invoked once per node during a job walk, after every
// dependency of the node has completed successfully. It returns whether
// the node's work succeeded.
type JobAction func(n *Node) bool

type jobWalker struct {
	g      *Graph
	sched  *tasks.Scheduler
	action JobAction

	mu      sync.Mutex
	claimed map[NodeID]tasks.TaskID
}

// JobWalk runs action over the whole graph bottom up: dependencies before
// dependents, independent subtrees in parallel up to the scheduler's
// capacity. A node shared by several dependents runs exactly once; later
// claimants wait on the first claimant's task. A failed dependency keeps
// the dependent's action from running, but sibling work already in flight
// is never cancelled. Returns true iff every action succeeded.
func (g *Graph) JobWalk(s *tasks.Scheduler, action JobAction) bool {
	if g.Invalid {
		return false
	}
	w := &jobWalker{
		g:       g,
		sched:   s,
		action:  action,
		claimed: make(map[NodeID]tasks.TaskID, len(g.nodes)),
	}

	terminals := g.Terminals.Sorted()
	wait := make(tasks.TaskSet, len(terminals))
	for i, id := range terminals {
		wait.Add(w.schedule(id, i == len(terminals)-1))
	}
	return s.Wait(wait)
}

// schedule claims id if nobody has yet and returns the task to wait on.
// The claim map is filled under the mutex before the task becomes
// runnable, so a concurrent claimant always finds the same task id.
// With inline set the node's whole subtree executes on the calling
// goroutine.
func (w *jobWalker) schedule(id NodeID, inline bool) tasks.TaskID {
	w.mu.Lock()
	if tid, ok := w.claimed[id]; ok {
		w.mu.Unlock()
		return tid
	}
	tid := w.sched.Reserve(w.nodeJob(id))
	w.claimed[id] = tid
	w.mu.Unlock()

	w.sched.Start(tid, inline)
	return tid
}

func (w *jobWalker) nodeJob(id NodeID) tasks.ActionFn {
	return func(ctx *tasks.TaskContext) {
		n := w.g.nodes[id]
		deps := n.Deps.Sorted()
		wait := make(tasks.TaskSet, len(deps))
		for i, dep := range deps {
			wait.Add(w.schedule(dep, i == len(deps)-1))
		}
		if !w.sched.Wait(wait) {
			return
		}
		ctx.Successful = w.action(n)
	}
}
