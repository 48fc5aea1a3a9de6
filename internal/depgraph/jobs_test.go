package depgraph

import (
	"fmt"
	"sync"
	"testing"

	"strata/internal/deps"
	"strata/internal/diag"
	"strata/internal/tasks"
)

// orderRecorder captures the order actions ran in, across workers.
type orderRecorder struct {
	mu    sync.Mutex
	order []NodeID
	seen  map[NodeID]int
}

func newOrderRecorder() *orderRecorder {
	return &orderRecorder{seen: make(map[NodeID]int)}
}

func (r *orderRecorder) record(id NodeID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen[id] = r.seen[id] + 1
	r.order = append(r.order, id)
}

func (r *orderRecorder) position(id NodeID) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, got := range r.order {
		if got == id {
			return i, true
		}
	}
	return 0, false
}

func diamondGraph(t *testing.T) *Graph {
	t.Helper()
	lists := buildLists(t,
		&deps.UnitDeps{Path: "base"},
		&deps.UnitDeps{Path: "left", DeclarationDeps: []string{"base"}},
		&deps.UnitDeps{Path: "right", DeclarationDeps: []string{"base"}},
		&deps.UnitDeps{Path: "top", DeclarationDeps: []string{"left", "right"}},
	)
	g := Build(lists, diag.NopReporter{})
	if g.Invalid {
		t.Fatalf("diamond graph must be valid")
	}
	return g
}

func TestJobWalkRunsDepsFirst(t *testing.T) {
	for _, jobs := range []int{1, 2, 8} {
		g := diamondGraph(t)
		s := tasks.NewScheduler(jobs)
		rec := newOrderRecorder()

		ok := g.JobWalk(s, func(n *Node) bool {
			rec.record(n.ID)
			return true
		})
		s.Close()

		if !ok {
			t.Fatalf("jobs=%d: walk failed", jobs)
		}
		if len(rec.order) != g.Len() {
			t.Fatalf("jobs=%d: ran %d actions, want %d", jobs, len(rec.order), g.Len())
		}
		for id, count := range rec.seen {
			if count != 1 {
				t.Fatalf("jobs=%d: node %v ran %d times", jobs, id, count)
			}
		}
		for _, id := range g.NodeIDs() {
			n := g.Node(id)
			np, _ := rec.position(id)
			for dep := range n.Deps {
				dp, ok := rec.position(dep)
				if !ok || dp >= np {
					t.Fatalf("jobs=%d: dep %v did not run before %v", jobs, dep, id)
				}
			}
		}
	}
}

func TestJobWalkSharedDepRunsOnce(t *testing.T) {
	// base decl has three dependents; whoever claims it first runs it,
	// the others wait on the same task.
	g := diamondGraph(t)
	s := tasks.NewScheduler(4)
	defer s.Close()

	rec := newOrderRecorder()
	if !g.JobWalk(s, func(n *Node) bool {
		rec.record(n.ID)
		return true
	}) {
		t.Fatalf("walk failed")
	}
	for id, count := range rec.seen {
		if count != 1 {
			t.Fatalf("node %v claimed %d times", id, count)
		}
	}
}

func TestJobWalkFailureBlocksDependents(t *testing.T) {
	lists := buildLists(t,
		&deps.UnitDeps{Path: "bad"},
		&deps.UnitDeps{Path: "above", DeclarationDeps: []string{"bad"}},
		&deps.UnitDeps{Path: "island"},
	)
	g := Build(lists, diag.NopReporter{})
	s := tasks.NewScheduler(2)
	defer s.Close()

	rec := newOrderRecorder()
	badDecl := g.mustNode(t, KindDeclaration, "bad").ID

	ok := g.JobWalk(s, func(n *Node) bool {
		rec.record(n.ID)
		return n.ID != badDecl
	})
	if ok {
		t.Fatalf("walk must report failure")
	}

	aboveDecl := g.mustNode(t, KindDeclaration, "above").ID
	if _, ran := rec.position(aboveDecl); ran {
		t.Fatalf("dependent of a failed node must not run")
	}
	// The failure must not stop the independent subtree.
	islandDecl := g.mustNode(t, KindDeclaration, "island").ID
	if _, ran := rec.position(islandDecl); !ran {
		t.Fatalf("independent subtree skipped after unrelated failure")
	}
}

func TestJobWalkInvalidGraph(t *testing.T) {
	lists := buildLists(t,
		&deps.UnitDeps{Path: "a", DeclarationDeps: []string{"b"}},
		&deps.UnitDeps{Path: "b", DeclarationDeps: []string{"a"}},
	)
	g := Build(lists, diag.NopReporter{})
	s := tasks.NewScheduler(2)
	defer s.Close()

	ran := false
	if g.JobWalk(s, func(*Node) bool { ran = true; return true }) {
		t.Fatalf("walk over an invalid graph must fail")
	}
	if ran {
		t.Fatalf("no action may run on an invalid graph")
	}
}

func TestJobWalkDeepChainSingleJob(t *testing.T) {
	const depth = 100
	units := []*deps.UnitDeps{{Path: "u000"}}
	for i := 1; i < depth; i++ {
		units = append(units, &deps.UnitDeps{
			Path:            nodeName(i),
			DeclarationDeps: []string{nodeName(i - 1)},
		})
	}
	lists := buildLists(t, units...)
	g := Build(lists, diag.NopReporter{})

	s := tasks.NewScheduler(1)
	defer s.Close()

	rec := newOrderRecorder()
	if !g.JobWalk(s, func(n *Node) bool {
		rec.record(n.ID)
		return true
	}) {
		t.Fatalf("chain walk failed")
	}
	if len(rec.order) != g.Len() {
		t.Fatalf("ran %d actions, want %d", len(rec.order), g.Len())
	}
}

func nodeName(i int) string {
	return fmt.Sprintf("u%03d", i)
}
