package driver

import (
	"fmt"

	"strata/internal/depgraph"
	"strata/internal/pipeline"
)

// solve builds the dependency graph from the discovered records. An
// invalid graph (unresolved imports or a cycle) fails the run before any
// codegen task is scheduled.
func (d *Driver) solve(rc *runContext) string {
	if !rc.status.Valid() {
		return "skipped"
	}

	d.emit(pipeline.Event{Phase: pipeline.PhaseSolve, Status: pipeline.StatusWorking})
	rc.graph = depgraph.Build(rc.lists, d.reporter())
	if rc.graph.Invalid {
		rc.status.Fail("dependency graph is invalid")
		d.emit(pipeline.Event{Phase: pipeline.PhaseSolve, Status: pipeline.StatusError})
		return "failed"
	}
	d.emit(pipeline.Event{Phase: pipeline.PhaseSolve, Status: pipeline.StatusDone})
	return fmt.Sprintf("%d nodes", rc.graph.Len())
}
