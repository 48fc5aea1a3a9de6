// Package driver sequences a build run: collect sources, refresh the
// shared preamble, discover dependencies, solve the graph, generate
// artifacts bottom-up and link. Each phase checks the shared run status
// first and becomes a no-op once a failure is recorded.
package driver

import (
	"context"
	"errors"
	"sync"

	"strata/internal/depgraph"
	"strata/internal/deps"
	"strata/internal/diag"
	"strata/internal/observ"
	"strata/internal/pipeline"
	"strata/internal/source"
	"strata/internal/tasks"
)

// Driver owns the collaborators of one or more build runs.
type Driver struct {
	Config   Config
	Tool     Toolchain
	Reporter diag.Reporter
	Sink     pipeline.ProgressSink
	Timer    *observ.Timer
}

// runContext is the mutable state shared across workers during one run.
type runContext struct {
	interner *source.Interner
	units    []source.UnitID // sorted by unit path
	files    *FilesInfo
	lists    *deps.UnitLists
	graph    *depgraph.Graph
	status   *Status

	mu              sync.Mutex
	srcHash         map[source.UnitID]source.Digest
	updated         depgraph.NodeSet
	preambleUpdated bool
	objectsUpdated  bool
}

func (d *Driver) newRunContext() *runContext {
	in := source.NewInterner()
	return &runContext{
		interner: in,
		files:    NewFilesInfo(&d.Config),
		lists:    deps.NewUnitLists(in),
		status:   &Status{},
		srcHash:  make(map[source.UnitID]source.Digest),
		updated:  make(depgraph.NodeSet),
	}
}

func (rc *runContext) setSourceHash(id source.UnitID, h source.Digest) {
	rc.mu.Lock()
	rc.srcHash[id] = h
	rc.mu.Unlock()
}

func (rc *runContext) sourceHash(id source.UnitID) source.Digest {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.srcHash[id]
}

func (rc *runContext) markUpdated(id depgraph.NodeID) {
	rc.mu.Lock()
	rc.updated.Add(id)
	if id.Kind == depgraph.KindDefinition {
		rc.objectsUpdated = true
	}
	rc.mu.Unlock()
}

func (rc *runContext) isUpdated(id depgraph.NodeID) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.updated.Has(id)
}

func (rc *runContext) anyDepUpdated(n *depgraph.Node) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	for dep := range n.Deps {
		if rc.updated.Has(dep) {
			return true
		}
	}
	return false
}

func (d *Driver) reporter() diag.Reporter {
	if d.Reporter == nil {
		return diag.NopReporter{}
	}
	return d.Reporter
}

func (d *Driver) sink() pipeline.ProgressSink {
	if d.Sink == nil {
		return pipeline.NopSink{}
	}
	return d.Sink
}

func (d *Driver) emit(ev pipeline.Event) {
	d.sink().OnEvent(ev)
}

// timed runs fn inside a named timer span when a Timer is attached.
func (d *Driver) timed(name string, fn func() string) {
	if d.Timer == nil {
		fn()
		return
	}
	idx := d.Timer.Begin(name)
	note := fn()
	d.Timer.End(idx, note)
}

// Run executes the full pipeline. The returned error carries the first
// failure; diagnostics with more detail end up in the Reporter.
func (d *Driver) Run(ctx context.Context) error {
	if !d.Config.Validate(d.reporter()) {
		return errors.New("invalid configuration")
	}

	rc := d.newRunContext()
	sched := tasks.NewScheduler(d.Config.Jobs)
	defer sched.Close()

	d.timed("collect", func() string { return d.collect(ctx, rc) })
	d.timed("preamble", func() string { return d.preamble(ctx, rc) })
	d.timed("parse-import", func() string { return d.parseImport(ctx, rc, sched) })
	d.timed("solve", func() string { return d.solve(rc) })
	d.timed("codegen", func() string { return d.codegen(ctx, rc, sched) })
	d.timed("link", func() string { return d.link(ctx, rc) })

	if !rc.status.Valid() {
		return errors.New(rc.status.Message())
	}
	return nil
}

// Solve runs only the discovery half of the pipeline and returns the
// dependency graph. Backs the graph subcommand.
func (d *Driver) Solve(ctx context.Context) (*depgraph.Graph, error) {
	if !d.Config.Validate(d.reporter()) {
		return nil, errors.New("invalid configuration")
	}

	rc := d.newRunContext()
	sched := tasks.NewScheduler(d.Config.Jobs)
	defer sched.Close()

	d.timed("collect", func() string { return d.collect(ctx, rc) })
	d.timed("parse-import", func() string { return d.parseImport(ctx, rc, sched) })
	d.timed("solve", func() string { return d.solve(rc) })

	if !rc.status.Valid() {
		return rc.graph, errors.New(rc.status.Message())
	}
	return rc.graph, nil
}
