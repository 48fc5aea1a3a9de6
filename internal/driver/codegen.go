package driver

import (
	"context"
	"fmt"
	"path/filepath"

	"strata/internal/depgraph"
	"strata/internal/diag"
	"strata/internal/pipeline"
	"strata/internal/source"
	"strata/internal/tasks"
)

// codegen walks the graph bottom-up and (re)builds every declaration and
// object artifact that is not provably up to date.
func (d *Driver) codegen(ctx context.Context, rc *runContext, sched *tasks.Scheduler) string {
	if !rc.status.Valid() {
		return "skipped"
	}

	ok := rc.graph.JobWalk(sched, func(n *depgraph.Node) bool {
		return d.buildNode(ctx, rc, n)
	})
	if !ok {
		rc.status.Fail("codegen failed")
		return "failed"
	}

	rc.mu.Lock()
	updated := rc.updated.Len()
	rc.mu.Unlock()
	return fmt.Sprintf("%d nodes, %d updated", rc.graph.Len(), updated)
}

func (d *Driver) buildNode(ctx context.Context, rc *runContext, n *depgraph.Node) bool {
	unitPath := rc.graph.UnitPath(n.ID)
	row := rc.files.Get(n.ID.Unit)

	if n.External {
		// A library already ships this declaration; nothing to build.
		if d.libraryDecl(rc, n.ID.Unit) != "" {
			d.emit(pipeline.Event{Unit: unitPath, Phase: pipeline.PhaseCodegen, Status: pipeline.StatusSkipped})
			return true
		}
	}

	var artifact string
	var failCode diag.Code
	switch n.ID.Kind {
	case depgraph.KindDeclaration:
		artifact = row.DeclAST
		failCode = diag.ActDeclFailed
	case depgraph.KindDefinition:
		artifact = row.Object
		failCode = diag.ActObjectFailed
	}

	metaPath := artifact + ExtMeta
	old := d.readMeta(rc, metaPath, unitPath)
	fresh := rc.sourceHash(n.ID.Unit)

	if !rc.preambleWasUpdated() && !rc.anyDepUpdated(n) &&
		old != nil && old.SourceHash == fresh && fileExists(artifact) {
		d.emit(pipeline.Event{Unit: unitPath, Phase: pipeline.PhaseCodegen, Status: pipeline.StatusSkipped})
		return true
	}

	d.emit(pipeline.Event{Unit: unitPath, Phase: pipeline.PhaseCodegen, Status: pipeline.StatusWorking})

	req := BuildRequest{
		UnitPath:  unitPath,
		Source:    row.Source,
		Output:    artifact,
		DepDecls:  d.depDecls(rc, n),
		ExtraArgs: d.Config.CodegenArgs,
	}
	if d.Config.PreambleSource != "" {
		req.Preamble = rc.files.PreamblePath()
	}

	var err error
	if n.ID.Kind == depgraph.KindDeclaration {
		err = d.Tool.BuildDeclaration(ctx, req)
	} else {
		err = d.Tool.BuildObject(ctx, req)
	}
	if err != nil {
		diag.Error(d.reporter(), failCode, unitPath, err.Error())
		d.emit(pipeline.Event{Unit: unitPath, Phase: pipeline.PhaseCodegen, Status: pipeline.StatusError, Err: err})
		return false
	}
	if d.Config.DryRun {
		return true
	}

	newHash := rebuiltArtifactHash(artifact, metaPath)
	if old == nil || newHash != old.ArtifactHash {
		rc.markUpdated(n.ID)
	}

	if n.ID.Kind == depgraph.KindDeclaration && n.Public && !n.External {
		err := d.Tool.GenerateHeader(ctx, HeaderRequest{
			UnitPath: unitPath,
			DeclAST:  artifact,
			Output:   row.Header,
		})
		if err != nil {
			diag.Error(d.reporter(), diag.ActHeaderFailed, unitPath, err.Error())
			d.emit(pipeline.Event{Unit: unitPath, Phase: pipeline.PhaseCodegen, Status: pipeline.StatusError, Err: err})
			return false
		}
	}

	d.emit(pipeline.Event{Unit: unitPath, Phase: pipeline.PhaseCodegen, Status: pipeline.StatusDone})
	return true
}

// depDecls resolves the declaration artifacts of every dependency, in
// deterministic order. Codegen inputs for dependents.
func (d *Driver) depDecls(rc *runContext, n *depgraph.Node) []string {
	out := make([]string, 0, len(n.Deps))
	for _, dep := range n.Deps.Sorted() {
		if lib := d.libraryDecl(rc, dep.Unit); lib != "" {
			out = append(out, lib)
			continue
		}
		out = append(out, rc.files.Get(dep.Unit).DeclAST)
	}
	return out
}

// libraryDecl finds an external unit's declaration artifact in the
// configured library paths. Empty for regular units and for external
// units no library provides (those build locally).
func (d *Driver) libraryDecl(rc *runContext, id source.UnitID) string {
	ud := rc.lists.Get(id)
	if ud == nil || !ud.External {
		return ""
	}
	rel := filepath.FromSlash(rc.interner.MustLookup(id)) + ExtDeclAST
	for _, dir := range d.Config.LibPaths {
		p := filepath.Join(dir, rel)
		if fileExists(p) {
			return p
		}
	}
	return ""
}

func (rc *runContext) preambleWasUpdated() bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.preambleUpdated
}
