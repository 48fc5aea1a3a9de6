package driver

import (
	"context"
	"fmt"

	"strata/internal/diag"
	"strata/internal/pipeline"
)

// link produces the final binary. Skipped when no object changed this
// run and the output already exists.
func (d *Driver) link(ctx context.Context, rc *runContext) string {
	if !rc.status.Valid() {
		return "skipped"
	}
	if d.Config.Output == "" {
		return "none"
	}

	rc.mu.Lock()
	changed := rc.objectsUpdated
	rc.mu.Unlock()
	if !changed && fileExists(d.Config.Output) {
		d.emit(pipeline.Event{Phase: pipeline.PhaseLink, Status: pipeline.StatusSkipped})
		return "up to date"
	}

	var objects []string
	for _, id := range rc.units {
		if ud := rc.lists.Get(id); ud != nil && ud.External {
			continue
		}
		objects = append(objects, rc.files.Get(id).Object)
	}
	if len(objects) == 0 {
		rc.status.Fail("nothing to link")
		return "failed"
	}

	d.emit(pipeline.Event{Phase: pipeline.PhaseLink, Status: pipeline.StatusWorking})
	err := d.Tool.Link(ctx, LinkRequest{
		Objects:   objects,
		Output:    d.Config.Output,
		LibPaths:  d.Config.LibPaths,
		ExtraArgs: d.Config.LinkArgs,
	})
	if err != nil {
		diag.Error(d.reporter(), diag.ActLinkFailed, "", err.Error())
		rc.status.Failf("link: %v", err)
		d.emit(pipeline.Event{Phase: pipeline.PhaseLink, Status: pipeline.StatusError, Err: err})
		return "failed"
	}
	d.emit(pipeline.Event{Phase: pipeline.PhaseLink, Status: pipeline.StatusDone})
	return fmt.Sprintf("%d objects", len(objects))
}
