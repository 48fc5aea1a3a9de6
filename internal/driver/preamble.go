package driver

import (
	"context"
	"errors"
	"fmt"
	"os"

	"strata/internal/deps"
	"strata/internal/diag"
	"strata/internal/pipeline"
	"strata/internal/source"
)

// preamble rebuilds the shared preamble artifact when its source changed.
// Any rebuild invalidates every unit downstream via rc.preambleUpdated:
// units compile against the preamble, so their caches cannot be trusted
// once it was reproduced.
func (d *Driver) preamble(ctx context.Context, rc *runContext) string {
	if !rc.status.Valid() {
		return "skipped"
	}
	if d.Config.PreambleSource == "" {
		return "none"
	}

	artifact := rc.files.PreamblePath()
	metaPath := rc.files.PreambleMeta()

	fresh, err := source.HashFile(d.Config.PreambleSource)
	if err != nil {
		rc.status.Failf("preamble source: %v", err)
		diag.Error(d.reporter(), diag.ActPreambleFailed, "", err.Error())
		return "failed"
	}

	old := d.readMeta(rc, metaPath, "preamble")
	if old != nil && old.SourceHash == fresh && fileExists(artifact) {
		d.emit(pipeline.Event{Phase: pipeline.PhasePreamble, Status: pipeline.StatusSkipped})
		return "up to date"
	}

	d.emit(pipeline.Event{Phase: pipeline.PhasePreamble, Status: pipeline.StatusWorking})
	err = d.Tool.BuildPreamble(ctx, PreambleRequest{
		Source:    d.Config.PreambleSource,
		Output:    artifact,
		ExtraArgs: d.Config.PreambleArgs,
	})
	if err != nil {
		diag.Error(d.reporter(), diag.ActPreambleFailed, "", err.Error())
		rc.status.Failf("preamble build: %v", err)
		d.emit(pipeline.Event{Phase: pipeline.PhasePreamble, Status: pipeline.StatusError, Err: err})
		return "failed"
	}
	if d.Config.DryRun {
		return "dry run"
	}

	rc.mu.Lock()
	rc.preambleUpdated = true
	rc.mu.Unlock()
	d.emit(pipeline.Event{Phase: pipeline.PhasePreamble, Status: pipeline.StatusDone})
	return "rebuilt"
}

// readMeta loads a hash-meta sidecar, downgrading any read problem to a
// warning. A missing, stale or unreadable sidecar just forces a rebuild.
func (d *Driver) readMeta(rc *runContext, path, unit string) *deps.Meta {
	meta, err := deps.ReadMetaFile(path)
	if err != nil {
		code := diag.MetaUnreadable
		if errors.Is(err, deps.ErrSchemaMismatch) {
			code = diag.MetaStale
		}
		diag.Warning(d.reporter(), code, unit, fmt.Sprintf("%s: %v", path, err))
		rc.status.Warnf("stale meta %s: %v", path, err)
		return nil
	}
	return meta
}

// rebuiltArtifactHash prefers the hash the build action recorded and
// falls back to hashing the artifact directly.
func rebuiltArtifactHash(artifact, metaPath string) source.Digest {
	if meta, err := deps.ReadMetaFile(metaPath); err == nil && meta != nil {
		return meta.ArtifactHash
	}
	h, err := source.HashFile(artifact)
	if err != nil {
		return source.Digest{}
	}
	return h
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
