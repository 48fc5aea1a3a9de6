package driver

import (
	"context"
	"fmt"

	"strata/internal/deps"
	"strata/internal/diag"
	"strata/internal/pipeline"
	"strata/internal/source"
	"strata/internal/tasks"
)

// parseImport produces the dependency record of every unit, one scheduler
// task per unit. A record whose sidecar still matches the current source
// hash is reused instead of re-scanning.
func (d *Driver) parseImport(ctx context.Context, rc *runContext, sched *tasks.Scheduler) string {
	if !rc.status.Valid() {
		return "skipped"
	}

	reused := 0
	wait := make(tasks.TaskSet, len(rc.units))
	for _, id := range rc.units {
		wait.Add(sched.Run(func(tctx *tasks.TaskContext) {
			fresh := d.parseImportUnit(ctx, rc, id)
			if fresh == reuseRecord {
				rc.mu.Lock()
				reused++
				rc.mu.Unlock()
			}
			tctx.Successful = fresh != parseFailed
		}))
	}
	if !sched.Wait(wait) {
		rc.status.Fail("dependency discovery failed")
		return "failed"
	}
	return fmt.Sprintf("%d units, %d reused", len(rc.units), reused)
}

type parseOutcome int

const (
	parseFailed parseOutcome = iota
	reuseRecord
	freshRecord
)

func (d *Driver) parseImportUnit(ctx context.Context, rc *runContext, id source.UnitID) parseOutcome {
	unitPath := rc.interner.MustLookup(id)
	row := rc.files.Get(id)

	d.emit(pipeline.Event{Unit: unitPath, Phase: pipeline.PhaseParseImport, Status: pipeline.StatusWorking})

	if record := d.reusableRecord(rc, id, unitPath, row); record != nil {
		d.addRecord(rc, unitPath, record)
		d.emit(pipeline.Event{Unit: unitPath, Phase: pipeline.PhaseParseImport, Status: pipeline.StatusSkipped})
		return reuseRecord
	}

	err := d.Tool.ParseImport(ctx, ParseRequest{
		UnitPath:   unitPath,
		Source:     row.Source,
		SourceRoot: d.Config.SourceRoot,
		DepsOut:    row.Deps,
		ExtraArgs:  d.Config.ParseArgs,
	})
	if err != nil {
		diag.Error(d.reporter(), diag.ActParseFailed, unitPath, err.Error())
		d.emit(pipeline.Event{Unit: unitPath, Phase: pipeline.PhaseParseImport, Status: pipeline.StatusError, Err: err})
		return parseFailed
	}
	if d.Config.DryRun {
		d.addRecord(rc, unitPath, &deps.UnitDeps{Schema: deps.SchemaVersion, Path: unitPath})
		return freshRecord
	}

	record, err := deps.ReadDepsFile(row.Deps)
	if err != nil {
		diag.Error(d.reporter(), diag.DepListCorrupt, unitPath, err.Error())
		return parseFailed
	}
	if record == nil {
		diag.Error(d.reporter(), diag.DepListMissing, unitPath,
			fmt.Sprintf("import scan produced no record at %s", row.Deps))
		return parseFailed
	}
	d.addRecord(rc, unitPath, record)
	d.emit(pipeline.Event{Unit: unitPath, Phase: pipeline.PhaseParseImport, Status: pipeline.StatusDone})
	return freshRecord
}

// reusableRecord returns the persisted record when its sidecar matches
// the unit's current source hash. Corrupt files only warn: the unit is
// re-scanned instead.
func (d *Driver) reusableRecord(rc *runContext, id source.UnitID, unitPath string, row *UnitFiles) *deps.UnitDeps {
	meta := d.readMeta(rc, row.DepsMeta(), unitPath)
	if meta == nil || meta.SourceHash != rc.sourceHash(id) {
		return nil
	}
	record, err := deps.ReadDepsFile(row.Deps)
	if err != nil {
		diag.Warning(d.reporter(), diag.DepListCorrupt, unitPath, err.Error())
		rc.status.Warnf("unreadable deps record for %s: %v", unitPath, err)
		return nil
	}
	return record
}

// addRecord stores one unit's record, pinning its path to the collected
// unit path.
func (d *Driver) addRecord(rc *runContext, unitPath string, record *deps.UnitDeps) {
	record.Path = unitPath
	rc.mu.Lock()
	rc.lists.Add(record)
	rc.mu.Unlock()
}
