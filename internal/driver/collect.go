package driver

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"strata/internal/diag"
	"strata/internal/pipeline"
	"strata/internal/source"
)

// ListUnits returns the unit paths under a source root, sorted. Cheap
// variant of the collect phase for UIs that need the unit list up front.
func ListUnits(sourceRoot string) ([]string, error) {
	var units []string
	err := filepath.WalkDir(sourceRoot, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(path, ExtSource) {
			return nil
		}
		rel, err := filepath.Rel(sourceRoot, path)
		if err != nil {
			return err
		}
		units = append(units, filepath.ToSlash(strings.TrimSuffix(rel, ExtSource)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(units)
	return units, nil
}

// collect finds every unit source under the source root, fills the path
// table and hashes all sources in parallel.
func (d *Driver) collect(ctx context.Context, rc *runContext) string {
	if !rc.status.Valid() {
		return "skipped"
	}

	unitPaths, err := ListUnits(d.Config.SourceRoot)
	if err != nil {
		diag.Error(d.reporter(), diag.ColUnreadable, "",
			fmt.Sprintf("scanning %s: %v", d.Config.SourceRoot, err))
		rc.status.Failf("cannot scan source root: %v", err)
		return "failed"
	}
	if len(unitPaths) == 0 {
		diag.Error(d.reporter(), diag.ColNoUnits, "",
			fmt.Sprintf("no %s units under %s", ExtSource, d.Config.SourceRoot))
		rc.status.Fail("nothing to build")
		return "failed"
	}

	for _, unitPath := range unitPaths {
		id := rc.interner.Intern(unitPath)
		rc.units = append(rc.units, id)
		rc.files.Add(id, unitPath)
		d.emit(pipeline.Event{
			Unit:   unitPath,
			Phase:  pipeline.PhaseCollect,
			Status: pipeline.StatusQueued,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(d.Config.Jobs, len(rc.units)))
	for _, id := range rc.units {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			h, err := source.HashFile(rc.files.Get(id).Source)
			if err != nil {
				diag.Error(d.reporter(), diag.ColUnreadable,
					rc.interner.MustLookup(id), err.Error())
				return err
			}
			rc.setSourceHash(id, h)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		rc.status.Failf("collecting sources: %v", err)
		return "failed"
	}
	return fmt.Sprintf("%d units", len(rc.units))
}
