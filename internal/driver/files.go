package driver

import (
	"path/filepath"
	"sync"

	"strata/internal/source"
)

// Artifact extensions. Meta sidecars append ExtMeta to the artifact path.
const (
	ExtSource   = ".sa"
	ExtDeclAST  = ".decl"
	ExtObject   = ".o"
	ExtHeader   = ".h"
	ExtDeps     = ".deps"
	ExtMeta     = ".meta"
	ExtPreamble = ".pch"
)

// UnitFiles holds every path associated with one unit. Artifact paths
// mirror the unit's position under the source root.
type UnitFiles struct {
	Source  string // <sourceRoot>/<unit>.sa
	DeclAST string // <buildRoot>/<unit>.decl
	Object  string // <buildRoot>/<unit>.o
	Header  string // <headerDir>/<unit>.h
	Deps    string // <buildRoot>/<unit>.deps
}

// DeclMeta is the hash-meta sidecar of the declaration artifact.
func (f *UnitFiles) DeclMeta() string { return f.DeclAST + ExtMeta }

// ObjectMeta is the hash-meta sidecar of the object artifact.
func (f *UnitFiles) ObjectMeta() string { return f.Object + ExtMeta }

// DepsMeta is the hash-meta sidecar of the dependency list.
func (f *UnitFiles) DepsMeta() string { return f.Deps + ExtMeta }

// FilesInfo is the per-unit path table. Rows are added during source
// collection, possibly from several workers, and read-only afterwards.
type FilesInfo struct {
	sourceRoot string
	buildRoot  string
	headerDir  string

	mu     sync.RWMutex
	byUnit map[source.UnitID]*UnitFiles
}

func NewFilesInfo(cfg *Config) *FilesInfo {
	return &FilesInfo{
		sourceRoot: cfg.SourceRoot,
		buildRoot:  cfg.BuildRoot,
		headerDir:  cfg.HeaderDir,
		byUnit:     make(map[source.UnitID]*UnitFiles),
	}
}

// Add computes and stores the path row for a unit. unitPath is the
// slash-separated unit path relative to the source root, no extension.
func (fi *FilesInfo) Add(id source.UnitID, unitPath string) *UnitFiles {
	rel := filepath.FromSlash(unitPath)
	row := &UnitFiles{
		Source:  filepath.Join(fi.sourceRoot, rel+ExtSource),
		DeclAST: filepath.Join(fi.buildRoot, rel+ExtDeclAST),
		Object:  filepath.Join(fi.buildRoot, rel+ExtObject),
		Header:  filepath.Join(fi.headerDir, rel+ExtHeader),
		Deps:    filepath.Join(fi.buildRoot, rel+ExtDeps),
	}
	fi.mu.Lock()
	fi.byUnit[id] = row
	fi.mu.Unlock()
	return row
}

// Get returns the row for id, or nil.
func (fi *FilesInfo) Get(id source.UnitID) *UnitFiles {
	fi.mu.RLock()
	defer fi.mu.RUnlock()
	return fi.byUnit[id]
}

// PreamblePath is the shared preamble artifact location.
func (fi *FilesInfo) PreamblePath() string {
	return filepath.Join(fi.buildRoot, "preamble"+ExtPreamble)
}

// PreambleMeta is the preamble's hash-meta sidecar.
func (fi *FilesInfo) PreambleMeta() string {
	return fi.PreamblePath() + ExtMeta
}
