// Package deps defines the records exchanged with the compiler frontend:
// per-unit dependency lists emitted by parse-import, and hash-meta sidecars
// written next to every generated artifact.
package deps

import (
	"sort"

	"strata/internal/source"
)

// Current schema version - increment when the on-disk format changes.
const SchemaVersion uint16 = 1

// UnitDeps is the dependency record the frontend emits for one unit.
// Dependency entries are relative unit paths (no extension).
type UnitDeps struct {
	Schema uint16

	// Path is the unit path relative to the source root, no extension.
	Path string

	// DeclarationDeps are units whose declarations the declaration needs.
	DeclarationDeps []string
	// DefinitionDeps are units whose declarations only the definition needs.
	DefinitionDeps []string

	// Public marks the unit as part of the library's external surface.
	Public bool
	// External marks a library-only unit whose body is not built here.
	External bool
}

// UnitLists collects the dependency records of a whole run, keyed by
// interned unit path.
type UnitLists struct {
	interner *source.Interner
	byUnit   map[source.UnitID]*UnitDeps
}

func NewUnitLists(interner *source.Interner) *UnitLists {
	return &UnitLists{
		interner: interner,
		byUnit:   make(map[source.UnitID]*UnitDeps),
	}
}

// Add records the dependency list for its unit, interning the path.
// The last record for a unit wins.
func (l *UnitLists) Add(d *UnitDeps) source.UnitID {
	id := l.interner.Intern(d.Path)
	l.byUnit[id] = d
	return id
}

// Get returns the record for id, or nil.
func (l *UnitLists) Get(id source.UnitID) *UnitDeps {
	return l.byUnit[id]
}

func (l *UnitLists) Len() int { return len(l.byUnit) }

// Resolve maps a dependency path to the id of a collected unit.
// Returns false when no unit with that path was added.
func (l *UnitLists) Resolve(path string) (source.UnitID, bool) {
	id, ok := l.interner.Find(path)
	if !ok {
		return source.NoUnitID, false
	}
	if _, ok := l.byUnit[id]; !ok {
		return source.NoUnitID, false
	}
	return id, ok
}

// Interner exposes the shared path interner.
func (l *UnitLists) Interner() *source.Interner { return l.interner }

// UnitIDs returns all recorded unit ids in deterministic (path) order.
func (l *UnitLists) UnitIDs() []source.UnitID {
	ids := make([]source.UnitID, 0, len(l.byUnit))
	for id := range l.byUnit {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return l.interner.MustLookup(ids[i]) < l.interner.MustLookup(ids[j])
	})
	return ids
}
