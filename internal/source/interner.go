package source

import (
	"fmt"
	"slices"
	"sync"

	"fortio.org/safecast"
)

// UnitID identifies an interned unit path. A unit's declaration and
// definition artifacts share one UnitID.
type UnitID uint32

const NoUnitID UnitID = 0

// Interner maps unit path strings to compact UnitIDs, bidirectionally.
// Safe for concurrent insertion: parse-import workers intern paths from
// multiple goroutines.
type Interner struct {
	mu   sync.RWMutex
	byID []string          // index -> path (byID[0] = "" for NoUnitID)
	ids  map[string]UnitID // path -> ID
}

func NewInterner() *Interner {
	return &Interner{
		byID: []string{""},
		ids:  map[string]UnitID{"": 0},
	}
}

// Intern inserts the path and returns its ID.
// Returns the existing ID if the path is already interned.
func (i *Interner) Intern(path string) UnitID {
	i.mu.RLock()
	id, ok := i.ids[path]
	i.mu.RUnlock()
	if ok {
		return id
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if id, ok := i.ids[path]; ok {
		return id
	}

	// Own copy, detached from the caller's backing buffer.
	cpy := string([]byte(path))
	id, err := safecast.Conv[UnitID](len(i.byID))
	if err != nil {
		panic(fmt.Errorf("unit id overflow: %w", err))
	}
	i.byID = append(i.byID, cpy)
	i.ids[cpy] = id
	return id
}

// Lookup returns the path for id, and false if id is not valid.
func (i *Interner) Lookup(id UnitID) (string, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if int(id) >= len(i.byID) {
		return "", false
	}
	return i.byID[id], true
}

// MustLookup returns the path for id. Panics on an invalid ID.
func (i *Interner) MustLookup(id UnitID) string {
	s, ok := i.Lookup(id)
	if !ok {
		panic("invalid unit ID")
	}
	return s
}

// Find returns the id for an already interned path without interning it.
func (i *Interner) Find(path string) (UnitID, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	id, ok := i.ids[path]
	return id, ok
}

// Has reports whether id is valid.
func (i *Interner) Has(id UnitID) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return int(id) < len(i.byID)
}

// Len returns the number of interned paths, NoUnitID included.
// Never less than 1.
func (i *Interner) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.byID)
}

// Snapshot returns a copy of all interned paths.
func (i *Interner) Snapshot() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return slices.Clone(i.byID)
}
