package deps

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"strata/internal/source"
)

func TestMetaRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "app.decl.meta")

	meta := NewMeta(
		source.HashBytes([]byte("src")),
		source.HashBytes([]byte("artifact")),
		[]SkipRange{{Start: 10, End: 42, ReplaceWithSemicolon: true}},
	)

	if err := WriteMetaFile(path, meta); err != nil {
		t.Fatalf("WriteMetaFile: %v", err)
	}

	got, err := ReadMetaFile(path)
	if err != nil {
		t.Fatalf("ReadMetaFile: %v", err)
	}
	if got == nil {
		t.Fatal("meta not found after write")
	}
	if got.SourceHash != meta.SourceHash || got.ArtifactHash != meta.ArtifactHash {
		t.Error("hashes did not survive the round trip")
	}
	if len(got.SkipRanges) != 1 || got.SkipRanges[0] != meta.SkipRanges[0] {
		t.Errorf("skip ranges did not survive: %+v", got.SkipRanges)
	}
}

func TestReadMetaMissingFile(t *testing.T) {
	got, err := ReadMetaFile(filepath.Join(t.TempDir(), "nope.meta"))
	if err != nil {
		t.Fatalf("missing file must not be an error, got %v", err)
	}
	if got != nil {
		t.Error("missing file must yield a nil meta")
	}
}

func TestReadMetaCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.meta")
	if err := os.WriteFile(path, []byte("not msgpack at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadMetaFile(path); err == nil {
		t.Error("corrupt meta must surface an error")
	}
}

func TestReadMetaSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.meta")
	meta := NewMeta(source.Digest{}, source.Digest{}, nil)
	if err := WriteMetaFile(path, meta); err != nil {
		t.Fatal(err)
	}

	// Rewrite with a bumped schema to simulate a future version.
	meta.Schema = SchemaVersion + 1
	if err := writeFile(path, meta); err != nil {
		t.Fatal(err)
	}

	_, err := ReadMetaFile(path)
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Errorf("want ErrSchemaMismatch, got %v", err)
	}
}

func TestDepsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.deps")

	rec := &UnitDeps{
		Path:            "core/app",
		DeclarationDeps: []string{"lib/math", "lib/io"},
		DefinitionDeps:  []string{"lib/fmt"},
		Public:          true,
	}
	if err := WriteDepsFile(path, rec); err != nil {
		t.Fatalf("WriteDepsFile: %v", err)
	}

	got, err := ReadDepsFile(path)
	if err != nil {
		t.Fatalf("ReadDepsFile: %v", err)
	}
	if got.Path != rec.Path || !got.Public || got.External {
		t.Errorf("record flags/path did not survive: %+v", got)
	}
	if len(got.DeclarationDeps) != 2 || got.DeclarationDeps[0] != "lib/math" {
		t.Errorf("declaration deps: %v", got.DeclarationDeps)
	}
	if len(got.DefinitionDeps) != 1 || got.DefinitionDeps[0] != "lib/fmt" {
		t.Errorf("definition deps: %v", got.DefinitionDeps)
	}
}

func TestUnitListsDeterministicOrder(t *testing.T) {
	lists := NewUnitLists(source.NewInterner())
	lists.Add(&UnitDeps{Path: "z/last"})
	lists.Add(&UnitDeps{Path: "a/first"})
	lists.Add(&UnitDeps{Path: "m/middle"})

	ids := lists.UnitIDs()
	want := []string{"a/first", "m/middle", "z/last"}
	for i, id := range ids {
		if got := lists.Interner().MustLookup(id); got != want[i] {
			t.Fatalf("UnitIDs[%d] = %q, want %q", i, got, want[i])
		}
	}
}
