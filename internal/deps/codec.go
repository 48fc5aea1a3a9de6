package deps

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrSchemaMismatch reports a record written by an incompatible version.
// Callers treat it as "not up to date", never as a hard failure.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// WriteMetaFile serializes meta to path atomically (temp file + rename).
func WriteMetaFile(path string, meta *Meta) error {
	meta.Schema = SchemaVersion
	return writeFile(path, meta)
}

// ReadMetaFile reads a hash-meta sidecar. Returns (nil, nil) when the file
// does not exist.
func ReadMetaFile(path string) (*Meta, error) {
	var meta Meta
	ok, err := readFile(path, &meta)
	if err != nil || !ok {
		return nil, err
	}
	if meta.Schema != SchemaVersion {
		return nil, fmt.Errorf("%s: %w", path, ErrSchemaMismatch)
	}
	return &meta, nil
}

// WriteDepsFile serializes a unit dependency record atomically.
func WriteDepsFile(path string, d *UnitDeps) error {
	d.Schema = SchemaVersion
	return writeFile(path, d)
}

// ReadDepsFile reads a unit dependency record. Returns (nil, nil) when the
// file does not exist.
func ReadDepsFile(path string) (*UnitDeps, error) {
	var d UnitDeps
	ok, err := readFile(path, &d)
	if err != nil || !ok {
		return nil, err
	}
	if d.Schema != SchemaVersion {
		return nil, fmt.Errorf("%s: %w", path, ErrSchemaMismatch)
	}
	return &d, nil
}

func writeFile(path string, payload any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Atomic replace.
	return os.Rename(tmp, path)
}

func readFile(path string, out any) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() { _ = f.Close() }()

	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(out); err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	return true, nil
}
