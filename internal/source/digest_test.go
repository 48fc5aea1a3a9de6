package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHashBytesDeterministic(t *testing.T) {
	a := HashBytes([]byte("package a"))
	b := HashBytes([]byte("package a"))
	if a != b {
		t.Error("same content must hash equal")
	}
	if a == HashBytes([]byte("package b")) {
		t.Error("different content must hash different")
	}
	if a.IsZero() {
		t.Error("digest of non-empty content must not be zero")
	}
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unit.sa")
	content := []byte("unit core::app\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if got != HashBytes(content) {
		t.Error("HashFile must agree with HashBytes")
	}

	if _, err := HashFile(filepath.Join(dir, "missing.sa")); err == nil {
		t.Error("HashFile on a missing file must fail")
	}
}

func TestCombineOrderSensitive(t *testing.T) {
	content := HashBytes([]byte("c"))
	d1 := HashBytes([]byte("d1"))
	d2 := HashBytes([]byte("d2"))

	if Combine(content, d1, d2) == Combine(content, d2, d1) {
		t.Error("Combine must be order sensitive")
	}
	if Combine(content) == content {
		t.Error("Combine with no deps must still mix the content hash")
	}
}
