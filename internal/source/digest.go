package source

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// Digest is a fixed 256-bit content hash.
type Digest [32]byte

// HashBytes returns the digest of content.
func HashBytes(content []byte) Digest {
	return sha256.Sum256(content)
}

// HashFile returns the digest of the file at path.
func HashFile(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return Digest{}, err
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out, nil
}

// Combine builds an aggregate hash: H(content || dep1 || dep2 ...).
// The deps order must be deterministic.
func Combine(content Digest, deps ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range deps {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// IsZero reports whether d is the zero digest.
func (d Digest) IsZero() bool {
	var z Digest
	return d == z
}

// Short returns a short hex prefix for logs.
func (d Digest) Short() string {
	return hex.EncodeToString(d[:4])
}
