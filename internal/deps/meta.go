package deps

import (
	"strata/internal/source"
)

// SkipRange is an opaque source fragment descriptor. The orchestrator never
// interprets it; it is passed through to header generation.
type SkipRange struct {
	Start                uint64
	End                  uint64
	ReplaceWithSemicolon bool
}

// Meta is the hash-meta sidecar persisted next to every generated artifact.
// Written by the frontend after a successful (re)build, read by the
// orchestrator before deciding whether to rebuild.
type Meta struct {
	Schema uint16

	// SourceHash is the content hash of the unit source at the time the
	// artifact was produced.
	SourceHash source.Digest
	// ArtifactHash is the content hash of the produced artifact.
	ArtifactHash source.Digest

	SkipRanges []SkipRange
}

// NewMeta builds a schema-stamped meta record.
func NewMeta(sourceHash, artifactHash source.Digest, skips []SkipRange) *Meta {
	return &Meta{
		Schema:       SchemaVersion,
		SourceHash:   sourceHash,
		ArtifactHash: artifactHash,
		SkipRanges:   skips,
	}
}
