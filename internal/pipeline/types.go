// Package pipeline defines the progress events a build run emits and the
// sinks that consume them (plain text reporter, TUI).
package pipeline

import "time"

// Phase describes a high-level build phase.
type Phase string

const (
	// PhaseCollect is the source collection phase.
	PhaseCollect Phase = "collect"
	// PhasePreamble is the shared-preamble build phase.
	PhasePreamble Phase = "preamble"
	// PhaseParseImport is the dependency discovery phase.
	PhaseParseImport Phase = "parse-import"
	// PhaseSolve is the graph construction phase.
	PhaseSolve Phase = "solve"
	// PhaseCodegen is the declaration/object build phase.
	PhaseCodegen Phase = "codegen"
	// PhaseLink is the final link phase.
	PhaseLink Phase = "link"
)

// Status captures progress state within a phase.
type Status string

const (
	// StatusQueued indicates the work item is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the work item is in progress.
	StatusWorking Status = "working"
	// StatusSkipped indicates the work item was already up to date.
	StatusSkipped Status = "skipped"
	// StatusDone indicates the work item finished.
	StatusDone Status = "done"
	// StatusError indicates the work item failed.
	StatusError Status = "error"
)

// Event reports progress for a unit (or for the whole phase when Unit is
// empty).
type Event struct {
	Unit    string
	Phase   Phase
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Implementations must tolerate
// concurrent OnEvent calls: codegen emits from every worker.
type ProgressSink interface {
	OnEvent(Event)
}
