// Package diag defines the diagnostic model shared by all build phases.
//
// Diagnostic is the central record: a Severity, a stable numeric Code, the
// unit path the finding belongs to (empty for run-wide findings) and a
// human-oriented message. Producers emit through a Reporter; the driver
// accumulates into a Bag and renders once, at the end of the run.
//
// The package performs no formatting or IO itself.
package diag
