package diag

// Severity ranks a diagnostic by how hard it should stop a build run.
// The numeric order matters: Bag.Sort and the quiet-mode filter compare
// severities directly.
type Severity uint8

const (
	// SevInfo marks purely informational output.
	SevInfo Severity = iota
	// SevWarning marks a recoverable problem. The run continues, and the
	// driver usually answers with a conservative rebuild.
	SevWarning
	// SevError marks a failure that invalidates the run.
	SevError
)

// String returns the lowercase label used in rendered diagnostics.
func (s Severity) String() string {
	switch s {
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "info"
}
