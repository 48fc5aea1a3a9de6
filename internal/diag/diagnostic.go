package diag

// Note attaches secondary context to a diagnostic.
type Note struct {
	Unit string
	Msg  string
}

// Diagnostic is a single build finding. Unit is the relative unit path the
// finding belongs to; empty for run-wide findings.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Unit     string
	Message  string
	Notes    []Note
}

// WithNote returns a copy of d with an extra note appended.
func (d Diagnostic) WithNote(unit, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Unit: unit, Msg: msg})
	return d
}
