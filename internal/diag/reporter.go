package diag

// Reporter is the minimal contract for receiving diagnostics from phases.
// Implementations: BagReporter (stores into a Bag), NopReporter.
type Reporter interface {
	Report(code Code, sev Severity, unit string, msg string, notes []Note)
}

// BagReporter stores every reported diagnostic into Bag.
type BagReporter struct {
	Bag *Bag
}

func (r BagReporter) Report(code Code, sev Severity, unit string, msg string, notes []Note) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(Diagnostic{
		Severity: sev,
		Code:     code,
		Unit:     unit,
		Message:  msg,
		Notes:    notes,
	})
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Report(Code, Severity, string, string, []Note) {}

// Error is a shortcut for SevError reports.
func Error(r Reporter, code Code, unit, msg string) {
	if r != nil {
		r.Report(code, SevError, unit, msg, nil)
	}
}

// Warning is a shortcut for SevWarning reports.
func Warning(r Reporter, code Code, unit, msg string) {
	if r != nil {
		r.Report(code, SevWarning, unit, msg, nil)
	}
}
