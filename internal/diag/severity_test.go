package diag

import "testing"

func TestSeverityOrder(t *testing.T) {
	if !(SevInfo < SevWarning && SevWarning < SevError) {
		t.Fatal("severity levels must be ordered info < warning < error")
	}
}

func TestSeverityString(t *testing.T) {
	cases := map[Severity]string{
		SevInfo:    "info",
		SevWarning: "warning",
		SevError:   "error",
	}
	for sev, want := range cases {
		if got := sev.String(); got != want {
			t.Errorf("Severity(%d).String() = %q, want %q", sev, got, want)
		}
	}
}
