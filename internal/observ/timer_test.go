package observ

import (
	"strings"
	"testing"
)

func TestTimerSummary(t *testing.T) {
	timer := NewTimer()

	idx := timer.Begin("collect")
	timer.End(idx, "3 units")
	idx = timer.Begin("link")
	timer.End(idx, "")

	out := timer.Summary()
	for _, want := range []string{"timings:", "collect", "(3 units)", "link", "total"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestTimerEmptySummary(t *testing.T) {
	if out := NewTimer().Summary(); out != "" {
		t.Fatalf("empty timer produced %q", out)
	}
}

func TestTimerEndOutOfRange(t *testing.T) {
	timer := NewTimer()
	timer.End(0, "n/a")
	timer.End(-1, "n/a")
	if out := timer.Summary(); out != "" {
		t.Fatalf("out-of-range End must not record spans, got %q", out)
	}
}
