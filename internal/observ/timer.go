// Package observ tracks wall-clock timings of the build phases.
package observ

import (
	"fmt"
	"strings"
	"time"
)

// span is one timed phase with an optional result note.
type span struct {
	name  string
	start time.Time
	dur   time.Duration
	note  string
}

// Timer records the durations of sequential build phases. The driver owns
// it and runs phases one at a time, so there is no locking.
type Timer struct {
	spans []span
}

func NewTimer() *Timer { return &Timer{} }

// Begin opens a phase and returns the handle End expects.
func (t *Timer) Begin(name string) int {
	t.spans = append(t.spans, span{name: name, start: time.Now()})
	return len(t.spans) - 1
}

// End closes the phase opened by Begin. The note is shown next to the
// duration, e.g. a unit count or "skipped".
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.spans) {
		return
	}
	s := &t.spans[idx]
	s.dur = time.Since(s.start)
	s.note = note
}

// Summary renders one line per phase plus a total. Empty when no phase
// was timed.
func (t *Timer) Summary() string {
	if len(t.spans) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("timings:\n")
	var total time.Duration
	for _, s := range t.spans {
		total += s.dur
		fmt.Fprintf(&b, "  %-14s %10s", s.name, s.dur.Round(10*time.Microsecond))
		if s.note != "" {
			fmt.Fprintf(&b, "  (%s)", s.note)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "  %-14s %10s\n", "total", total.Round(10*time.Microsecond))
	return b.String()
}
