package driver

import (
	"fmt"
	"sync"
)

// Status is the shared failure state of one build run. The first failure
// wins: later failures are dropped, warnings accumulate and never make
// the run invalid on their own.
type Status struct {
	mu       sync.Mutex
	failed   bool
	message  string
	warnings []string
}

// Valid reports whether no failure has been recorded.
func (s *Status) Valid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.failed
}

// Fail records the first failure message. Subsequent calls are no-ops.
func (s *Status) Fail(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed {
		return
	}
	s.failed = true
	s.message = msg
}

// Failf is Fail with formatting.
func (s *Status) Failf(format string, args ...any) {
	s.Fail(fmt.Sprintf(format, args...))
}

// Message returns the recorded failure message, empty while valid.
func (s *Status) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// Warn records a non-fatal problem.
func (s *Status) Warn(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = append(s.warnings, msg)
}

// Warnf is Warn with formatting.
func (s *Status) Warnf(format string, args ...any) {
	s.Warn(fmt.Sprintf(format, args...))
}

// Warnings returns a copy of the accumulated warnings.
func (s *Status) Warnings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.warnings))
	copy(out, s.warnings)
	return out
}
