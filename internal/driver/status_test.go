package driver

import (
	"sync"
	"testing"
)

func TestStatusFirstFailureWins(t *testing.T) {
	var s Status
	if !s.Valid() {
		t.Fatalf("fresh status must be valid")
	}
	s.Fail("first")
	s.Fail("second")
	if s.Valid() {
		t.Fatalf("failed status reports valid")
	}
	if got := s.Message(); got != "first" {
		t.Fatalf("message = %q, want %q", got, "first")
	}
}

func TestStatusWarningsDoNotInvalidate(t *testing.T) {
	var s Status
	s.Warnf("stale meta for %s", "core/a")
	s.Warn("another")
	if !s.Valid() {
		t.Fatalf("warnings must not invalidate the run")
	}
	if got := len(s.Warnings()); got != 2 {
		t.Fatalf("warning count = %d, want 2", got)
	}
}

func TestStatusConcurrentFail(t *testing.T) {
	var s Status
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Failf("failure %d", i)
		}(i)
	}
	wg.Wait()
	if s.Valid() {
		t.Fatalf("status must be failed")
	}
	if s.Message() == "" {
		t.Fatalf("one failure message must survive")
	}
}
