package pipeline

import "testing"

func TestCountingSink(t *testing.T) {
	var s CountingSink
	s.OnEvent(Event{Phase: PhaseCodegen, Status: StatusDone})
	s.OnEvent(Event{Phase: PhaseCodegen, Status: StatusDone})
	s.OnEvent(Event{Phase: PhaseCodegen, Status: StatusSkipped})

	if got := s.Count(StatusDone); got != 2 {
		t.Fatalf("done count = %d, want 2", got)
	}
	if got := s.Count(StatusSkipped); got != 1 {
		t.Fatalf("skipped count = %d, want 1", got)
	}
	if got := s.Count(StatusError); got != 0 {
		t.Fatalf("error count = %d, want 0", got)
	}
}

func TestMultiSinkFansOut(t *testing.T) {
	var a, b CountingSink
	ch := make(chan Event, 1)
	m := MultiSink{&a, &b, nil, ChannelSink{Ch: ch}}

	m.OnEvent(Event{Phase: PhaseLink, Status: StatusDone})

	if a.Count(StatusDone) != 1 || b.Count(StatusDone) != 1 {
		t.Fatalf("counting sinks saw %d/%d events, want 1/1",
			a.Count(StatusDone), b.Count(StatusDone))
	}
	select {
	case ev := <-ch:
		if ev.Phase != PhaseLink {
			t.Fatalf("channel sink got phase %q, want %q", ev.Phase, PhaseLink)
		}
	default:
		t.Fatal("channel sink received nothing")
	}
}
