package pipeline

import "sync"

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// NopSink discards events.
type NopSink struct{}

func (NopSink) OnEvent(Event) {}

// CountingSink tallies per-status event counts; used by the plain text
// reporter and in tests.
type CountingSink struct {
	mu     sync.Mutex
	counts map[Status]int
}

func (s *CountingSink) OnEvent(evt Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts == nil {
		s.counts = make(map[Status]int)
	}
	s.counts[evt.Status]++
}

// Count returns how many events with the given status arrived.
func (s *CountingSink) Count(status Status) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[status]
}

// MultiSink fans one event out to several sinks.
type MultiSink []ProgressSink

func (m MultiSink) OnEvent(evt Event) {
	for _, s := range m {
		if s != nil {
			s.OnEvent(evt)
		}
	}
}
