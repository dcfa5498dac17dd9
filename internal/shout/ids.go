package shout

import (
	"sync"
	"time"
)

// IDSource issues strictly increasing message ids. The issued id is
// max(last+1, wall-clock millis), so ids approximate real time under low load
// but never repeat when multiple messages are accepted within the same
// millisecond, and never regress when the system clock steps backward.
type IDSource struct {
	mu   sync.Mutex
	last int64
}

// NewIDSource constructs an IDSource starting below the current wall clock.
func NewIDSource() *IDSource { return &IDSource{} }

// Next issues the next id for a message accepted at time now.
func (s *IDSource) Next(now time.Time) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := now.UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}
