// Package clock provides the engine's logical time source. Readings never
// go backwards, which is all auction expiry relies on.
package clock

import (
	"sync"
	"time"
)

// Clock returns the current logical time in unix seconds
type Clock interface {
	Now() int64
}

type system struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewSystem returns a wall clock reading that is clamped to be monotonic.
func NewSystem() Clock {
	return &system{now: time.Now}
}

func (s *system) Now() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.now().Unix(); t > s.last {
		s.last = t
	}
	return s.last
}

// Manual is a clock moved by hand, used by tests and simulations
type Manual struct {
	mu  sync.Mutex
	now int64
}

func NewManual(start int64) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by seconds; negative values are ignored
func (m *Manual) Advance(seconds int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seconds > 0 {
		m.now += seconds
	}
	return m.now
}
