package clock

import (
	"errors"
	"sync"
	"time"
)

var ErrTimeReversal = errors.New("settable clock may only move forward")

// Clock supplies the current instant. Every time-dependent component reads
// through this interface so the backtest and live paths stay polymorphic.
type Clock interface {
	Now() time.Time
}

// RealTime is the live-trading clock.
type RealTime struct{}

func (RealTime) Now() time.Time { return time.Now() }

// Settable is the backtest clock. It is advanced by the scheduler and is
// monotonic: moving it backwards is an error.
type Settable struct {
	mu  sync.RWMutex
	now time.Time
}

func NewSettable(start time.Time) *Settable {
	return &Settable{now: start}
}

func (s *Settable) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.now
}

func (s *Settable) Set(t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.Before(s.now) {
		return ErrTimeReversal
	}
	s.now = t
	return nil
}
