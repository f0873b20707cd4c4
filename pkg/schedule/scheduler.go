package schedule

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"quantsim/pkg/clock"
)

// ErrEndOfData terminates the simulation loop: the next trigger would fall
// past the end of the underlying price stream.
var ErrEndOfData = errors.New("no more events within the data horizon")

// Scheduler owns the authoritative mapping from event type to subscriber list
// and drives simulated time forward. Dispatch is strictly single-threaded:
// within one event, handlers run synchronously in subscription order, and the
// clock does not advance until all of them return.
type Scheduler struct {
	clk      *clock.Settable
	calendar *Calendar
	horizon  time.Time

	subscribers [eventTypeCount][]Handler

	// Statistics
	runTime       time.Duration
	eventCount    atomic.Uint64
	dispatchCount atomic.Uint64
}

func NewScheduler(clk *clock.Settable, calendar *Calendar, horizon time.Time) *Scheduler {
	return &Scheduler{
		clk:      clk,
		calendar: calendar,
		horizon:  horizon,
	}
}

// Subscribe registers a handler for one event type. Subscription happens once
// at session construction; there is no unsubscribe.
func (s *Scheduler) Subscribe(t EventType, h Handler) {
	s.subscribers[t] = append(s.subscribers[t], h)
}

// DispatchNext advances the clock to the next trigger and invokes its
// subscribers. Returns ErrEndOfData once the next trigger falls past the
// horizon.
func (s *Scheduler) DispatchNext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	event := s.calendar.NextAfter(s.clk.Now())
	if event.TimeStamp.After(s.horizon) {
		return ErrEndOfData
	}

	if err := s.clk.Set(event.TimeStamp); err != nil {
		return err
	}

	s.eventCount.Add(1)
	for _, handler := range s.subscribers[event.Type] {
		s.dispatchCount.Add(1)
		handler(ctx, event)
	}
	return nil
}

// Run executes the cooperative dispatch loop until the horizon is reached or
// the context is cancelled. The returned channel yields the terminal error.
func (s *Scheduler) Run(ctx context.Context) <-chan error {
	done := make(chan error, 1)

	go func() {
		start := time.Now()
		defer func() {
			s.runTime += time.Since(start)
		}()

		for {
			select {
			case <-ctx.Done():
				done <- ctx.Err()
				return
			default:
				if err := s.DispatchNext(ctx); err != nil {
					done <- err
					return
				}
			}
		}
	}()
	return done
}

type Statistics struct {
	RunTime       time.Duration
	EventCount    uint64
	DispatchCount uint64
}

func (s *Scheduler) Statistics() Statistics {
	return Statistics{
		RunTime:       s.runTime,
		EventCount:    s.eventCount.Load(),
		DispatchCount: s.dispatchCount.Load(),
	}
}

func (s Statistics) Print() {
	slog.Info("scheduler statistics",
		"run_time", s.RunTime,
		"event_count", s.EventCount,
		"dispatch_count", s.DispatchCount)
}
