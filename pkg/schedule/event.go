package schedule

import (
	"context"
	"time"
)

type EventType int

const (
	BeforeMarketOpen EventType = iota
	MarketOpen
	MarketClose
	AfterMarketClose

	eventTypeCount
)

func (t EventType) String() string {
	switch t {
	case BeforeMarketOpen:
		return "before-market-open"
	case MarketOpen:
		return "market-open"
	case MarketClose:
		return "market-close"
	case AfterMarketClose:
		return "after-market-close"
	default:
		return "unknown"
	}
}

// TimeEvent is a single occurrence of a recurring daily trigger.
type TimeEvent struct {
	Type      EventType
	TimeStamp time.Time
}

type Handler func(ctx context.Context, event TimeEvent)

// Calendar holds the fixed daily offsets (from midnight UTC) at which each
// event type triggers.
type Calendar struct {
	offsets [eventTypeCount]time.Duration
}

// NewCalendar returns a calendar with regular US-equity-like session times.
func NewCalendar() *Calendar {
	c := &Calendar{}
	c.offsets[BeforeMarketOpen] = 8 * time.Hour
	c.offsets[MarketOpen] = 9*time.Hour + 30*time.Minute
	c.offsets[MarketClose] = 16 * time.Hour
	c.offsets[AfterMarketClose] = 16*time.Hour + 30*time.Minute
	return c
}

func (c *Calendar) SetOffset(t EventType, offset time.Duration) {
	c.offsets[t] = offset
}

func (c *Calendar) Offset(t EventType) time.Duration {
	return c.offsets[t]
}

// TriggerTime is the absolute instant at which the event fires on the given
// calendar day.
func (c *Calendar) TriggerTime(t EventType, day time.Time) time.Time {
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return midnight.Add(c.offsets[t])
}

// NextAfter returns the earliest trigger strictly after now, across all event
// types. Simultaneous triggers tie-break in event type order.
func (c *Calendar) NextAfter(now time.Time) TimeEvent {
	var best TimeEvent
	found := false

	for t := EventType(0); t < eventTypeCount; t++ {
		candidate := c.TriggerTime(t, now)
		if !candidate.After(now) {
			candidate = c.TriggerTime(t, now.AddDate(0, 0, 1))
		}
		if !found || candidate.Before(best.TimeStamp) {
			best = TimeEvent{Type: t, TimeStamp: candidate}
			found = true
		}
	}
	return best
}
