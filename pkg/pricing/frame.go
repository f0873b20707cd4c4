package pricing

import (
	"sort"
	"time"

	"quantsim/pkg/common"
	"quantsim/pkg/utility/fixed"
)

type frameKey struct {
	ticker common.Ticker
	field  common.PriceField
}

type frameRow struct {
	ts     time.Time
	values map[frameKey]fixed.Point
}

// Frame is a time-ordered container of (ticker, field) samples. A missing
// sample is structurally absent: lookups return (Zero, false) instead of a
// sentinel value, so partial misses never look like prices.
type Frame struct {
	rows []frameRow
}

func NewFrame() *Frame {
	return &Frame{}
}

// Set records a sample, creating the row for ts if necessary. Rows stay
// sorted regardless of insertion order.
func (f *Frame) Set(ts time.Time, ticker common.Ticker, field common.PriceField, value fixed.Point) {
	idx := sort.Search(len(f.rows), func(i int) bool {
		return !f.rows[i].ts.Before(ts)
	})

	if idx < len(f.rows) && f.rows[idx].ts.Equal(ts) {
		f.rows[idx].values[frameKey{ticker, field}] = value
		return
	}

	r := frameRow{ts: ts, values: map[frameKey]fixed.Point{{ticker, field}: value}}
	f.rows = append(f.rows, frameRow{})
	copy(f.rows[idx+1:], f.rows[idx:])
	f.rows[idx] = r
}

func (f *Frame) Len() int {
	return len(f.rows)
}

func (f *Frame) IsEmpty() bool {
	return len(f.rows) == 0
}

// Times returns the row timestamps in ascending order.
func (f *Frame) Times() []time.Time {
	out := make([]time.Time, len(f.rows))
	for i, r := range f.rows {
		out[i] = r.ts
	}
	return out
}

func (f *Frame) Start() (time.Time, bool) {
	if len(f.rows) == 0 {
		return time.Time{}, false
	}
	return f.rows[0].ts, true
}

func (f *Frame) End() (time.Time, bool) {
	if len(f.rows) == 0 {
		return time.Time{}, false
	}
	return f.rows[len(f.rows)-1].ts, true
}

// Value returns the sample at exactly ts.
func (f *Frame) Value(ts time.Time, ticker common.Ticker, field common.PriceField) (fixed.Point, bool) {
	idx := sort.Search(len(f.rows), func(i int) bool {
		return !f.rows[i].ts.Before(ts)
	})
	if idx >= len(f.rows) || !f.rows[idx].ts.Equal(ts) {
		return fixed.Zero, false
	}
	v, ok := f.rows[idx].values[frameKey{ticker, field}]
	return v, ok
}

// AsOf returns the latest sample at or before ts.
func (f *Frame) AsOf(ts time.Time, ticker common.Ticker, field common.PriceField) (fixed.Point, bool) {
	idx := sort.Search(len(f.rows), func(i int) bool {
		return f.rows[i].ts.After(ts)
	})
	for i := idx - 1; i >= 0; i-- {
		if v, ok := f.rows[i].values[frameKey{ticker, field}]; ok {
			return v, true
		}
	}
	return fixed.Zero, false
}

// Clip returns the sub-frame with start <= ts <= end. The returned frame
// shares row storage with the receiver and must be treated as read-only.
func (f *Frame) Clip(start, end time.Time) *Frame {
	lo := sort.Search(len(f.rows), func(i int) bool {
		return !f.rows[i].ts.Before(start)
	})
	hi := sort.Search(len(f.rows), func(i int) bool {
		return f.rows[i].ts.After(end)
	})
	if lo > hi {
		lo = hi
	}
	return &Frame{rows: f.rows[lo:hi]}
}

// Tail returns the last n rows (all rows when fewer are present). Shares row
// storage with the receiver.
func (f *Frame) Tail(n int) *Frame {
	if n >= len(f.rows) {
		return &Frame{rows: f.rows}
	}
	return &Frame{rows: f.rows[len(f.rows)-n:]}
}
