package pricing

import (
	"context"
	"fmt"
	"time"

	"quantsim/pkg/clock"
	"quantsim/pkg/common"
	"quantsim/pkg/schedule"
	"quantsim/pkg/utility/fixed"
)

// lookBackMargin pads the calendar-day estimate used to fetch nBars trading
// days of history (trading-day to calendar-day ratio of roughly 365/252).
const lookBackMargin = 10

// marketHours resolves "the latest fully elapsed market event" against the
// current simulated instant. Shared by both oracle implementations.
type marketHours struct {
	clk      clock.Clock
	calendar *schedule.Calendar
}

// latestElapsed returns the trigger instant of the latest occurrence of the
// event no later than now. If the event has not fired today yet, that is
// yesterday's occurrence.
func (h marketHours) latestElapsed(t schedule.EventType) time.Time {
	now := h.clk.Now()
	today := h.calendar.TriggerTime(t, now)
	if now.Before(today) {
		return today.AddDate(0, 0, -1)
	}
	return today
}

// clampEnd clamps the caller's requested end boundary so that no sample past
// the latest fully elapsed market close can be returned. A zero end means
// "up to now".
func (h marketHours) clampEnd(end time.Time) time.Time {
	latest := h.latestElapsed(schedule.MarketClose)
	if end.IsZero() || end.After(latest) {
		return latest
	}
	return end
}

// rawGetter is the unclamped access used by the single-date price operations,
// which do their own event-time clipping (the open price of the current day
// is visible at the open trigger, before the day's close has elapsed).
type rawGetter interface {
	rawPrice(ctx context.Context, tickers []common.Ticker, fields []common.PriceField, start, end time.Time) (*Frame, error)
}

func historicalPrice(ctx context.Context, src Provider, hours marketHours,
	tickers []common.Ticker, fields []common.PriceField, nBars int) (*Frame, error) {

	latest := hours.latestElapsed(schedule.MarketClose)
	daysBack := int(float64(nBars)*365.0/252.0) + lookBackMargin
	start := latest.AddDate(0, 0, -daysBack)

	frame, err := src.GetPrice(ctx, tickers, fields, start, latest)
	if err != nil {
		return nil, err
	}
	if frame.Len() < nBars {
		return nil, fmt.Errorf("%w: tickers %v, date %s, %d requested, %d available",
			ErrInsufficientData, tickers, latest.Format(time.RFC3339), nBars, frame.Len())
	}
	return frame.Tail(nBars), nil
}

// singleDatePrice resolves one price per ticker at the current instant. When
// fill is set, missing samples forward-fill from the most recent available
// one; otherwise tickers without a sample at the exact instant are omitted.
func singleDatePrice(ctx context.Context, src rawGetter, hours marketHours,
	tickers []common.Ticker, fill bool) (map[common.Ticker]fixed.Point, error) {

	if len(tickers) == 0 {
		return map[common.Ticker]fixed.Point{}, nil
	}

	now := hours.clk.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start := dayStart.AddDate(0, 0, -7)

	frame, err := src.rawPrice(ctx, tickers, []common.PriceField{common.FieldOpen, common.FieldClose}, start, dayStart)
	if err != nil {
		return nil, err
	}

	openOffset := hours.calendar.Offset(schedule.MarketOpen)
	closeOffset := hours.calendar.Offset(schedule.MarketClose)

	prices := make(map[common.Ticker]fixed.Point, len(tickers))
	for _, ticker := range tickers {
		var last fixed.Point
		var haveLast, haveExact bool
		var exact fixed.Point

		// Bars are day-stamped; spread each into its open and close
		// trigger instants and keep only those already elapsed.
		for _, day := range frame.Times() {
			if v, ok := frame.Value(day, ticker, common.FieldOpen); ok {
				at := day.Add(openOffset)
				if !at.After(now) {
					last, haveLast = v, true
					if at.Equal(now) {
						exact, haveExact = v, true
					}
				}
			}
			if v, ok := frame.Value(day, ticker, common.FieldClose); ok {
				at := day.Add(closeOffset)
				if !at.After(now) {
					last, haveLast = v, true
					if at.Equal(now) {
						exact, haveExact = v, true
					}
				}
			}
		}

		switch {
		case haveExact:
			prices[ticker] = exact
		case fill && haveLast:
			prices[ticker] = last
		}
	}
	return prices, nil
}
