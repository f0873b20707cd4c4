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

// Bundle is the preloaded Oracle implementation. It fetches a superset window
// once at construction and serves every subsequent query from memory,
// trading flexibility for throughput. Queries for tickers, fields or date
// ranges outside the preloaded window fail with ErrOutsideBundle. The
// no-look-ahead clamp is identical to Guard's.
type Bundle struct {
	data    *Frame
	tickers map[common.Ticker]struct{}
	fields  map[common.PriceField]struct{}
	start   time.Time
	end     time.Time
	hours   marketHours
}

func NewBundle(ctx context.Context, provider Provider, tickers []common.Ticker, fields []common.PriceField,
	start, end time.Time, clk clock.Clock, calendar *schedule.Calendar) (*Bundle, error) {

	data, err := provider.GetPrice(ctx, tickers, fields, start, end)
	if err != nil {
		return nil, fmt.Errorf("unable to preload bundle: %w", err)
	}

	b := &Bundle{
		data:    data,
		tickers: make(map[common.Ticker]struct{}, len(tickers)),
		fields:  make(map[common.PriceField]struct{}, len(fields)),
		start:   start,
		end:     end,
		hours:   marketHours{clk: clk, calendar: calendar},
	}
	for _, t := range tickers {
		b.tickers[t] = struct{}{}
	}
	for _, f := range fields {
		b.fields[f] = struct{}{}
	}
	return b, nil
}

func (b *Bundle) GetPrice(ctx context.Context, tickers []common.Ticker, fields []common.PriceField, start, end time.Time) (*Frame, error) {
	return b.rawPrice(ctx, tickers, fields, start, b.hours.clampEnd(end))
}

func (b *Bundle) GetHistory(ctx context.Context, tickers []common.Ticker, fields []common.PriceField, start, end time.Time) (*Frame, error) {
	return b.rawPrice(ctx, tickers, fields, start, b.hours.clampEnd(end))
}

func (b *Bundle) HistoricalPrice(ctx context.Context, tickers []common.Ticker, fields []common.PriceField, nBars int) (*Frame, error) {
	return historicalPrice(ctx, b, b.hours, tickers, fields, nBars)
}

func (b *Bundle) LastAvailablePrice(ctx context.Context, tickers []common.Ticker) (map[common.Ticker]fixed.Point, error) {
	return singleDatePrice(ctx, b, b.hours, tickers, true)
}

func (b *Bundle) CurrentPrice(ctx context.Context, tickers []common.Ticker) (map[common.Ticker]fixed.Point, error) {
	return singleDatePrice(ctx, b, b.hours, tickers, false)
}

func (b *Bundle) rawPrice(_ context.Context, tickers []common.Ticker, fields []common.PriceField, start, end time.Time) (*Frame, error) {
	if err := b.validate(tickers, fields); err != nil {
		return nil, err
	}
	// Bundle covers whole days; the end bound extends to the end of the
	// last preloaded day so event-time queries do not trip the check.
	if start.Before(b.start) || end.After(b.end.AddDate(0, 0, 1)) {
		return nil, fmt.Errorf("%w: range %s..%s", ErrOutsideBundle,
			start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	return b.data.Clip(start, end), nil
}

func (b *Bundle) validate(tickers []common.Ticker, fields []common.PriceField) error {
	for _, t := range tickers {
		if _, ok := b.tickers[t]; !ok {
			return fmt.Errorf("%w: ticker %s", ErrOutsideBundle, t)
		}
	}
	for _, f := range fields {
		if _, ok := b.fields[f]; !ok {
			return fmt.Errorf("%w: field %s", ErrOutsideBundle, f)
		}
	}
	return nil
}
