package pricing

import (
	"context"
	"time"

	"quantsim/pkg/clock"
	"quantsim/pkg/common"
	"quantsim/pkg/schedule"
	"quantsim/pkg/utility/fixed"
)

// Guard wraps a raw provider and enforces the no-look-ahead clamp on every
// query. This is the live-query-backed Oracle implementation; see Bundle for
// the preloaded variant.
type Guard struct {
	provider Provider
	hours    marketHours
}

func NewGuard(provider Provider, clk clock.Clock, calendar *schedule.Calendar) *Guard {
	return &Guard{
		provider: provider,
		hours:    marketHours{clk: clk, calendar: calendar},
	}
}

func (g *Guard) GetPrice(ctx context.Context, tickers []common.Ticker, fields []common.PriceField, start, end time.Time) (*Frame, error) {
	return g.provider.GetPrice(ctx, tickers, fields, start, g.hours.clampEnd(end))
}

func (g *Guard) GetHistory(ctx context.Context, tickers []common.Ticker, fields []common.PriceField, start, end time.Time) (*Frame, error) {
	return g.provider.GetHistory(ctx, tickers, fields, start, g.hours.clampEnd(end))
}

func (g *Guard) HistoricalPrice(ctx context.Context, tickers []common.Ticker, fields []common.PriceField, nBars int) (*Frame, error) {
	return historicalPrice(ctx, g, g.hours, tickers, fields, nBars)
}

func (g *Guard) LastAvailablePrice(ctx context.Context, tickers []common.Ticker) (map[common.Ticker]fixed.Point, error) {
	return singleDatePrice(ctx, g, g.hours, tickers, true)
}

func (g *Guard) CurrentPrice(ctx context.Context, tickers []common.Ticker) (map[common.Ticker]fixed.Point, error) {
	return singleDatePrice(ctx, g, g.hours, tickers, false)
}

func (g *Guard) rawPrice(ctx context.Context, tickers []common.Ticker, fields []common.PriceField, start, end time.Time) (*Frame, error) {
	return g.provider.GetPrice(ctx, tickers, fields, start, end)
}
