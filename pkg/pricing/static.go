package pricing

import (
	"context"
	"sync"
	"time"

	"quantsim/pkg/common"
)

// StaticProvider serves bars held in memory. Used as a test double and as the
// backing store for live feeds that accumulate bars at runtime.
type StaticProvider struct {
	mu   sync.RWMutex
	data *Frame
}

func NewStaticProvider() *StaticProvider {
	return &StaticProvider{data: NewFrame()}
}

// AddBar records one day-stamped bar for a ticker. Safe for concurrent use
// with queries.
func (p *StaticProvider) AddBar(bar common.Bar) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, field := range common.OHLCV() {
		p.data.Set(bar.TimeStamp, bar.Ticker, field, bar.Field(field))
	}
}

func (p *StaticProvider) GetPrice(_ context.Context, tickers []common.Ticker, fields []common.PriceField, start, end time.Time) (*Frame, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := NewFrame()
	for _, ts := range p.data.Clip(start, end).Times() {
		for _, ticker := range tickers {
			for _, field := range fields {
				if v, ok := p.data.Value(ts, ticker, field); ok {
					out.Set(ts, ticker, field, v)
				}
			}
		}
	}
	return out, nil
}

func (p *StaticProvider) GetHistory(ctx context.Context, tickers []common.Ticker, fields []common.PriceField, start, end time.Time) (*Frame, error) {
	return p.GetPrice(ctx, tickers, fields, start, end)
}
