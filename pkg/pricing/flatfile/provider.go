package flatfile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quantsim/pkg/common"
	"quantsim/pkg/pricing"
	"quantsim/pkg/utility/fixed"
)

// BinaryBar is the on-disk record layout: one day-stamped OHLCV bar.
type BinaryBar struct {
	TimeStamp int64 // unix nanoseconds, midnight of the bar's day
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

func (b *BinaryBar) toBar(ticker common.Ticker) common.Bar {
	return common.Bar{
		Ticker:    ticker,
		TimeStamp: time.Unix(0, b.TimeStamp).UTC(),
		Period:    24 * time.Hour,
		Open:      fixed.FromFloat64(b.Open),
		High:      fixed.FromFloat64(b.High),
		Low:       fixed.FromFloat64(b.Low),
		Close:     fixed.FromFloat64(b.Close),
		Volume:    fixed.FromFloat64(b.Volume),
	}
}

// Provider serves daily bars for a single ticker from a memory-mapped flat
// file of BinaryBar records sorted by timestamp. Intended for fast bundle
// preloading of large histories.
type Provider struct {
	source *Source[BinaryBar]
	ticker common.Ticker
}

func NewProvider(dataSourceName string, ticker common.Ticker) *Provider {
	return &Provider{
		source: NewSource[BinaryBar](dataSourceName),
		ticker: ticker,
	}
}

func (p *Provider) Open() error {
	return p.source.Open()
}

func (p *Provider) Close() {
	p.source.Close()
}

func (p *Provider) GetPrice(_ context.Context, tickers []common.Ticker, fields []common.PriceField, start, end time.Time) (*pricing.Frame, error) {
	frame := pricing.NewFrame()

	// Tickers other than the one this file holds are structurally absent.
	requested := false
	for _, ticker := range tickers {
		if ticker == p.ticker {
			requested = true
			break
		}
	}
	if !requested {
		return frame, nil
	}

	idx, err := p.lookupStartIndex(start.UnixNano())
	if err != nil {
		if errors.Is(err, ErrEof) {
			return frame, nil
		}
		return nil, err
	}

	var record BinaryBar
	for {
		if err := p.source.Read(idx, &record); err != nil {
			if errors.Is(err, ErrEof) {
				break
			}
			return nil, fmt.Errorf("error reading entry at index %d: %w", idx, err)
		}
		idx++

		if record.TimeStamp > end.UnixNano() {
			break
		}

		bar := record.toBar(p.ticker)
		for _, field := range fields {
			frame.Set(bar.TimeStamp, p.ticker, field, bar.Field(field))
		}
	}
	return frame, nil
}

func (p *Provider) GetHistory(ctx context.Context, tickers []common.Ticker, fields []common.PriceField, start, end time.Time) (*pricing.Frame, error) {
	return p.GetPrice(ctx, tickers, fields, start, end)
}

// lookupStartIndex binary-searches the first record with timestamp >= from.
func (p *Provider) lookupStartIndex(from int64) (int64, error) {
	entryCount, err := p.source.EntryCount()
	if err != nil {
		return 0, fmt.Errorf("error getting entry count: %w", err)
	}
	if entryCount == 0 {
		return 0, ErrEof
	}

	var entry BinaryBar

	low := int64(0)
	high := entryCount - 1

	for low <= high {
		mid := (low + high) / 2

		if err := p.source.Read(mid, &entry); err != nil {
			return 0, fmt.Errorf("error reading entry at index %d: %w", mid, err)
		}

		if entry.TimeStamp < from {
			low = mid + 1
		} else {
			high = mid - 1
		}
	}

	if low >= entryCount {
		return 0, ErrEof
	}
	return low, nil
}
