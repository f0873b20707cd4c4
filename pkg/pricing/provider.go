package pricing

import (
	"context"
	"errors"
	"time"

	"quantsim/pkg/common"
	"quantsim/pkg/utility/fixed"
)

var (
	// ErrInsufficientData signals that fewer bars were available than
	// requested after the look-ahead clamp. Retrying will not manufacture
	// data, so callers must not retry.
	ErrInsufficientData = errors.New("not enough data points")

	// ErrOutsideBundle signals a query for a ticker, field or date range
	// that was not preloaded into the bundle.
	ErrOutsideBundle = errors.New("query outside of preloaded bundle")
)

// Provider is the raw price source. Implementations must support batched
// multi-ticker, multi-field queries and represent unavailable ticker/field
// combinations as structural absence in the returned frame, never as an
// error. Providers perform no look-ahead control, that is the Oracle's job.
type Provider interface {
	GetPrice(ctx context.Context, tickers []common.Ticker, fields []common.PriceField, start, end time.Time) (*Frame, error)
	GetHistory(ctx context.Context, tickers []common.Ticker, fields []common.PriceField, start, end time.Time) (*Frame, error)
}

// Oracle is the no-look-ahead price access layer used by every simulation
// component. GetPrice and GetHistory clamp the query end to the latest fully
// elapsed market close as of the current simulated instant.
//
// LastAvailablePrice and CurrentPrice are two distinct operations, not flags:
// the former always returns a value per known ticker (forward-filling from
// the most recent close), the latter omits tickers with no sample at the
// exact current instant.
type Oracle interface {
	Provider

	HistoricalPrice(ctx context.Context, tickers []common.Ticker, fields []common.PriceField, nBars int) (*Frame, error)
	LastAvailablePrice(ctx context.Context, tickers []common.Ticker) (map[common.Ticker]fixed.Point, error)
	CurrentPrice(ctx context.Context, tickers []common.Ticker) (map[common.Ticker]fixed.Point, error)
}
