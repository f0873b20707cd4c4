package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"quantsim/pkg/common"
	"quantsim/pkg/pricing"
	"quantsim/pkg/utility/fixed"
)

// Provider reads daily bars from a DuckDB database with one <symbol>_bars
// table per instrument (columns: ts, open, high, low, close, volume).
type Provider struct {
	dataSourceName string
	db             *sql.DB
}

func NewProvider(dataSourceName string) *Provider {
	return &Provider{
		dataSourceName: dataSourceName,
	}
}

func (p *Provider) Connect() error {
	db, err := sql.Open("duckdb", p.dataSourceName)
	if err != nil {
		return fmt.Errorf("sql.Open: %w", err)
	}
	p.db = db
	return nil
}

func (p *Provider) Close() {
	_ = p.db.Close()
}

func (p *Provider) GetPrice(ctx context.Context, tickers []common.Ticker, fields []common.PriceField, start, end time.Time) (*pricing.Frame, error) {
	frame := pricing.NewFrame()

	for _, ticker := range tickers {
		if err := p.loadBars(ctx, ticker, fields, start, end, frame); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

func (p *Provider) GetHistory(ctx context.Context, tickers []common.Ticker, fields []common.PriceField, start, end time.Time) (*pricing.Frame, error) {
	return p.GetPrice(ctx, tickers, fields, start, end)
}

func (p *Provider) loadBars(ctx context.Context, ticker common.Ticker, fields []common.PriceField,
	start, end time.Time, frame *pricing.Frame) error {

	query := fmt.Sprintf(`SELECT ts, open, high, low, close, volume FROM %s_bars WHERE ts BETWEEN ? AND ? ORDER BY ts`,
		strings.ToLower(string(ticker)))

	rows, err := p.db.QueryContext(ctx, query, start, end)
	if err != nil {
		// A missing table is a structural absence of the ticker, not a
		// query failure.
		if strings.Contains(err.Error(), "does not exist") {
			return nil
		}
		return fmt.Errorf("error preparing query: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	for rows.Next() {
		var ts time.Time
		var open, high, low, closePx, volume float64
		if err := rows.Scan(&ts, &open, &high, &low, &closePx, &volume); err != nil {
			return fmt.Errorf("error scanning row: %w", err)
		}

		bar := common.Bar{
			Ticker:    ticker,
			TimeStamp: ts,
			Open:      fixed.FromFloat64(open),
			High:      fixed.FromFloat64(high),
			Low:       fixed.FromFloat64(low),
			Close:     fixed.FromFloat64(closePx),
			Volume:    fixed.FromFloat64(volume),
		}
		for _, field := range fields {
			frame.Set(ts, ticker, field, bar.Field(field))
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error scanning rows: %w", err)
	}
	return nil
}
