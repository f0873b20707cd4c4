package portfolio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantsim/pkg/clock"
	"quantsim/pkg/common"
	"quantsim/pkg/pricing"
	"quantsim/pkg/schedule"
	"quantsim/pkg/utility/fixed"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func contractAAA() common.Contract {
	return common.Contract{Symbol: "AAA", SecurityType: "STK", Exchange: "SIM"}
}

func newTestPortfolio(now time.Time) (*Portfolio, *clock.Settable) {
	provider := pricing.NewStaticProvider()
	provider.AddBar(common.Bar{
		Ticker: "AAA", TimeStamp: day(1), Period: 24 * time.Hour,
		Open:  fixed.FromInt(100, 0),
		High:  fixed.FromInt(105, 0),
		Low:   fixed.FromInt(95, 0),
		Close: fixed.FromInt(102, 0),
	})

	clk := clock.NewSettable(now)
	oracle := pricing.NewGuard(provider, clk, schedule.NewCalendar())
	mapper := common.NewSymbolMapper("STK", "SIM")
	return NewPortfolio(oracle, mapper, fixed.FromInt(10000, 0)), clk
}

func transaction(qty, price, commission string) common.Transaction {
	q, _ := fixed.FromString(qty)
	p, _ := fixed.FromString(price)
	c, _ := fixed.FromString(commission)
	return common.Transaction{
		Contract:   contractAAA(),
		Quantity:   q,
		FillPrice:  p,
		Commission: c,
	}
}

func TestPortfolio_TransactTransaction(t *testing.T) {
	p, _ := newTestPortfolio(day(1))

	p.TransactTransaction(transaction("10", "100", "5"))

	// cash = 10000 - 10*100 - 5
	assert.Equal(t, "8995", p.Cash().String())

	position, ok := p.PositionFor(contractAAA())
	require.True(t, ok)
	assert.Equal(t, "10", position.Quantity.String())
	// Cost basis includes the commission: (1000 + 5) / 10.
	assert.True(t, position.AvgCost.Eq(fixed.FromFloat64(100.5)))
	assert.Len(t, p.TransactionHistory(), 1)
}

func TestPortfolio_LedgerBalance(t *testing.T) {
	p, _ := newTestPortfolio(day(1))

	fills := []common.Transaction{
		transaction("10", "100", "5"),
		transaction("-4", "110", "2"),
		transaction("20", "90", "3"),
	}

	expected := p.InitialCash()
	for _, f := range fills {
		p.TransactTransaction(f)
		expected = expected.Sub(f.TradeValue()).Sub(f.Commission)
	}
	assert.True(t, p.Cash().Eq(expected), "expected %s, got %s", expected, p.Cash())
}

func TestPortfolio_RealizedPnLOnReduce(t *testing.T) {
	p, _ := newTestPortfolio(day(1))

	p.TransactTransaction(transaction("10", "100", "0"))
	p.TransactTransaction(transaction("-4", "110", "2"))

	position, ok := p.PositionFor(contractAAA())
	require.True(t, ok)
	assert.Equal(t, "6", position.Quantity.String())
	// 4 shares closed at +10 each, minus the closing commission.
	assert.True(t, position.RealizedPnL.Eq(fixed.FromInt(38, 0)))
	// Reducing leaves the cost basis untouched.
	assert.True(t, position.AvgCost.Eq(fixed.FromInt(100, 0)))
}

func TestPortfolio_FullCloseRemovesPosition(t *testing.T) {
	p, _ := newTestPortfolio(day(1))

	p.TransactTransaction(transaction("10", "100", "0"))
	p.TransactTransaction(transaction("-10", "105", "0"))

	_, ok := p.PositionFor(contractAAA())
	assert.False(t, ok)
	assert.Empty(t, p.OpenPositions())
	// cash = 10000 - 1000 + 1050
	assert.Equal(t, "10050", p.Cash().String())
}

func TestPortfolio_FlipOpensOppositePosition(t *testing.T) {
	p, _ := newTestPortfolio(day(1))

	p.TransactTransaction(transaction("10", "100", "0"))
	p.TransactTransaction(transaction("-15", "110", "0"))

	position, ok := p.PositionFor(contractAAA())
	require.True(t, ok)
	assert.Equal(t, "-5", position.Quantity.String())
	// The long leg realized 10 * (110 - 100), the short leg opens at the
	// flip price.
	assert.True(t, position.RealizedPnL.Eq(fixed.FromInt(100, 0)))
	assert.True(t, position.AvgCost.Eq(fixed.FromInt(110, 0)))
}

func TestPortfolio_ShortPosition(t *testing.T) {
	p, _ := newTestPortfolio(day(1))

	p.TransactTransaction(transaction("-10", "100", "0"))
	p.TransactTransaction(transaction("4", "90", "0"))

	position, ok := p.PositionFor(contractAAA())
	require.True(t, ok)
	assert.Equal(t, "-6", position.Quantity.String())
	// Bought back 4 shares 10 below the basis.
	assert.True(t, position.RealizedPnL.Eq(fixed.FromInt(40, 0)))
}

func TestPortfolio_EndOfDayUpdate(t *testing.T) {
	p, clk := newTestPortfolio(day(1).Add(16 * time.Hour))

	p.TransactTransaction(transaction("10", "100", "0"))

	valuation, err := p.EndOfDayUpdate(context.Background(), clk.Now())
	require.NoError(t, err)

	// cash 9000 + 10 shares at the day's close of 102.
	assert.Equal(t, "10020", valuation.Value.String())
	assert.Equal(t, "9000", valuation.Cash.String())

	series := p.PortfolioTimeseries()
	require.Len(t, series, 1)
	assert.True(t, series[0].TimeStamp.Equal(clk.Now()))
}

func TestPortfolio_EndOfDayUpdateWithoutPositions(t *testing.T) {
	p, clk := newTestPortfolio(day(1).Add(16 * time.Hour))

	valuation, err := p.EndOfDayUpdate(context.Background(), clk.Now())
	require.NoError(t, err)
	assert.True(t, valuation.Value.Eq(p.InitialCash()))
}
