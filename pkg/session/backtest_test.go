package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"quantsim/pkg/clock"
	"quantsim/pkg/common"
	"quantsim/pkg/execution"
	"quantsim/pkg/monitor"
	"quantsim/pkg/portfolio"
	"quantsim/pkg/pricing"
	"quantsim/pkg/schedule"
	"quantsim/pkg/utility/fixed"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

type backtestRig struct {
	backtest *Backtest
	handler  *execution.Handler
	ledger   *portfolio.Portfolio
	clk      *clock.Settable
}

func newBacktestRig(t *testing.T) *backtestRig {
	t.Helper()

	provider := pricing.NewStaticProvider()
	bars := []struct {
		d          int
		o, h, l, c int
	}{
		{1, 100, 105, 95, 102},
		{2, 103, 108, 99, 107},
		{3, 110, 112, 108, 111},
	}
	for _, b := range bars {
		provider.AddBar(common.Bar{
			Ticker: "AAA", TimeStamp: day(b.d), Period: 24 * time.Hour,
			Open:  fixed.FromInt(b.o, 0),
			High:  fixed.FromInt(b.h, 0),
			Low:   fixed.FromInt(b.l, 0),
			Close: fixed.FromInt(b.c, 0),
		})
	}

	calendar := schedule.NewCalendar()
	clk := clock.NewSettable(day(1))
	oracle := pricing.NewGuard(provider, clk, calendar)
	mapper := common.NewSymbolMapper("STK", "SIM")

	logger := zap.NewNop()
	mon := monitor.NewLightMonitor(logger)
	ledger := portfolio.NewPortfolio(oracle, mapper, fixed.FromInt(10000, 0))

	ids := execution.NewIDCounter()
	handler := execution.NewHandler(
		execution.NewMarketOrdersExecutor(oracle, mapper, ids, clk, execution.NoSlippage{}, execution.ZeroCommission{}, mon, ledger),
		execution.NewStopOrdersExecutor(oracle, mapper, ids, clk, execution.NoSlippage{}, execution.ZeroCommission{}, mon, ledger),
		execution.NewMarketOnCloseOrdersExecutor(oracle, mapper, ids, clk, execution.NoSlippage{}, execution.ZeroCommission{}, mon, ledger),
	)

	horizon := calendar.TriggerTime(schedule.AfterMarketClose, day(3))
	scheduler := schedule.NewScheduler(clk, calendar, horizon)

	return &backtestRig{
		backtest: NewBacktest(scheduler, handler, ledger, mon, clk, logger),
		handler:  handler,
		ledger:   ledger,
		clk:      clk,
	}
}

func TestBacktest_MarketOrderLifecycle(t *testing.T) {
	rig := newBacktestRig(t)

	_, err := rig.handler.AcceptOrders([]common.Order{{
		Contract: common.Contract{Symbol: "AAA", SecurityType: "STK", Exchange: "SIM"},
		Quantity: fixed.FromInt(10, 0),
		Style:    common.StyleMarket,
	}})
	require.NoError(t, err)

	require.NoError(t, rig.backtest.Run(context.Background()))

	// The order placed before the first session fills at day 1's open.
	history := rig.ledger.TransactionHistory()
	require.Len(t, history, 1)
	assert.Equal(t, "100", history[0].FillPrice.String())
	assert.True(t, history[0].TimeStamp.Equal(day(1).Add(9*time.Hour+30*time.Minute)))

	// One valuation per session close, marked at the day's close price.
	series := rig.ledger.PortfolioTimeseries()
	require.Len(t, series, 3)
	// cash 9000 + 10 * close
	assert.Equal(t, "10020", series[0].Value.String())
	assert.Equal(t, "10110", series[2].Value.String())
}

func TestBacktest_StopAndCloseSameSession(t *testing.T) {
	rig := newBacktestRig(t)

	// A protective stop under day 2's low and a market-on-close exit. The
	// stop settles first at the low, then the close fill.
	_, err := rig.handler.AcceptOrders([]common.Order{
		{
			Contract:  common.Contract{Symbol: "AAA", SecurityType: "STK", Exchange: "SIM"},
			Quantity:  fixed.FromInt(-10, 0),
			Style:     common.StyleStop,
			StopPrice: fixed.FromInt(100, 0),
		},
		{
			Contract:    common.Contract{Symbol: "AAA", SecurityType: "STK", Exchange: "SIM"},
			Quantity:    fixed.FromInt(-5, 0),
			Style:       common.StyleMarketOnClose,
			TimeInForce: common.TimeInForceDay,
		},
	})
	require.NoError(t, err)

	require.NoError(t, rig.backtest.Run(context.Background()))

	// Day 1's low of 95 crosses the stop at the first close.
	history := rig.ledger.TransactionHistory()
	require.Len(t, history, 2)
	assert.Equal(t, "95", history[0].FillPrice.String())
	assert.Equal(t, "102", history[1].FillPrice.String())
}

func TestBacktest_RunEndsCleanlyAtHorizon(t *testing.T) {
	rig := newBacktestRig(t)
	require.NoError(t, rig.backtest.Run(context.Background()))
	assert.Empty(t, rig.ledger.TransactionHistory())
}
