package session

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"quantsim/pkg/clock"
	"quantsim/pkg/execution"
	"quantsim/pkg/monitor"
	"quantsim/pkg/portfolio"
	"quantsim/pkg/schedule"
)

// Backtest wires the simulation components together. All scheduler
// subscriptions happen here at construction, so the full event flow of a run
// is visible in one place: market orders fill at the open, stops and
// market-on-close orders settle at the close, then the day is valued.
type Backtest struct {
	scheduler *schedule.Scheduler
	handler   *execution.Handler
	ledger    *portfolio.Portfolio
	monitor   monitor.Monitor
	clk       *clock.Settable
	logger    *zap.Logger
}

func NewBacktest(scheduler *schedule.Scheduler, handler *execution.Handler, ledger *portfolio.Portfolio,
	mon monitor.Monitor, clk *clock.Settable, logger *zap.Logger) *Backtest {

	b := &Backtest{
		scheduler: scheduler,
		handler:   handler,
		ledger:    ledger,
		monitor:   mon,
		clk:       clk,
		logger:    logger,
	}

	scheduler.Subscribe(schedule.MarketOpen, b.onMarketOpen)
	scheduler.Subscribe(schedule.MarketClose, b.onMarketClose)
	return b
}

// Run drives the scheduler until the data horizon. Reaching the horizon is
// the normal way a backtest ends.
func (b *Backtest) Run(ctx context.Context) error {
	err := <-b.scheduler.Run(ctx)
	if errors.Is(err, schedule.ErrEndOfData) {
		b.monitor.EndOfTradingUpdate(b.clk.Now())
		b.scheduler.Statistics().Print()
		return nil
	}
	return err
}

func (b *Backtest) onMarketOpen(ctx context.Context, event schedule.TimeEvent) {
	if err := b.handler.OnMarketOpen(ctx); err != nil {
		b.logger.Warn("market open execution failed",
			zap.Time("ts", event.TimeStamp), zap.Error(err))
	}
}

func (b *Backtest) onMarketClose(ctx context.Context, event schedule.TimeEvent) {
	if err := b.handler.OnMarketClose(ctx); err != nil {
		b.logger.Warn("market close execution failed",
			zap.Time("ts", event.TimeStamp), zap.Error(err))
	}

	valuation, err := b.ledger.EndOfDayUpdate(ctx, event.TimeStamp)
	if err != nil {
		b.logger.Warn("end of day valuation failed",
			zap.Time("ts", event.TimeStamp), zap.Error(err))
		return
	}
	b.monitor.EndOfDayUpdate(event.TimeStamp, valuation.Value)
}
