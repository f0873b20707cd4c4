package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"quantsim/pkg/clock"
	"quantsim/pkg/execution"
	"quantsim/pkg/feed"
	"quantsim/pkg/monitor"
	"quantsim/pkg/portfolio"
	"quantsim/pkg/schedule"
)

// Live runs the same open/close flow against the wall clock. Bars arrive
// through the feed into the oracle's backing store; triggers fire from a
// timer instead of the backtest scheduler.
type Live struct {
	calendar *schedule.Calendar
	handler  *execution.Handler
	ledger   *portfolio.Portfolio
	monitor  monitor.Monitor
	feed     *feed.Feed
	clk      clock.Clock
	logger   *zap.Logger
}

func NewLive(calendar *schedule.Calendar, handler *execution.Handler, ledger *portfolio.Portfolio,
	mon monitor.Monitor, barFeed *feed.Feed, logger *zap.Logger) *Live {

	return &Live{
		calendar: calendar,
		handler:  handler,
		ledger:   ledger,
		monitor:  mon,
		feed:     barFeed,
		clk:      clock.RealTime{},
		logger:   logger,
	}
}

// Run blocks until the context is cancelled.
func (l *Live) Run(ctx context.Context) error {
	if err := l.feed.Start(); err != nil {
		return err
	}
	defer l.feed.Stop()

	for {
		event := l.calendar.NextAfter(l.clk.Now())
		timer := time.NewTimer(time.Until(event.TimeStamp))

		select {
		case <-ctx.Done():
			timer.Stop()
			l.monitor.EndOfTradingUpdate(l.clk.Now())
			return ctx.Err()
		case <-timer.C:
			l.dispatch(ctx, event)
		}
	}
}

func (l *Live) dispatch(ctx context.Context, event schedule.TimeEvent) {
	switch event.Type {
	case schedule.MarketOpen:
		if err := l.handler.OnMarketOpen(ctx); err != nil {
			l.logger.Warn("market open execution failed", zap.Error(err))
		}
	case schedule.MarketClose:
		if err := l.handler.OnMarketClose(ctx); err != nil {
			l.logger.Warn("market close execution failed", zap.Error(err))
		}
		valuation, err := l.ledger.EndOfDayUpdate(ctx, event.TimeStamp)
		if err != nil {
			l.logger.Warn("end of day valuation failed", zap.Error(err))
			return
		}
		l.monitor.EndOfDayUpdate(event.TimeStamp, valuation.Value)
	default:
	}
}
