package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"quantsim/internal/dbg"
	"quantsim/pkg/clock"
	"quantsim/pkg/common"
	"quantsim/pkg/execution"
	"quantsim/pkg/monitor"
	"quantsim/pkg/portfolio"
	"quantsim/pkg/pricing"
	"quantsim/pkg/pricing/duckdb"
	"quantsim/pkg/schedule"
	"quantsim/pkg/session"
)

func main() {
	configPath := flag.String("config", "backtest.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		panic(err)
	}

	logger := dbg.NewLogger(cfg.Development)
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	logger.Info("backtest",
		zap.Time("start", cfg.SessionStart),
		zap.Time("end", cfg.SessionEnd))
	defer logger.Info("done")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider := duckdb.NewProvider(cfg.DataSourceName)
	if err := provider.Connect(); err != nil {
		logger.Fatal("error opening price database", zap.Error(err))
	}
	defer provider.Close()

	calendar := schedule.NewCalendar()
	clk := clock.NewSettable(cfg.SessionStart)

	// Preload with a lead-in window so lookbacks at the first session
	// triggers resolve from memory.
	preloadStart := cfg.SessionStart.AddDate(0, 0, -cfg.LeadInDays)
	oracle, err := pricing.NewBundle(ctx, provider, cfg.Tickers, common.OHLCV(),
		preloadStart, cfg.SessionEnd, clk, calendar)
	if err != nil {
		logger.Fatal("error preloading price bundle", zap.Error(err))
	}

	mapper := common.NewSymbolMapper(cfg.SecurityType, cfg.Exchange)
	mon := monitor.NewLightMonitor(logger)
	ledger := portfolio.NewPortfolio(oracle, mapper, cfg.InitialCash)

	ids := execution.NewIDCounter()
	slippage := execution.NewFractionalSlippage(cfg.SlippageRate)
	commission := execution.NewBpsTradeValueCommission(cfg.CommissionBps)

	handler := execution.NewHandler(
		execution.NewMarketOrdersExecutor(oracle, mapper, ids, clk, slippage, commission, mon, ledger),
		execution.NewStopOrdersExecutor(oracle, mapper, ids, clk, slippage, commission, mon, ledger),
		execution.NewMarketOnCloseOrdersExecutor(oracle, mapper, ids, clk, slippage, commission, mon, ledger),
	)

	horizon := calendar.TriggerTime(schedule.AfterMarketClose, cfg.SessionEnd)
	scheduler := schedule.NewScheduler(clk, calendar, horizon)

	backtest := session.NewBacktest(scheduler, handler, ledger, mon, clk, logger)

	if err := backtest.Run(ctx); err != nil {
		logger.Error("error during simulation", zap.Error(err))
	}
}
