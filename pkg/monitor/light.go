package monitor

import (
	"time"

	"go.uber.org/zap"

	"quantsim/pkg/common"
	"quantsim/pkg/utility/fixed"
)

// LightMonitor logs fills and daily valuations. Enough to follow a run
// without wiring an external consumer.
type LightMonitor struct {
	logger *zap.Logger

	transactionCount uint64
}

func NewLightMonitor(logger *zap.Logger) *LightMonitor {
	return &LightMonitor{
		logger: logger,
	}
}

func (m *LightMonitor) RecordTransaction(transaction common.Transaction) {
	m.transactionCount++
	m.logger.Info("transaction",
		zap.Int64("order_id", transaction.OrderId),
		zap.String("symbol", transaction.Contract.Symbol),
		zap.String("quantity", transaction.Quantity.String()),
		zap.String("fill_price", transaction.FillPrice.String()),
		zap.String("commission", transaction.Commission.String()),
		zap.Time("ts", transaction.TimeStamp))
}

func (m *LightMonitor) EndOfDayUpdate(timeStamp time.Time, portfolioValue fixed.Point) {
	m.logger.Info("end of day",
		zap.String("portfolio_value", portfolioValue.String()),
		zap.Time("ts", timeStamp))
}

func (m *LightMonitor) EndOfTradingUpdate(timeStamp time.Time) {
	m.logger.Info("end of trading",
		zap.Uint64("transactions", m.transactionCount),
		zap.Time("ts", timeStamp))
}
