package monitor

import (
	"time"

	"quantsim/pkg/common"
	"quantsim/pkg/utility/fixed"
)

// Monitor is the consumer side of the simulation. Implementations receive
// every fill and the end-of-day valuation series. Heavier consumers
// (statistics, chart export) plug in behind this interface.
type Monitor interface {
	RecordTransaction(transaction common.Transaction)
	EndOfDayUpdate(timeStamp time.Time, portfolioValue fixed.Point)
	EndOfTradingUpdate(timeStamp time.Time)
}

// Noop discards everything.
type Noop struct{}

func (Noop) RecordTransaction(common.Transaction)  {}
func (Noop) EndOfDayUpdate(time.Time, fixed.Point) {}
func (Noop) EndOfTradingUpdate(time.Time)          {}
