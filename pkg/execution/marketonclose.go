package execution

import (
	"fmt"

	"quantsim/pkg/clock"
	"quantsim/pkg/common"
	"quantsim/pkg/monitor"
	"quantsim/pkg/portfolio"
	"quantsim/pkg/pricing"
)

// MarketOnCloseOrdersExecutor fills at the close price of the session the
// order was placed in. Only day orders make sense here, anything else is a
// routing error.
type MarketOnCloseOrdersExecutor struct {
	*executor
}

func NewMarketOnCloseOrdersExecutor(oracle pricing.Oracle, mapper common.ContractTickerMapper, ids *IDCounter,
	clk clock.Clock, slippage SlippageModel, commission CommissionModel,
	mon monitor.Monitor, ledger *portfolio.Portfolio) *MarketOnCloseOrdersExecutor {

	validate := func(order common.Order) {
		if order.Style != common.StyleMarketOnClose {
			panic(fmt.Sprintf("market-on-close executor received %s order", order.Style))
		}
		if order.Quantity.IsZero() {
			panic("market-on-close order without a quantity")
		}
		if order.TimeInForce != common.TimeInForceDay {
			panic(fmt.Sprintf("market-on-close order with %s time in force", order.TimeInForce))
		}
	}
	resolve := currentPriceResolver(oracle, mapper)

	return &MarketOnCloseOrdersExecutor{
		executor: newExecutor(ids, clk, slippage, commission, mon, ledger, validate, resolve),
	}
}
