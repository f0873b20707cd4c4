package execution

import (
	"context"
	"fmt"

	"quantsim/pkg/clock"
	"quantsim/pkg/common"
	"quantsim/pkg/monitor"
	"quantsim/pkg/portfolio"
	"quantsim/pkg/pricing"
	"quantsim/pkg/utility/fixed"
)

// MarketOrdersExecutor fills market orders at the next market open. The
// reference price is the open price at the open trigger; tickers without a
// price at that instant stay awaiting until the following open.
type MarketOrdersExecutor struct {
	*executor
}

func NewMarketOrdersExecutor(oracle pricing.Oracle, mapper common.ContractTickerMapper, ids *IDCounter,
	clk clock.Clock, slippage SlippageModel, commission CommissionModel,
	mon monitor.Monitor, ledger *portfolio.Portfolio) *MarketOrdersExecutor {

	validate := func(order common.Order) {
		if order.Style != common.StyleMarket {
			panic(fmt.Sprintf("market executor received %s order", order.Style))
		}
		if order.Quantity.IsZero() {
			panic("market order without a quantity")
		}
	}
	resolve := currentPriceResolver(oracle, mapper)

	return &MarketOrdersExecutor{
		executor: newExecutor(ids, clk, slippage, commission, mon, ledger, validate, resolve),
	}
}

// currentPriceResolver resolves the exact price at the current trigger
// instant. Shared by the market and market-on-close executors, which differ
// only in the trigger they run on.
func currentPriceResolver(oracle pricing.Oracle, mapper common.ContractTickerMapper) referenceResolver {
	return func(ctx context.Context, orders []common.Order) (map[common.OrderId]fixed.Point, error) {
		tickers := make([]common.Ticker, 0, len(orders))
		seen := make(map[common.Ticker]struct{}, len(orders))
		for _, order := range orders {
			ticker := mapper.ToTicker(order.Contract)
			if _, ok := seen[ticker]; !ok {
				seen[ticker] = struct{}{}
				tickers = append(tickers, ticker)
			}
		}

		prices, err := oracle.CurrentPrice(ctx, tickers)
		if err != nil {
			return nil, err
		}

		references := make(map[common.OrderId]fixed.Point, len(orders))
		for _, order := range orders {
			if price, ok := prices[mapper.ToTicker(order.Contract)]; ok {
				references[order.Id] = price
			}
		}
		return references, nil
	}
}
