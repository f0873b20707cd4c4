package execution

import (
	"context"
	"fmt"
	"time"

	"quantsim/pkg/clock"
	"quantsim/pkg/common"
	"quantsim/pkg/monitor"
	"quantsim/pkg/portfolio"
	"quantsim/pkg/pricing"
	"quantsim/pkg/utility/fixed"
)

// StopOrdersExecutor evaluates stop orders against the finished session's bar
// at market close. A sell stop triggers when the bar low crossed the stop
// price and fills at the low; a buy stop triggers on the high symmetrically.
// Untriggered orders stay awaiting for the next session.
type StopOrdersExecutor struct {
	*executor
}

func NewStopOrdersExecutor(oracle pricing.Oracle, mapper common.ContractTickerMapper, ids *IDCounter,
	clk clock.Clock, slippage SlippageModel, commission CommissionModel,
	mon monitor.Monitor, ledger *portfolio.Portfolio) *StopOrdersExecutor {

	validate := func(order common.Order) {
		if order.Style != common.StyleStop {
			panic(fmt.Sprintf("stop executor received %s order", order.Style))
		}
		if order.Quantity.IsZero() {
			panic("stop order without a quantity")
		}
		if !order.StopPrice.Gt(fixed.Zero) {
			panic(fmt.Sprintf("stop order without a positive stop price: %s", order.StopPrice))
		}
	}
	resolve := stopPriceResolver(oracle, mapper, clk)

	return &StopOrdersExecutor{
		executor: newExecutor(ids, clk, slippage, commission, mon, ledger, validate, resolve),
	}
}

func stopPriceResolver(oracle pricing.Oracle, mapper common.ContractTickerMapper, clk clock.Clock) referenceResolver {
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

		now := clk.Now()
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

		fields := []common.PriceField{common.FieldLow, common.FieldHigh}
		frame, err := oracle.GetPrice(ctx, tickers, fields, dayStart, now)
		if err != nil {
			return nil, err
		}

		references := make(map[common.OrderId]fixed.Point, len(orders))
		for _, order := range orders {
			ticker := mapper.ToTicker(order.Contract)

			if order.IsSell() {
				if low, ok := frame.AsOf(now, ticker, common.FieldLow); ok && low.Lte(order.StopPrice) {
					references[order.Id] = low
				}
				continue
			}
			if high, ok := frame.AsOf(now, ticker, common.FieldHigh); ok && high.Gte(order.StopPrice) {
				references[order.Id] = high
			}
		}
		return references, nil
	}
}
