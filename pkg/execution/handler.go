package execution

import (
	"context"
	"errors"
	"fmt"

	"quantsim/pkg/common"
)

var (
	ErrUnsupportedStyle = errors.New("unsupported execution style")
	ErrOrderNotFound    = errors.New("order not found")
)

// ordersExecutor is the surface the handler needs from each style executor.
type ordersExecutor interface {
	AcceptOrders(orders []common.Order) []common.OrderId
	CancelOrder(id common.OrderId) (common.Order, bool)
	CancelAllOpenOrders()
	OpenOrders() []common.Order
	ExecuteOrders(ctx context.Context) error
}

// Handler is the single entry point for order flow. It routes orders to the
// executor of their style, keeps id assignment positional for mixed batches,
// and drives the executors from the schedule triggers. All executors share
// one IDCounter, so ids are unique across styles.
type Handler struct {
	market ordersExecutor
	stop   ordersExecutor
	moc    ordersExecutor
}

func NewHandler(market *MarketOrdersExecutor, stop *StopOrdersExecutor, moc *MarketOnCloseOrdersExecutor) *Handler {
	return &Handler{
		market: market,
		stop:   stop,
		moc:    moc,
	}
}

func (h *Handler) executorFor(style common.ExecutionStyle) (ordersExecutor, bool) {
	switch style {
	case common.StyleMarket:
		return h.market, true
	case common.StyleStop:
		return h.stop, true
	case common.StyleMarketOnClose:
		return h.moc, true
	default:
		return nil, false
	}
}

// AcceptOrders splits a mixed batch into consecutive same-style runs and
// admits each run with its executor. Returned ids align with the input
// positions. Nothing is admitted when any style is unsupported.
func (h *Handler) AcceptOrders(orders []common.Order) ([]common.OrderId, error) {
	for _, order := range orders {
		if _, ok := h.executorFor(order.Style); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedStyle, order.Style)
		}
	}

	ids := make([]common.OrderId, 0, len(orders))
	for start := 0; start < len(orders); {
		end := start + 1
		for end < len(orders) && orders[end].Style == orders[start].Style {
			end++
		}
		exec, _ := h.executorFor(orders[start].Style)
		ids = append(ids, exec.AcceptOrders(orders[start:end])...)
		start = end
	}
	return ids, nil
}

// CancelOrder cancels one awaiting order wherever it rests. Ids are unique
// across executors, so at most one holds it.
func (h *Handler) CancelOrder(id common.OrderId) (common.Order, error) {
	for _, exec := range []ordersExecutor{h.market, h.stop, h.moc} {
		if order, ok := exec.CancelOrder(id); ok {
			return order, nil
		}
	}
	return common.Order{}, fmt.Errorf("%w: %d", ErrOrderNotFound, id)
}

func (h *Handler) CancelAllOpenOrders() {
	h.market.CancelAllOpenOrders()
	h.stop.CancelAllOpenOrders()
	h.moc.CancelAllOpenOrders()
}

// OpenOrders returns every awaiting order across all styles.
func (h *Handler) OpenOrders() []common.Order {
	var out []common.Order
	out = append(out, h.market.OpenOrders()...)
	out = append(out, h.stop.OpenOrders()...)
	out = append(out, h.moc.OpenOrders()...)
	return out
}

// OnMarketOpen fills awaiting market orders at the session open.
func (h *Handler) OnMarketOpen(ctx context.Context) error {
	return h.market.ExecuteOrders(ctx)
}

// OnMarketClose evaluates stop orders against the finished session first,
// then fills market-on-close orders. The ordering matters: a stop fill and a
// close fill in the same session must settle in that sequence.
func (h *Handler) OnMarketClose(ctx context.Context) error {
	if err := h.stop.ExecuteOrders(ctx); err != nil {
		return err
	}
	return h.moc.ExecuteOrders(ctx)
}
