package execution

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"quantsim/pkg/clock"
	"quantsim/pkg/common"
	"quantsim/pkg/monitor"
	"quantsim/pkg/portfolio"
	"quantsim/pkg/utility"
	"quantsim/pkg/utility/fixed"
)

// orderValidator checks an order on acceptance. Routing an order to the wrong
// executor is a programmer error, so violations panic.
type orderValidator func(order common.Order)

// referenceResolver resolves the reference price per awaiting order at the
// current simulated instant. Orders missing from the result stay awaiting and
// are retried on the next trigger.
type referenceResolver func(ctx context.Context, orders []common.Order) (map[common.OrderId]fixed.Point, error)

// executor is the state machine shared by all order styles: accepted orders
// sit in the awaiting set until their style's trigger resolves a reference
// price, then leave it as exactly one transaction, or leave it by
// cancellation. The whole fill batch runs under the executor's mutex.
type executor struct {
	ids        *IDCounter
	clk        clock.Clock
	slippage   SlippageModel
	commission CommissionModel
	monitor    monitor.Monitor
	ledger     *portfolio.Portfolio
	validate   orderValidator
	resolve    referenceResolver

	mu       sync.Mutex
	awaiting map[common.OrderId]common.Order
}

func newExecutor(ids *IDCounter, clk clock.Clock, slippage SlippageModel, commission CommissionModel,
	mon monitor.Monitor, ledger *portfolio.Portfolio, validate orderValidator, resolve referenceResolver) *executor {

	return &executor{
		ids:        ids,
		clk:        clk,
		slippage:   slippage,
		commission: commission,
		monitor:    mon,
		ledger:     ledger,
		validate:   validate,
		resolve:    resolve,
		awaiting:   make(map[common.OrderId]common.Order),
	}
}

// AcceptOrders admits a batch into the awaiting set. Ids are assigned from
// the shared counter, trace metadata is stamped on admission, and the ids
// are returned aligned with the input. Orders this executor cannot serve
// panic before any id is assigned.
func (e *executor) AcceptOrders(orders []common.Order) []common.OrderId {
	for _, order := range orders {
		e.validate(order)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ids := make([]common.OrderId, len(orders))
	for i, order := range orders {
		order.Id = e.ids.Next()
		if order.ExecutionId == (utility.ExecutionID{}) {
			order.ExecutionId = utility.GetExecutionID()
		}
		if order.TraceID == 0 {
			order.TraceID = utility.CreateTraceID()
		}
		if order.TimeStamp.IsZero() {
			order.TimeStamp = e.clk.Now()
		}
		e.awaiting[order.Id] = order
		ids[i] = order.Id
	}
	return ids
}

// CancelOrder removes one awaiting order. Cancelling an unknown or already
// executed id reports false.
func (e *executor) CancelOrder(id common.OrderId) (common.Order, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	order, ok := e.awaiting[id]
	if ok {
		delete(e.awaiting, id)
	}
	return order, ok
}

func (e *executor) CancelAllOpenOrders() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.awaiting = make(map[common.OrderId]common.Order)
}

// OpenOrders returns a copy of the awaiting set in ascending id order.
func (e *executor) OpenOrders() []common.Order {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.openOrdersLocked()
}

func (e *executor) openOrdersLocked() []common.Order {
	out := make([]common.Order, 0, len(e.awaiting))
	for _, order := range e.awaiting {
		out = append(out, order)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out
}

// ExecuteOrders fills every awaiting order whose reference price resolved.
// The batch is atomic with respect to acceptance and cancellation: fills are
// recorded with the monitor and the ledger before the lock is released.
func (e *executor) ExecuteOrders(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.awaiting) == 0 {
		return nil
	}

	orders := e.openOrdersLocked()
	references, err := e.resolve(ctx, orders)
	if err != nil {
		return fmt.Errorf("unable to resolve reference prices: %w", err)
	}

	fillable := orders[:0]
	prices := make([]fixed.Point, 0, len(orders))
	for _, order := range orders {
		if ref, ok := references[order.Id]; ok {
			fillable = append(fillable, order)
			prices = append(prices, ref)
		}
	}
	if len(fillable) == 0 {
		return nil
	}

	fillPrices := e.slippage.ApplySlippage(fillable, prices)
	now := e.clk.Now()

	for i, order := range fillable {
		transaction := common.Transaction{
			Contract:    order.Contract,
			Quantity:    order.Quantity,
			FillPrice:   fillPrices[i],
			Commission:  e.commission.Calculate(order, fillPrices[i]),
			OrderId:     order.Id,
			Source:      order.Source,
			ExecutionId: order.ExecutionId,
			TraceID:     order.TraceID,
			TimeStamp:   now,
		}

		e.monitor.RecordTransaction(transaction)
		e.ledger.TransactTransaction(transaction)
		delete(e.awaiting, order.Id)
	}
	return nil
}
