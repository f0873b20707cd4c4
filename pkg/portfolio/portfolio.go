package portfolio

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"quantsim/pkg/common"
	"quantsim/pkg/pricing"
	"quantsim/pkg/utility/fixed"
)

// Valuation is one point of the portfolio value series.
type Valuation struct {
	TimeStamp time.Time   `json:"ts"`
	Value     fixed.Point `json:"value"`
	Cash      fixed.Point `json:"cash"`
}

// Portfolio is the transactional ledger of the simulation. Cash, positions,
// the transaction log and the valuation series move together under a single
// mutex, so a fill is always observed whole.
type Portfolio struct {
	oracle pricing.Oracle
	mapper common.ContractTickerMapper

	mu          sync.Mutex
	initialCash fixed.Point
	cash        fixed.Point
	positions   map[common.Contract]*Position
	history     []common.Transaction
	valuations  []Valuation
}

func NewPortfolio(oracle pricing.Oracle, mapper common.ContractTickerMapper, initialCash fixed.Point) *Portfolio {
	return &Portfolio{
		oracle:      oracle,
		mapper:      mapper,
		initialCash: initialCash,
		cash:        initialCash,
		positions:   make(map[common.Contract]*Position),
	}
}

// TransactTransaction applies one fill atomically. Cash decreases by the
// signed trade value plus commission, the contract's position absorbs the
// quantity, and the fill is appended to the history.
func (p *Portfolio) TransactTransaction(t common.Transaction) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cash = p.cash.Sub(t.TradeValue()).Sub(t.Commission)

	position, ok := p.positions[t.Contract]
	if !ok {
		position = &Position{Contract: t.Contract}
		p.positions[t.Contract] = position
	}
	position.apply(t)
	if position.Quantity.IsZero() {
		delete(p.positions, t.Contract)
	}

	p.history = append(p.history, t)
}

// EndOfDayUpdate marks all open positions at the last available price and
// appends one valuation record. Positions without any available price keep
// their cost basis for the day.
func (p *Portfolio) EndOfDayUpdate(ctx context.Context, timeStamp time.Time) (Valuation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tickers := make([]common.Ticker, 0, len(p.positions))
	byTicker := make(map[common.Ticker]*Position, len(p.positions))
	for _, position := range p.positions {
		ticker := p.mapper.ToTicker(position.Contract)
		tickers = append(tickers, ticker)
		byTicker[ticker] = position
	}

	prices, err := p.oracle.LastAvailablePrice(ctx, tickers)
	if err != nil {
		return Valuation{}, err
	}

	value := p.cash
	for ticker, position := range byTicker {
		price, ok := prices[ticker]
		if !ok {
			slog.Warn("no price for valuation, using cost basis",
				"ticker", ticker, "ts", timeStamp)
			price = position.AvgCost
		}
		value = value.Add(position.MarketValue(price))
	}

	valuation := Valuation{TimeStamp: timeStamp, Value: value, Cash: p.cash}
	p.valuations = append(p.valuations, valuation)
	return valuation, nil
}

func (p *Portfolio) Cash() fixed.Point {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cash
}

func (p *Portfolio) InitialCash() fixed.Point {
	return p.initialCash
}

// PositionFor returns a copy of the open position for the contract.
func (p *Portfolio) PositionFor(contract common.Contract) (Position, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	position, ok := p.positions[contract]
	if !ok {
		return Position{}, false
	}
	return *position, true
}

func (p *Portfolio) OpenPositions() []Position {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Position, 0, len(p.positions))
	for _, position := range p.positions {
		out = append(out, *position)
	}
	return out
}

func (p *Portfolio) TransactionHistory() []common.Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]common.Transaction, len(p.history))
	copy(out, p.history)
	return out
}

// PortfolioTimeseries returns the end-of-day valuation series in order.
func (p *Portfolio) PortfolioTimeseries() []Valuation {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Valuation, len(p.valuations))
	copy(out, p.valuations)
	return out
}
