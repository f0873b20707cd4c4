package portfolio

import (
	"quantsim/pkg/common"
	"quantsim/pkg/utility/fixed"
)

// Position is the per-contract average-cost bookkeeping of the portfolio.
// Quantity is signed. AvgCost is the commission-inclusive cost basis per
// share and keeps its value while the position is being reduced.
type Position struct {
	Contract    common.Contract
	Quantity    fixed.Point
	AvgCost     fixed.Point
	RealizedPnL fixed.Point
}

func (p *Position) apply(t common.Transaction) {
	if p.Quantity.IsZero() || p.Quantity.Sign() == t.Quantity.Sign() {
		p.increase(t)
		return
	}

	if t.Quantity.Abs().Gt(p.Quantity.Abs()) {
		p.flip(t)
		return
	}
	p.reduce(t)
}

func (p *Position) increase(t common.Transaction) {
	newQuantity := p.Quantity.Add(t.Quantity)
	totalCost := p.Quantity.Mul(p.AvgCost).Add(t.TradeValue()).Add(t.Commission)
	p.AvgCost = totalCost.Div(newQuantity)
	p.Quantity = newQuantity
}

func (p *Position) reduce(t common.Transaction) {
	closed := t.Quantity.Neg()
	p.RealizedPnL = p.RealizedPnL.
		Add(closed.Mul(t.FillPrice.Sub(p.AvgCost))).
		Sub(t.Commission)
	p.Quantity = p.Quantity.Add(t.Quantity)
	if p.Quantity.IsZero() {
		p.AvgCost = fixed.Zero
	}
}

func (p *Position) flip(t common.Transaction) {
	p.RealizedPnL = p.RealizedPnL.
		Add(p.Quantity.Mul(t.FillPrice.Sub(p.AvgCost))).
		Sub(t.Commission)
	p.Quantity = p.Quantity.Add(t.Quantity)
	p.AvgCost = t.FillPrice
}

// MarketValue is the signed value of the open quantity at the given price.
func (p *Position) MarketValue(price fixed.Point) fixed.Point {
	return p.Quantity.Mul(price)
}

// UnrealizedPnL is the gain over the cost basis at the given price.
func (p *Position) UnrealizedPnL(price fixed.Point) fixed.Point {
	return p.Quantity.Mul(price.Sub(p.AvgCost))
}
