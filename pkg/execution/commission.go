package execution

import (
	"quantsim/pkg/common"
	"quantsim/pkg/utility/fixed"
)

// CommissionModel prices the cost of one fill. Returned values are always
// non-negative.
type CommissionModel interface {
	Calculate(order common.Order, fillPrice fixed.Point) fixed.Point
}

type ZeroCommission struct{}

func (ZeroCommission) Calculate(common.Order, fixed.Point) fixed.Point {
	return fixed.Zero
}

// FixedCommission charges a flat fee per fill.
type FixedCommission struct {
	fee fixed.Point
}

func NewFixedCommission(fee fixed.Point) FixedCommission {
	return FixedCommission{fee: fee}
}

func (c FixedCommission) Calculate(common.Order, fixed.Point) fixed.Point {
	return c.fee
}

// BpsTradeValueCommission charges basis points of the absolute trade value.
type BpsTradeValueCommission struct {
	bps fixed.Point
}

func NewBpsTradeValueCommission(bps fixed.Point) BpsTradeValueCommission {
	return BpsTradeValueCommission{bps: bps}
}

func (c BpsTradeValueCommission) Calculate(order common.Order, fillPrice fixed.Point) fixed.Point {
	return order.Quantity.Abs().Mul(fillPrice).Mul(c.bps).DivInt(10000)
}
