package execution

import (
	"quantsim/pkg/common"
	"quantsim/pkg/utility/fixed"
)

// SlippageModel turns reference prices into fill prices for a batch of
// orders. Inputs are index-aligned and the output preserves the alignment.
type SlippageModel interface {
	ApplySlippage(orders []common.Order, referencePrices []fixed.Point) []fixed.Point
}

// NoSlippage fills at the reference price.
type NoSlippage struct{}

func (NoSlippage) ApplySlippage(_ []common.Order, referencePrices []fixed.Point) []fixed.Point {
	out := make([]fixed.Point, len(referencePrices))
	copy(out, referencePrices)
	return out
}

// FractionalSlippage moves the fill against the order by a fixed fraction of
// the reference price. Buys pay up, sells receive less.
type FractionalSlippage struct {
	rate fixed.Point
}

func NewFractionalSlippage(rate fixed.Point) FractionalSlippage {
	return FractionalSlippage{rate: rate}
}

func (s FractionalSlippage) ApplySlippage(orders []common.Order, referencePrices []fixed.Point) []fixed.Point {
	out := make([]fixed.Point, len(referencePrices))
	for i, ref := range referencePrices {
		factor := fixed.One.Add(s.rate.MulInt(orders[i].Quantity.Sign()))
		out[i] = ref.Mul(factor)
	}
	return out
}
