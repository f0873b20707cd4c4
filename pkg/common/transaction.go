package common

import (
	"time"

	"quantsim/pkg/utility"
	"quantsim/pkg/utility/fixed"
)

// Transaction is an immutable record of a single executed fill. Created
// exactly once per executed order and owned by the portfolio afterwards.
type Transaction struct {
	Contract   Contract    `json:"contract"`
	Quantity   fixed.Point `json:"quantity"`
	FillPrice  fixed.Point `json:"fill_price"`
	Commission fixed.Point `json:"commission"`
	OrderId    OrderId     `json:"order_id"`

	Source      string              `json:"src,omitempty"`
	ExecutionId utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts"`
}

// TradeValue is the signed cash value of the fill, commission excluded.
func (t Transaction) TradeValue() fixed.Point {
	return t.Quantity.Mul(t.FillPrice)
}
