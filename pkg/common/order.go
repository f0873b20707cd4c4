package common

import (
	"time"

	"quantsim/pkg/utility"
	"quantsim/pkg/utility/fixed"
)

type OrderId = int64

type ExecutionStyle int
type TimeInForce int

const (
	// StyleMarket fills at the next market open after acceptance.
	StyleMarket ExecutionStyle = iota
	// StyleStop rests until the bar range crosses the stop price.
	StyleStop
	// StyleMarketOnClose fills at the close of the current session.
	StyleMarketOnClose
)

const (
	TimeInForceDay TimeInForce = iota
	TimeInForceGoodTillCancel
)

func (s ExecutionStyle) String() string {
	switch s {
	case StyleMarket:
		return "market"
	case StyleStop:
		return "stop"
	case StyleMarketOnClose:
		return "market-on-close"
	default:
		return "unknown"
	}
}

func (t TimeInForce) String() string {
	switch t {
	case TimeInForceDay:
		return "day"
	case TimeInForceGoodTillCancel:
		return "gtc"
	default:
		return "unknown"
	}
}

// Order is an immutable trade intent. Quantity is signed, the sign is the
// direction. Id is assigned once on acceptance and never reused.
type Order struct {
	Id          OrderId        `json:"id"`
	Contract    Contract       `json:"contract"`
	Quantity    fixed.Point    `json:"quantity"`
	Style       ExecutionStyle `json:"style"`
	StopPrice   fixed.Point    `json:"stop_price,omitempty"`
	TimeInForce TimeInForce    `json:"time_in_force"`

	Source      string              `json:"src,omitempty"`
	ExecutionId utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts"`
}

func (o Order) IsBuy() bool  { return o.Quantity.Gt(fixed.Zero) }
func (o Order) IsSell() bool { return o.Quantity.Lt(fixed.Zero) }
