package common

import (
	"time"

	"quantsim/pkg/utility"
	"quantsim/pkg/utility/fixed"
)

type Bar struct {
	Ticker      Ticker              `json:"ticker,omitempty"`
	Source      string              `json:"src,omitempty"`
	ExecutionId utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts"`
	Period      time.Duration       `json:"period"`
	Open        fixed.Point         `json:"open"`
	High        fixed.Point         `json:"high"`
	Low         fixed.Point         `json:"low"`
	Close       fixed.Point         `json:"close"`
	Volume      fixed.Point         `json:"volume"`
}

// Field returns the requested component of the bar.
func (b Bar) Field(f PriceField) fixed.Point {
	switch f {
	case FieldOpen:
		return b.Open
	case FieldHigh:
		return b.High
	case FieldLow:
		return b.Low
	case FieldClose:
		return b.Close
	case FieldVolume:
		return b.Volume
	default:
		return fixed.Zero
	}
}
