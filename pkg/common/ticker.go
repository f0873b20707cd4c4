package common

// Ticker identifies an instrument on the data side (price queries).
type Ticker string

func (t Ticker) String() string { return string(t) }

// PriceField selects one component of a bar.
type PriceField int

const (
	FieldOpen PriceField = iota
	FieldHigh
	FieldLow
	FieldClose
	FieldVolume
)

func (f PriceField) String() string {
	switch f {
	case FieldOpen:
		return "open"
	case FieldHigh:
		return "high"
	case FieldLow:
		return "low"
	case FieldClose:
		return "close"
	case FieldVolume:
		return "volume"
	default:
		return "unknown"
	}
}

// OHLCV lists every price field, in bar column order.
func OHLCV() []PriceField {
	return []PriceField{FieldOpen, FieldHigh, FieldLow, FieldClose, FieldVolume}
}
