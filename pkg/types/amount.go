package types

import "github.com/shopspring/decimal"

// Amount is an exact fixed-point value decoded from an implied-point field.
// It marshals to a bare JSON number rather than decimal's quoted default.
type Amount struct {
	decimal.Decimal
}

// NewAmount returns unscaled / 10^scale.
func NewAmount(unscaled decimal.Decimal, scale int) Amount {
	return Amount{Decimal: unscaled.Shift(int32(-scale))}
}

// MarshalJSON implements json.Marshaler.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// Float64 returns the nearest float64, for consumers that want plain numbers.
func (a Amount) Float64() float64 {
	return a.Decimal.InexactFloat64()
}
