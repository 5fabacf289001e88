package trading

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// DefaultEpsilon is the tolerance used when two independently computed prices
// are compared during order matching.
const DefaultEpsilon = 1e-4

// Price is a strictly positive quote.
type Price float64

// NewPrice validates v as a price.
func NewPrice(v float64) (Price, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, fmt.Errorf("invalid price: %v", v)
	}
	return Price(v), nil
}

// Direct returns the price as quoted in the canonical direction.
func (p Price) Direct() float64 {
	return float64(p)
}

// Reciprocal returns the price quoted in the reversed direction.
func (p Price) Reciprocal() float64 {
	return 1 / float64(p)
}

// Reversed reports whether the venue's direct ordering is flipped for the
// given side and target. Both venue converters and the normalizer below
// derive their behaviour from this table and nothing else:
//
//	Market Buy  -> direct
//	Market Sell -> reversed
//	Limit  Buy  -> reversed
//	Limit  Sell -> direct
func Reversed(side Side, target Target) bool {
	return (side == Sell) == (target == Market)
}

// NormalizePrice converts a raw price between the venue's canonical book and
// the caller's vocabulary.
func NormalizePrice(side Side, target Target, price Price) Price {
	if Reversed(side, target) {
		return Price(price.Reciprocal())
	}
	return price
}

// NormalizeAmount rescales amount into the asset the normalized price is
// quoted against. When the ordering is reversed the amount of the new base
// asset is amount*price.
func NormalizeAmount(side Side, target Target, price Price, amount float64) float64 {
	if Reversed(side, target) {
		return amount * price.Direct()
	}
	return amount
}

// Normalize applies NormalizePrice and NormalizeAmount together. The transform
// is its own inverse, so the same call maps venue values to abstract ones and
// abstract values to venue ones.
func Normalize(side Side, target Target, price Price, amount float64) (Price, float64) {
	return NormalizePrice(side, target, price), NormalizeAmount(side, target, price, amount)
}

// PricesMatch reports whether a and b are within eps of each other.
func PricesMatch(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

// ParseDecimal parses a string-encoded numeric venue field. Anything that is
// not a finite, strictly positive decimal is rejected.
func ParseDecimal(field, value string) (float64, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, &MalformedResponseError{Field: field, Value: value, Err: err}
	}
	if d.Sign() <= 0 {
		return 0, &MalformedResponseError{Field: field, Value: value, Err: fmt.Errorf("must be positive")}
	}
	f, err := DecimalFloat(field, value, d)
	if err != nil {
		return 0, err
	}
	if _, err := NewPrice(f); err != nil {
		return 0, &MalformedResponseError{Field: field, Value: value, Err: err}
	}
	return f, nil
}

// DecimalFloat converts d, parsed from value, to a float64. Values that
// would overflow to infinity or underflow to zero are rejected.
func DecimalFloat(field, value string, d decimal.Decimal) (float64, error) {
	f := d.InexactFloat64()
	if math.IsNaN(f) || math.IsInf(f, 0) || (f == 0 && !d.IsZero()) {
		return 0, &MalformedResponseError{Field: field, Value: value, Err: fmt.Errorf("out of float64 range")}
	}
	return f, nil
}

// FormatDecimal renders v the way venues expect numeric string fields.
func FormatDecimal(v float64) string {
	return decimal.NewFromFloat(v).String()
}
