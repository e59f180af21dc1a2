package model

import (
	"errors"

	"github.com/shopspring/decimal"
)

// minorExponent is the number of minor units digits of the supported currencies.
const minorExponent = 2

// ErrUnrepresentableAmount reports an amount that is not a whole number of minor units
// or does not fit in int64.
var ErrUnrepresentableAmount = errors.New("amount is not a whole number of minor units in range")

// MinorUnits converts a major unit amount to exact integer minor units.
func MinorUnits(amount decimal.Decimal) (int64, error) {
	shifted := amount.Shift(minorExponent)
	if !shifted.IsInteger() {
		return 0, ErrUnrepresentableAmount
	}
	n := shifted.BigInt()
	if !n.IsInt64() {
		return 0, ErrUnrepresentableAmount
	}
	return n.Int64(), nil
}

// ToMinorUnits converts a major unit amount to integer minor units, rounding half away
// from zero. Callers validate the range with MinorUnits first.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(minorExponent).Round(0).IntPart()
}

// FromMinorUnits converts integer minor units to a major unit amount.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -minorExponent)
}
