package levelbook

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// PriceToDecimal converts an integer tick price into a decimal with scale fractional digits.
// e.g. 12345 with scale 2 is 123.45.
func PriceToDecimal(price uint64, scale int32) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(price), -scale)
}

// DecimalToPrice converts a decimal into integer ticks of the given scale.
// Returns ErrInvalidParam if the value is negative, has more fractional digits
// than scale allows, or does not fit into 64 bits.
func DecimalToPrice(d decimal.Decimal, scale int32) (uint64, error) {
	if d.IsNegative() {
		return 0, ErrInvalidParam
	}
	shifted := d.Shift(scale)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, ErrInvalidParam
	}
	n := shifted.BigInt()
	if !n.IsUint64() {
		return 0, ErrInvalidParam
	}
	return n.Uint64(), nil
}

// formatPrice renders a reference price for diagnostics. The sentinels are
// rendered by name since they are not real quotes.
func formatPrice(price uint64, scale int32) string {
	switch price {
	case MaxPrice:
		return "max"
	case MinPrice:
		return "0"
	}
	return PriceToDecimal(price, scale).String()
}
