package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string such as "100" or "1818.6778" into
// the float64 the pricing engine works in. Negative values are accepted
// here; range checks belong to PoolState.Validate and Order.Validate.
func ParseAmount(s string) (float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("amount %q is not a valid decimal number", s)
	}
	return d.InexactFloat64(), nil
}

// AmountFromDecimal converts an already-decoded decimal to float64.
func AmountFromDecimal(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// FormatAmount renders f with exactly places digits after the decimal point,
// rounding half away from zero. Non-finite values are printed as-is because
// decimal cannot represent them.
func FormatAmount(f float64, places int32) string {
	if !isFinite(f) {
		return fmt.Sprint(f)
	}
	return decimal.NewFromFloat(f).StringFixed(places)
}
