package pricing

import "github.com/shopspring/decimal"

// Round rounds half away from zero to cents for display
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FormatCurrency renders an amount as dollars, e.g. "$67.07" or "-$1.50"
func FormatCurrency(d decimal.Decimal) string {
	r := Round(d)
	if r.IsNegative() {
		return "-$" + r.Neg().StringFixed(2)
	}
	return "$" + r.StringFixed(2)
}
