package pricing

import (
	"github.com/Lixing-Zhang/bistro-ordering/internal/models"
	"github.com/shopspring/decimal"
)

var (
	// DefaultTaxRate is the flat sales tax applied to the subtotal
	DefaultTaxRate = decimal.RequireFromString("0.08")
	// DefaultDeliveryFee is charged only for delivery orders
	DefaultDeliveryFee = decimal.RequireFromString("5.00")
)

// Calculator aggregates cart lines into order totals
type Calculator struct {
	TaxRate     decimal.Decimal
	DeliveryFee decimal.Decimal
}

// NewCalculator creates a calculator with the default tax rate and delivery fee
func NewCalculator() *Calculator {
	return &Calculator{
		TaxRate:     DefaultTaxRate,
		DeliveryFee: DefaultDeliveryFee,
	}
}

// Subtotal sums each line's locked TotalPrice. Lines are never re-priced here.
func Subtotal(lines []models.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.TotalPrice)
	}
	return sum
}

// Totals computes subtotal, tax, delivery fee, tip and total.
// A total that is not strictly positive fails with InvalidTotal.
func (c *Calculator) Totals(lines []models.CartLine, delivery models.DeliveryType, tip models.TipPolicy) (models.Totals, error) {
	subtotal := Subtotal(lines)
	tax := subtotal.Mul(c.TaxRate)

	fee := decimal.Zero
	if delivery == models.DeliveryDelivery {
		fee = c.DeliveryFee
	}

	tipAmount := TipAmount(tip, subtotal.Add(tax).Add(fee))

	totals := models.Totals{
		Subtotal:    subtotal,
		Tax:         tax,
		DeliveryFee: fee,
		Tip:         tipAmount,
		Total:       subtotal.Add(tax).Add(fee).Add(tipAmount),
	}

	if !totals.Total.IsPositive() {
		return totals, &ValidationError{Kind: InvalidTotal}
	}
	return totals, nil
}

// TipAmount applies the tip policy to base (subtotal + tax + delivery fee).
// Negative tips are treated as zero.
func TipAmount(tip models.TipPolicy, base decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch tip.Kind {
	case models.TipPercentage:
		amount = tip.Percent.Mul(base)
	case models.TipCustom:
		amount = tip.Amount
	default:
		return decimal.Zero
	}
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// NoTip clears any tip
func NoTip() models.TipPolicy {
	return models.TipPolicy{Kind: models.TipNone}
}

// PercentageTip selects a percentage of the base, e.g. 0.15; any custom amount is cleared
func PercentageTip(percent decimal.Decimal) models.TipPolicy {
	return models.TipPolicy{Kind: models.TipPercentage, Percent: percent}
}

// CustomTip selects a fixed amount; any percentage is cleared
func CustomTip(amount decimal.Decimal) models.TipPolicy {
	return models.TipPolicy{Kind: models.TipCustom, Amount: amount}
}
