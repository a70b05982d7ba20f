// Package pricing computes menu item line prices and order totals.
//
// Everything here is pure: no I/O, no clocks, deterministic given its inputs.
// Amounts are carried at full precision and only rounded by Round/FormatCurrency.
package pricing

import (
	"github.com/Lixing-Zhang/bistro-ordering/internal/models"
	"github.com/shopspring/decimal"
)

// LinePrice is the breakdown of a single cart line
type LinePrice struct {
	// Unit is the effective item price plus modifier deltas
	Unit decimal.Decimal `json:"unit"`
	// UnitWithUpsells adds the upsell delta to Unit
	UnitWithUpsells decimal.Decimal `json:"unitWithUpsells"`
	Total           decimal.Decimal `json:"total"`
}

// EffectiveUnitPrice returns the promo price when the promo is active and
// strictly cheaper than the base price, otherwise the base price.
func EffectiveUnitPrice(item models.MenuItem) decimal.Decimal {
	if item.PromoActive && item.PromoPrice != nil && item.PromoPrice.LessThan(item.Price) {
		return *item.PromoPrice
	}
	return item.Price
}

// ModifierDelta sums PriceDelta*qty over the item's selected options.
// Selections for groups or options the item does not have are ignored.
func ModifierDelta(item models.MenuItem, sel models.ModifierSelection) decimal.Decimal {
	delta := decimal.Zero
	if len(item.ModifierGroups) == 0 {
		return delta
	}
	for _, g := range item.ModifierGroups {
		chosen := sel[g.ID]
		if len(chosen) == 0 {
			continue
		}
		for _, o := range g.Options {
			if qty := chosen[o.ID]; qty > 0 {
				delta = delta.Add(o.PriceDelta.Mul(decimal.NewFromInt(int64(qty))))
			}
		}
	}
	return delta
}

// UpsellDelta sums the suggested items' base prices times their quantities.
// Promo prices of upsold items are deliberately not applied.
func UpsellDelta(item models.MenuItem, sel models.UpsellSelection) decimal.Decimal {
	delta := decimal.Zero
	for _, u := range item.Upsells {
		if qty := sel[u.ID]; qty > 0 {
			delta = delta.Add(u.SuggestedItem.Price.Mul(decimal.NewFromInt(int64(qty))))
		}
	}
	return delta
}

// PriceLine computes the full breakdown for a line. Upsells are added per unit
// of the parent quantity.
func PriceLine(item models.MenuItem, quantity int, mods models.ModifierSelection, upsells models.UpsellSelection) LinePrice {
	unit := EffectiveUnitPrice(item).Add(ModifierDelta(item, mods))
	withUpsells := unit.Add(UpsellDelta(item, upsells))
	return LinePrice{
		Unit:            unit,
		UnitWithUpsells: withUpsells,
		Total:           withUpsells.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// LineTotal is PriceLine(...).Total
func LineTotal(item models.MenuItem, quantity int, mods models.ModifierSelection, upsells models.UpsellSelection) decimal.Decimal {
	return PriceLine(item, quantity, mods, upsells).Total
}

// ValidateRequiredModifiers fails on the first required group (in menu order)
// with no selected quantity.
func ValidateRequiredModifiers(item models.MenuItem, sel models.ModifierSelection) error {
	for _, g := range item.ModifierGroups {
		if !g.Required {
			continue
		}
		if sel.GroupTotal(g.ID) == 0 {
			return &ValidationError{Kind: MissingRequiredGroup, Group: g.Name}
		}
	}
	return nil
}

// ValidatePrices rejects negative base prices and malformed promo prices
// on the item and its upsells.
func ValidatePrices(item models.MenuItem) error {
	if item.Price.IsNegative() {
		return &ValidationError{Kind: InvalidPrice, Item: item.Name}
	}
	if item.PromoPrice != nil && item.PromoPrice.IsNegative() {
		return &ValidationError{Kind: InvalidPrice, Item: item.Name}
	}
	for _, u := range item.Upsells {
		if u.SuggestedItem.Price.IsNegative() {
			return &ValidationError{Kind: InvalidPrice, Item: u.SuggestedItem.Name}
		}
	}
	return nil
}
