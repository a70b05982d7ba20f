package pricing

import "github.com/Lixing-Zhang/bistro-ordering/internal/models"

// MaxSelectionQuantity bounds the quantity of a single option or upsell
const MaxSelectionQuantity = 99

// IncrementOption returns a copy of sel with one more unit of the option.
// When the group has a cap and its total is already at the cap the increment
// is rejected with GroupSelectionCapReached and sel is returned unchanged.
func IncrementOption(sel models.ModifierSelection, group models.ModifierGroup, optionID string) (models.ModifierSelection, error) {
	return AddOption(sel, group, optionID, 1)
}

// AddOption returns a copy of sel with qty more units of the option. The cap
// is checked against the resulting group total in one step.
func AddOption(sel models.ModifierSelection, group models.ModifierGroup, optionID string, qty int) (models.ModifierSelection, error) {
	if qty < 1 || qty > MaxSelectionQuantity {
		return sel, &ValidationError{Kind: InvalidQuantity, Group: group.Name, Max: MaxSelectionQuantity}
	}
	if group.MaxSelections > 0 && sel.GroupTotal(group.ID)+qty > group.MaxSelections {
		return sel, &ValidationError{Kind: GroupSelectionCapReached, Group: group.Name, Max: group.MaxSelections}
	}

	out := sel.Clone()
	if out == nil {
		out = make(models.ModifierSelection)
	}
	if out[group.ID] == nil {
		out[group.ID] = make(map[string]int)
	}
	out[group.ID][optionID] += qty
	return out, nil
}

// DecrementOption returns a copy of sel with one unit less of the option.
// Quantities floor at zero; a zero option key is removed, and the group key
// is removed once it has no options left.
func DecrementOption(sel models.ModifierSelection, groupID, optionID string) models.ModifierSelection {
	out := sel.Clone()
	opts, ok := out[groupID]
	if !ok {
		return out
	}
	if qty := opts[optionID]; qty > 1 {
		opts[optionID] = qty - 1
	} else {
		delete(opts, optionID)
	}
	if len(opts) == 0 {
		delete(out, groupID)
	}
	return out
}

// IncrementUpsell returns a copy of sel with one more unit of the upsell
func IncrementUpsell(sel models.UpsellSelection, upsellID string) models.UpsellSelection {
	out := sel.Clone()
	if out == nil {
		out = make(models.UpsellSelection)
	}
	out[upsellID]++
	return out
}

// AddUpsell returns a copy of sel with qty more units of the upsell
func AddUpsell(sel models.UpsellSelection, upsellID string, qty int) (models.UpsellSelection, error) {
	if qty < 1 || qty > MaxSelectionQuantity || sel[upsellID]+qty > MaxSelectionQuantity {
		return sel, &ValidationError{Kind: InvalidQuantity, Max: MaxSelectionQuantity}
	}
	out := sel.Clone()
	if out == nil {
		out = make(models.UpsellSelection)
	}
	out[upsellID] += qty
	return out, nil
}

// DecrementUpsell returns a copy of sel with one unit less of the upsell,
// removing the key at zero.
func DecrementUpsell(sel models.UpsellSelection, upsellID string) models.UpsellSelection {
	out := sel.Clone()
	if qty := out[upsellID]; qty > 1 {
		out[upsellID] = qty - 1
	} else {
		delete(out, upsellID)
	}
	return out
}
