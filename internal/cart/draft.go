// Package cart holds the customer-side cart: the customization draft for a
// single menu item, the list of locked cart lines, and decoding of carts
// persisted by the client.
package cart

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Lixing-Zhang/bistro-ordering/internal/models"
	"github.com/Lixing-Zhang/bistro-ordering/internal/pricing"
	"github.com/google/uuid"
)

var (
	ErrUnknownOption = errors.New("unknown modifier option")
	ErrUnknownUpsell = errors.New("unknown upsell")
)

// Draft is the in-progress customization of one menu item.
// It is immutable: every reducer returns a new Draft and leaves the receiver untouched.
type Draft struct {
	item           models.MenuItem
	quantity       int
	modifiers      models.ModifierSelection
	upsells        models.UpsellSelection
	specialRequest string
}

// NewDraft starts a customization with quantity 1 and the item's default
// options preselected, as far as each group's cap allows.
func NewDraft(item models.MenuItem) Draft {
	d := Draft{
		item:     item.Clone(),
		quantity: 1,
	}
	for _, g := range d.item.ModifierGroups {
		for _, o := range g.Options {
			if !o.Default {
				continue
			}
			if sel, err := pricing.IncrementOption(d.modifiers, g, o.ID); err == nil {
				d.modifiers = sel
			}
		}
	}
	return d
}

func (d Draft) Item() models.MenuItem { return d.item.Clone() }
func (d Draft) Quantity() int { return d.quantity }
func (d Draft) Modifiers() models.ModifierSelection { return d.modifiers.Clone() }
func (d Draft) Upsells() models.UpsellSelection { return d.upsells.Clone() }
func (d Draft) SpecialRequest() string { return d.specialRequest }

// WithQuantity sets the parent quantity; it must be at least 1
func (d Draft) WithQuantity(q int) (Draft, error) {
	if q < 1 {
		return d, &pricing.ValidationError{Kind: pricing.InvalidQuantity}
	}
	d.quantity = q
	return d, nil
}

// WithSpecialRequest sets the free-text note for the kitchen
func (d Draft) WithSpecialRequest(s string) Draft {
	d.specialRequest = strings.TrimSpace(s)
	return d
}

// IncrementOption adds one unit of an option, enforcing the group cap
func (d Draft) IncrementOption(groupID, optionID string) (Draft, error) {
	g, ok := d.item.Group(groupID)
	if !ok {
		return d, fmt.Errorf("%w: group %q", ErrUnknownOption, groupID)
	}
	if _, ok := g.Option(optionID); !ok {
		return d, fmt.Errorf("%w: %q in %s", ErrUnknownOption, optionID, g.Name)
	}
	sel, err := pricing.IncrementOption(d.modifiers, g, optionID)
	if err != nil {
		return d, err
	}
	d.modifiers = sel
	return d, nil
}

// DecrementOption removes one unit of an option, flooring at zero
func (d Draft) DecrementOption(groupID, optionID string) Draft {
	d.modifiers = pricing.DecrementOption(d.modifiers, groupID, optionID)
	return d
}

// IncrementUpsell adds one unit of a suggested item
func (d Draft) IncrementUpsell(upsellID string) (Draft, error) {
	if _, ok := d.item.Upsell(upsellID); !ok {
		return d, fmt.Errorf("%w: %q", ErrUnknownUpsell, upsellID)
	}
	d.upsells = pricing.IncrementUpsell(d.upsells, upsellID)
	return d, nil
}

// DecrementUpsell removes one unit of a suggested item, flooring at zero
func (d Draft) DecrementUpsell(upsellID string) Draft {
	d.upsells = pricing.DecrementUpsell(d.upsells, upsellID)
	return d
}

// WithSelections replaces the draft's selections with the requested ones.
// Each entry goes through the same cap and id checks as the +/- buttons, with
// the quantity applied in one step. Zero entries are ignored.
func (d Draft) WithSelections(mods models.ModifierSelection, upsells models.UpsellSelection) (Draft, error) {
	next := d
	next.modifiers = nil
	next.upsells = nil

	var err error
	for groupID, opts := range mods {
		g, ok := d.item.Group(groupID)
		if !ok {
			return d, fmt.Errorf("%w: group %q", ErrUnknownOption, groupID)
		}
		for optionID, qty := range opts {
			if qty == 0 {
				continue
			}
			if _, ok := g.Option(optionID); !ok {
				return d, fmt.Errorf("%w: %q in %s", ErrUnknownOption, optionID, g.Name)
			}
			if next.modifiers, err = pricing.AddOption(next.modifiers, g, optionID, qty); err != nil {
				return d, err
			}
		}
	}
	for upsellID, qty := range upsells {
		if qty == 0 {
			continue
		}
		if _, ok := d.item.Upsell(upsellID); !ok {
			return d, fmt.Errorf("%w: %q", ErrUnknownUpsell, upsellID)
		}
		if next.upsells, err = pricing.AddUpsell(next.upsells, upsellID, qty); err != nil {
			return d, err
		}
	}
	return next, nil
}

// ValidateSelections checks selections against the item they were made on.
// Every id must exist in the item, quantities must be within
// [0, pricing.MaxSelectionQuantity] and no group may exceed its cap.
func ValidateSelections(item models.MenuItem, mods models.ModifierSelection, upsells models.UpsellSelection) error {
	for groupID, opts := range mods {
		g, ok := item.Group(groupID)
		if !ok {
			return fmt.Errorf("%w: group %q", ErrUnknownOption, groupID)
		}
		for optionID, qty := range opts {
			if _, ok := g.Option(optionID); !ok {
				return fmt.Errorf("%w: %q in %s", ErrUnknownOption, optionID, g.Name)
			}
			if qty < 0 || qty > pricing.MaxSelectionQuantity {
				return &pricing.ValidationError{Kind: pricing.InvalidQuantity, Group: g.Name, Max: pricing.MaxSelectionQuantity}
			}
		}
		if g.MaxSelections > 0 && mods.GroupTotal(groupID) > g.MaxSelections {
			return &pricing.ValidationError{Kind: pricing.GroupSelectionCapReached, Group: g.Name, Max: g.MaxSelections}
		}
	}
	for upsellID, qty := range upsells {
		if _, ok := item.Upsell(upsellID); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownUpsell, upsellID)
		}
		if qty < 0 || qty > pricing.MaxSelectionQuantity {
			return &pricing.ValidationError{Kind: pricing.InvalidQuantity, Max: pricing.MaxSelectionQuantity}
		}
	}
	return nil
}

// Price returns the live price of the draft
func (d Draft) Price() pricing.LinePrice {
	return pricing.PriceLine(d.item, d.quantity, d.modifiers, d.upsells)
}

// Validate checks that every required group has a selection
func (d Draft) Validate() error {
	if err := pricing.ValidatePrices(d.item); err != nil {
		return err
	}
	return pricing.ValidateRequiredModifiers(d.item, d.modifiers)
}

// Line validates the draft and freezes it into a cart line. The returned line
// owns copies of the item and selections; its TotalPrice is locked.
func (d Draft) Line(now time.Time) (models.CartLine, error) {
	if err := d.Validate(); err != nil {
		return models.CartLine{}, err
	}
	price := d.Price()
	return models.CartLine{
		ID:             uuid.NewString(),
		Item:           d.item.Clone(),
		Quantity:       d.quantity,
		Modifiers:      d.modifiers.Clone(),
		Upsells:        d.upsells.Clone(),
		SpecialRequest: d.specialRequest,
		UnitPrice:      price.UnitWithUpsells,
		TotalPrice:     price.Total,
		AddedAt:        now.UTC(),
	}, nil
}
