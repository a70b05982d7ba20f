package models

import "github.com/shopspring/decimal"

// MenuItem represents a dish on the menu together with its customization options
type MenuItem struct {
	ID             string           `json:"id" validate:"required"`
	Name           string           `json:"name" validate:"required"`
	Description    string           `json:"description,omitempty"`
	Category       string           `json:"category,omitempty"`
	Price          decimal.Decimal  `json:"price"`
	PromoPrice     *decimal.Decimal `json:"promoPrice,omitempty"`
	PromoActive    bool             `json:"promoActive"`
	Available      bool             `json:"available"`
	ModifierGroups []ModifierGroup  `json:"modifierGroups,omitempty" validate:"dive"`
	Upsells        []UpsellLink     `json:"upsells,omitempty" validate:"dive"`
}

// ModifierGroup is a named set of choices such as "Size" or "Spice Level".
// MaxSelections caps the summed quantity across all options; zero means no cap.
type ModifierGroup struct {
	ID            string           `json:"id" validate:"required"`
	Name          string           `json:"name"`
	Required      bool             `json:"required"`
	MinSelections int              `json:"minSelections,omitempty" validate:"gte=0"`
	MaxSelections int              `json:"maxSelections,omitempty" validate:"gte=0"`
	Options       []ModifierOption `json:"options" validate:"dive"`
}

// ModifierOption is a single choice inside a group. PriceDelta may be negative.
type ModifierOption struct {
	ID         string          `json:"id" validate:"required"`
	Name       string          `json:"name"`
	PriceDelta decimal.Decimal `json:"priceDelta"`
	Default    bool            `json:"default,omitempty"`
}

// UpsellLink suggests another menu item alongside the primary one
type UpsellLink struct {
	ID            string        `json:"id" validate:"required"`
	SuggestedItem SuggestedItem `json:"suggestedItem"`
	Message       string        `json:"message,omitempty"`
}

// SuggestedItem is the denormalized view of an upsold menu item
type SuggestedItem struct {
	ID          string           `json:"id" validate:"required"`
	Name        string           `json:"name"`
	Price       decimal.Decimal  `json:"price"`
	PromoPrice  *decimal.Decimal `json:"promoPrice,omitempty"`
	PromoActive bool             `json:"promoActive,omitempty"`
}

// Group returns the modifier group with the given id
func (m MenuItem) Group(id string) (ModifierGroup, bool) {
	for _, g := range m.ModifierGroups {
		if g.ID == id {
			return g, true
		}
	}
	return ModifierGroup{}, false
}

// Upsell returns the upsell link with the given id
func (m MenuItem) Upsell(id string) (UpsellLink, bool) {
	for _, u := range m.Upsells {
		if u.ID == id {
			return u, true
		}
	}
	return UpsellLink{}, false
}

// Option returns the option with the given id
func (g ModifierGroup) Option(id string) (ModifierOption, bool) {
	for _, o := range g.Options {
		if o.ID == id {
			return o, true
		}
	}
	return ModifierOption{}, false
}

// Clone returns a deep copy so a snapshot never shares slices with the catalog
func (m MenuItem) Clone() MenuItem {
	c := m
	if m.PromoPrice != nil {
		p := *m.PromoPrice
		c.PromoPrice = &p
	}
	if m.ModifierGroups != nil {
		c.ModifierGroups = make([]ModifierGroup, len(m.ModifierGroups))
		for i, g := range m.ModifierGroups {
			gc := g
			if g.Options != nil {
				gc.Options = make([]ModifierOption, len(g.Options))
				copy(gc.Options, g.Options)
			}
			c.ModifierGroups[i] = gc
		}
	}
	if m.Upsells != nil {
		c.Upsells = make([]UpsellLink, len(m.Upsells))
		for i, u := range m.Upsells {
			uc := u
			if u.SuggestedItem.PromoPrice != nil {
				p := *u.SuggestedItem.PromoPrice
				uc.SuggestedItem.PromoPrice = &p
			}
			c.Upsells[i] = uc
		}
	}
	return c
}
