package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ModifierSelection maps modifier group id -> option id -> selected quantity.
// A missing key means zero.
type ModifierSelection map[string]map[string]int

// UpsellSelection maps upsell link id -> selected quantity
type UpsellSelection map[string]int

// Clone returns a deep copy of the selection
func (s ModifierSelection) Clone() ModifierSelection {
	if s == nil {
		return nil
	}
	out := make(ModifierSelection, len(s))
	for g, opts := range s {
		inner := make(map[string]int, len(opts))
		for o, q := range opts {
			inner[o] = q
		}
		out[g] = inner
	}
	return out
}

// GroupTotal sums the selected quantities within a group
func (s ModifierSelection) GroupTotal(groupID string) int {
	total := 0
	for _, q := range s[groupID] {
		if q > 0 {
			total += q
		}
	}
	return total
}

// Clone returns a copy of the selection
func (s UpsellSelection) Clone() UpsellSelection {
	if s == nil {
		return nil
	}
	out := make(UpsellSelection, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// CartLine is a customized menu item frozen at add-to-cart time.
// Item is captured by value; TotalPrice is the locked line price.
type CartLine struct {
	ID             string            `json:"id" validate:"required"`
	Item           MenuItem          `json:"item"`
	Quantity       int               `json:"quantity" validate:"gte=1"`
	Modifiers      ModifierSelection `json:"modifiers,omitempty"`
	Upsells        UpsellSelection   `json:"upsells,omitempty"`
	SpecialRequest string            `json:"specialRequest,omitempty" validate:"max=500"`
	UnitPrice      decimal.Decimal   `json:"unitPrice"`
	TotalPrice     decimal.Decimal   `json:"totalPrice"`
	AddedAt        time.Time         `json:"addedAt"`
}

// DeliveryType is how the customer receives the order
type DeliveryType string

const (
	DeliveryPickup   DeliveryType = "pickup"
	DeliveryDineIn   DeliveryType = "dine-in"
	DeliveryDelivery DeliveryType = "delivery"
)

// Valid reports whether d is one of the known delivery types
func (d DeliveryType) Valid() bool {
	switch d {
	case DeliveryPickup, DeliveryDineIn, DeliveryDelivery:
		return true
	}
	return false
}

// TipKind selects how the tip is computed
type TipKind string

const (
	TipNone       TipKind = "none"
	TipPercentage TipKind = "percentage"
	TipCustom     TipKind = "custom"
)

// TipPolicy holds the active tip choice. Only the field matching Kind is meaningful.
type TipPolicy struct {
	Kind    TipKind         `json:"kind"`
	Percent decimal.Decimal `json:"percent"`
	Amount  decimal.Decimal `json:"amount"`
}

// Totals is the order-level price summary
type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Tip         decimal.Decimal `json:"tip"`
	Total       decimal.Decimal `json:"total"`
}

// Customer holds contact and fulfilment details entered at checkout
type Customer struct {
	Name            string `json:"name" validate:"required,max=120"`
	Email           string `json:"email" validate:"omitempty,email"`
	Phone           string `json:"phone" validate:"required,max=32"`
	DeliveryAddress string `json:"deliveryAddress,omitempty"`
	TableNumber     string `json:"tableNumber,omitempty"`
	Notes           string `json:"notes,omitempty" validate:"max=1000"`
}

// Order is a submitted checkout. Status is a free-text workflow label.
type Order struct {
	ID            string       `json:"id"`
	Lines         []CartLine   `json:"lines"`
	DeliveryType  DeliveryType `json:"deliveryType"`
	Tip           TipPolicy    `json:"tip"`
	Totals        Totals       `json:"totals"`
	PaymentMethod string       `json:"paymentMethod"`
	Status        string       `json:"status"`
	Customer      Customer     `json:"customer"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// LineRequest asks the server to price a customization of a catalog item
type LineRequest struct {
	ItemID         string            `json:"itemId" validate:"required"`
	Quantity       int               `json:"quantity" validate:"gte=1,lte=99"`
	Modifiers      ModifierSelection `json:"modifiers,omitempty" validate:"omitempty,dive,dive,gte=0,lte=99"`
	Upsells        UpsellSelection   `json:"upsells,omitempty" validate:"omitempty,dive,gte=0,lte=99"`
	SpecialRequest string            `json:"specialRequest,omitempty" validate:"max=500"`
}

// QuoteRequest carries what the checkout page needs to render totals
type QuoteRequest struct {
	Lines        []CartLine   `json:"lines" validate:"required,min=1,dive"`
	DeliveryType DeliveryType `json:"deliveryType" validate:"required"`
	Tip          TipPolicy    `json:"tip"`
}

// OrderRequest is the checkout submission
type OrderRequest struct {
	Lines         []CartLine   `json:"lines" validate:"required,min=1,dive"`
	DeliveryType  DeliveryType `json:"deliveryType" validate:"required"`
	Tip           TipPolicy    `json:"tip"`
	PaymentMethod string       `json:"paymentMethod" validate:"required,oneof=card cash"`
	Customer      Customer     `json:"customer"`
}

// StatusUpdate sets an order's workflow label
type StatusUpdate struct {
	Status string `json:"status" validate:"required,max=64"`
}
