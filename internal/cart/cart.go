package cart

import (
	"errors"
	"time"

	"github.com/Lixing-Zhang/bistro-ordering/internal/models"
	"github.com/Lixing-Zhang/bistro-ordering/internal/pricing"
	"github.com/shopspring/decimal"
)

var ErrLineNotFound = errors.New("cart line not found")

// Cart is a single customer's list of locked lines. It is not safe for
// concurrent use; each session owns its own Cart.
type Cart struct {
	lines []models.CartLine
}

// New creates a cart from existing lines
func New(lines ...models.CartLine) *Cart {
	c := &Cart{}
	c.lines = append(c.lines, lines...)
	return c
}

// Add freezes the draft into a line and appends it
func (c *Cart) Add(d Draft, now time.Time) (models.CartLine, error) {
	line, err := d.Line(now)
	if err != nil {
		return models.CartLine{}, err
	}
	c.lines = append(c.lines, line)
	return line, nil
}

// Remove deletes a line by id
func (c *Cart) Remove(lineID string) error {
	for i, l := range c.lines {
		if l.ID == lineID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return nil
		}
	}
	return ErrLineNotFound
}

// SetQuantity changes a line's quantity and re-prices it from the line's own
// snapshot. The catalog is never consulted, so the lock survives menu edits.
func (c *Cart) SetQuantity(lineID string, qty int) (models.CartLine, error) {
	if qty < 1 {
		return models.CartLine{}, &pricing.ValidationError{Kind: pricing.InvalidQuantity}
	}
	for i, l := range c.lines {
		if l.ID != lineID {
			continue
		}
		price := pricing.PriceLine(l.Item, qty, l.Modifiers, l.Upsells)
		l.Quantity = qty
		l.UnitPrice = price.UnitWithUpsells
		l.TotalPrice = price.Total
		c.lines[i] = l
		return l, nil
	}
	return models.CartLine{}, ErrLineNotFound
}

// Lines returns a copy of the cart's lines
func (c *Cart) Lines() []models.CartLine {
	out := make([]models.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

// Subtotal sums the locked line prices
func (c *Cart) Subtotal() decimal.Decimal {
	return pricing.Subtotal(c.lines)
}

// Clear empties the cart after a successful checkout
func (c *Cart) Clear() {
	c.lines = nil
}
