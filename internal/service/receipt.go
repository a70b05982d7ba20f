package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Lixing-Zhang/bistro-ordering/internal/models"
	"github.com/Lixing-Zhang/bistro-ordering/internal/pricing"
)

// Receipt is the customer-facing confirmation of a placed order
type Receipt struct {
	OrderID       string              `json:"orderId"`
	Status        string              `json:"status"`
	DeliveryType  models.DeliveryType `json:"deliveryType"`
	PaymentMethod string              `json:"paymentMethod"`
	CustomerName  string              `json:"customerName"`
	Lines         []ReceiptLine       `json:"lines"`
	Totals        DisplayTotals       `json:"totals"`
	CreatedAt     time.Time           `json:"createdAt"`
}

// ReceiptLine describes one cart line as it was priced at add-to-cart time
type ReceiptLine struct {
	Name           string   `json:"name"`
	Quantity       int      `json:"quantity"`
	Options        []string `json:"options,omitempty"`
	Extras         []string `json:"extras,omitempty"`
	SpecialRequest string   `json:"specialRequest,omitempty"`
	UnitPrice      string   `json:"unitPrice"`
	Total          string   `json:"total"`
}

// Receipt loads an order and renders its receipt
func (s *OrderService) Receipt(ctx context.Context, id string) (*Receipt, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r := BuildReceipt(order)
	return &r, nil
}

// BuildReceipt renders an order using the locked line prices
func BuildReceipt(order *models.Order) Receipt {
	lines := make([]ReceiptLine, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, receiptLine(line))
	}
	return Receipt{
		OrderID:       order.ID,
		Status:        order.Status,
		DeliveryType:  order.DeliveryType,
		PaymentMethod: order.PaymentMethod,
		CustomerName:  order.Customer.Name,
		Lines:         lines,
		Totals:        display(order.Totals),
		CreatedAt:     order.CreatedAt,
	}
}

func receiptLine(line models.CartLine) ReceiptLine {
	rl := ReceiptLine{
		Name:           line.Item.Name,
		Quantity:       line.Quantity,
		SpecialRequest: line.SpecialRequest,
		UnitPrice:      pricing.FormatCurrency(line.UnitPrice),
		Total:          pricing.FormatCurrency(line.TotalPrice),
	}

	// menu order, not map order
	for _, group := range line.Item.ModifierGroups {
		for _, opt := range group.Options {
			q := line.Modifiers[group.ID][opt.ID]
			if q <= 0 {
				continue
			}
			rl.Options = append(rl.Options, describe(opt.Name, q, opt.PriceDelta.IsZero(), signed(opt.PriceDelta.IsPositive(), pricing.FormatCurrency(opt.PriceDelta))))
		}
	}
	for _, link := range line.Item.Upsells {
		q := line.Upsells[link.ID]
		if q <= 0 {
			continue
		}
		rl.Extras = append(rl.Extras, describe(link.SuggestedItem.Name, q, false, "+"+pricing.FormatCurrency(link.SuggestedItem.Price)))
	}
	return rl
}

func describe(name string, qty int, free bool, delta string) string {
	label := name
	if qty > 1 {
		label = fmt.Sprintf("%s x%d", label, qty)
	}
	if !free {
		label = fmt.Sprintf("%s (%s)", label, delta)
	}
	return label
}

func signed(positive bool, s string) string {
	if positive {
		return "+" + s
	}
	return s
}
