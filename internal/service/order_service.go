package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Lixing-Zhang/bistro-ordering/internal/cart"
	"github.com/Lixing-Zhang/bistro-ordering/internal/models"
	"github.com/Lixing-Zhang/bistro-ordering/internal/pricing"
	"github.com/Lixing-Zhang/bistro-ordering/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrInvalidMenuItem     = errors.New("invalid menu item")
	ErrItemUnavailable     = errors.New("menu item is not available")
	ErrEmptyOrder          = errors.New("order must contain at least one item")
	ErrInvalidDeliveryType = errors.New("delivery type must be pickup, dine-in or delivery")
	ErrMissingAddress      = errors.New("delivery orders need a delivery address")
	ErrInvalidTip          = errors.New("tip is not valid")
	ErrLinePriceMismatch   = errors.New("cart line price does not match its contents")
)

const DefaultOrderStatus = "pending"

// MenuReader is the slice of the menu repository the order service needs
type MenuReader interface {
	GetByID(ctx context.Context, id string) (*models.MenuItem, error)
}

// OrderService prices cart lines, quotes checkouts and submits orders
type OrderService struct {
	menu     MenuReader
	orders   repository.OrderRepository
	calc     *pricing.Calculator
	validate *validator.Validate
	log      *slog.Logger
	now      func() time.Time
}

// NewOrderService creates a new order service
func NewOrderService(menu MenuReader, orders repository.OrderRepository, calc *pricing.Calculator, log *slog.Logger) *OrderService {
	if calc == nil {
		calc = pricing.NewCalculator()
	}
	return &OrderService{
		menu:     menu,
		orders:   orders,
		calc:     calc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log,
		now:      time.Now,
	}
}

// Quote is the checkout summary with display-rounded amounts
type Quote struct {
	Totals  models.Totals `json:"totals"`
	Display DisplayTotals `json:"display"`
}

// DisplayTotals are the totals formatted for the customer
type DisplayTotals struct {
	Subtotal    string `json:"subtotal"`
	Tax         string `json:"tax"`
	DeliveryFee string `json:"deliveryFee"`
	Tip         string `json:"tip"`
	Total       string `json:"total"`
}

// PriceLine resolves the item from the current menu, applies the requested
// selections and freezes the result into a cart line.
func (s *OrderService) PriceLine(ctx context.Context, req models.LineRequest) (*models.CartLine, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	item, err := s.menu.GetByID(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, repository.ErrMenuItemNotFound) {
			return nil, ErrInvalidMenuItem
		}
		return nil, err
	}
	if !item.Available {
		return nil, ErrItemUnavailable
	}

	draft := cart.NewDraft(*item)
	mods := req.Modifiers
	if mods == nil {
		mods = draft.Modifiers()
	}
	if draft, err = draft.WithSelections(mods, req.Upsells); err != nil {
		return nil, err
	}
	if draft, err = draft.WithQuantity(req.Quantity); err != nil {
		return nil, err
	}
	draft = draft.WithSpecialRequest(req.SpecialRequest)

	line, err := draft.Line(s.now())
	if err != nil {
		return nil, err
	}

	s.log.Debug("priced cart line", "item_id", item.ID, "quantity", line.Quantity, "total", line.TotalPrice.String())
	return &line, nil
}

// Quote computes checkout totals from the locked line prices
func (s *OrderService) Quote(ctx context.Context, req models.QuoteRequest) (*Quote, error) {
	if len(req.Lines) == 0 {
		return nil, ErrEmptyOrder
	}
	if err := s.checkLines(req.Lines); err != nil {
		return nil, err
	}
	tip, err := normalizeTip(req.Tip)
	if err != nil {
		return nil, err
	}
	if !req.DeliveryType.Valid() {
		return nil, ErrInvalidDeliveryType
	}

	totals, err := s.calc.Totals(req.Lines, req.DeliveryType, tip)
	if err != nil {
		return nil, err
	}
	return &Quote{Totals: totals, Display: display(totals)}, nil
}

// PlaceOrder verifies the cart, computes totals and persists the order.
// Lines are checked against their own snapshots, never the live menu.
func (s *OrderService) PlaceOrder(ctx context.Context, req models.OrderRequest) (*models.Order, error) {
	if len(req.Lines) == 0 {
		return nil, ErrEmptyOrder
	}
	if err := s.checkLines(req.Lines); err != nil {
		return nil, err
	}
	if !req.DeliveryType.Valid() {
		return nil, ErrInvalidDeliveryType
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if req.DeliveryType == models.DeliveryDelivery && strings.TrimSpace(req.Customer.DeliveryAddress) == "" {
		return nil, ErrMissingAddress
	}
	tip, err := normalizeTip(req.Tip)
	if err != nil {
		return nil, err
	}

	for i, line := range req.Lines {
		if err := verifyLine(line); err != nil {
			s.log.Warn("rejected cart line", "index", i, "line_id", line.ID, "error", err)
			return nil, err
		}
	}

	totals, err := s.calc.Totals(req.Lines, req.DeliveryType, tip)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	order := &models.Order{
		ID:            uuid.New().String(),
		Lines:         req.Lines,
		DeliveryType:  req.DeliveryType,
		Tip:           tip,
		Totals:        totals,
		PaymentMethod: req.PaymentMethod,
		Status:        DefaultOrderStatus,
		Customer:      req.Customer,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	s.log.Info("order placed",
		"order_id", order.ID,
		"lines", len(order.Lines),
		"delivery_type", order.DeliveryType,
		"total", pricing.Round(order.Totals.Total).String(),
	)
	return order, nil
}

// GetOrder returns a stored order
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// ListOrders returns stored orders for the admin view
func (s *OrderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]models.Order, error) {
	return s.orders.List(ctx, filter)
}

// UpdateStatus sets an order's free-text workflow label
func (s *OrderService) UpdateStatus(ctx context.Context, id string, update models.StatusUpdate) (*models.Order, error) {
	update.Status = strings.TrimSpace(update.Status)
	if err := s.validate.Struct(update); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	order, err := s.orders.UpdateStatus(ctx, id, update.Status, s.now())
	if err != nil {
		return nil, err
	}
	s.log.Info("order status updated", "order_id", id, "status", update.Status)
	return order, nil
}

func (s *OrderService) checkLines(lines []models.CartLine) error {
	for _, line := range lines {
		if err := cart.ValidateLine(line); err != nil {
			return err
		}
	}
	return nil
}

// verifyLine recomputes a line from its own snapshot and compares cents
func verifyLine(line models.CartLine) error {
	if err := cart.ValidateSelections(line.Item, line.Modifiers, line.Upsells); err != nil {
		return err
	}
	if err := pricing.ValidateRequiredModifiers(line.Item, line.Modifiers); err != nil {
		return err
	}
	want := pricing.LineTotal(line.Item, line.Quantity, line.Modifiers, line.Upsells)
	if !pricing.Round(want).Equal(pricing.Round(line.TotalPrice)) {
		return fmt.Errorf("%w: %s", ErrLinePriceMismatch, line.Item.Name)
	}
	return nil
}

func normalizeTip(tip models.TipPolicy) (models.TipPolicy, error) {
	switch tip.Kind {
	case "", models.TipNone:
		return pricing.NoTip(), nil
	case models.TipPercentage:
		if tip.Percent.IsNegative() || tip.Percent.GreaterThan(decimal.NewFromInt(1)) {
			return tip, ErrInvalidTip
		}
		return pricing.PercentageTip(tip.Percent), nil
	case models.TipCustom:
		if tip.Amount.IsNegative() {
			return tip, ErrInvalidTip
		}
		return pricing.CustomTip(tip.Amount), nil
	default:
		return tip, ErrInvalidTip
	}
}

func display(t models.Totals) DisplayTotals {
	return DisplayTotals{
		Subtotal:    pricing.FormatCurrency(t.Subtotal),
		Tax:         pricing.FormatCurrency(t.Tax),
		DeliveryFee: pricing.FormatCurrency(t.DeliveryFee),
		Tip:         pricing.FormatCurrency(t.Tip),
		Total:       pricing.FormatCurrency(t.Total),
	}
}
