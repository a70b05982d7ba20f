package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Lixing-Zhang/bistro-ordering/internal/models"
	"github.com/Lixing-Zhang/bistro-ordering/internal/pricing"
	"github.com/Lixing-Zhang/bistro-ordering/internal/repository"
	"github.com/Lixing-Zhang/bistro-ordering/internal/service"
	"github.com/Lixing-Zhang/bistro-ordering/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func newTestOrderService(t *testing.T) (*service.OrderService, *sql.DB) {
	t.Helper()

	db, err := repository.OpenDB(repository.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	orders := repository.NewSQLOrderRepository(db, repository.DriverSQLite)
	if err := orders.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	svc := service.NewOrderService(repository.NewInMemoryMenuRepository(), orders, pricing.NewCalculator(), logger.New("error"))
	return svc, db
}

func newOrderRouter(t *testing.T) (http.Handler, *service.OrderService) {
	t.Helper()
	svc, _ := newTestOrderService(t)
	handler := NewOrderHandler(svc, logger.New("error"))

	r := chi.NewRouter()
	r.Post("/api/order/quote", handler.Quote)
	r.Post("/api/order", handler.CreateOrder)
	r.Get("/api/order/{orderId}", handler.GetReceipt)
	r.Get("/api/admin/orders", handler.ListOrders)
	r.Patch("/api/admin/orders/{orderId}/status", handler.UpdateStatus)
	return r, svc
}

func encodeBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	if s, ok := v.(string); ok {
		return bytes.NewReader([]byte(s))
	}
	body, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	return bytes.NewReader(body)
}

func pricedLine(t *testing.T, svc *service.OrderService, req models.LineRequest) models.CartLine {
	t.Helper()
	line, err := svc.PriceLine(context.Background(), req)
	if err != nil {
		t.Fatalf("failed to price line: %v", err)
	}
	return *line
}

func TestOrderHandler_CreateOrder(t *testing.T) {
	r, svc := newOrderRouter(t)
	burger := pricedLine(t, svc, models.LineRequest{ItemID: "1", Quantity: 2})
	salad := pricedLine(t, svc, models.LineRequest{ItemID: "3", Quantity: 1})

	tampered := burger
	tampered.TotalPrice = decimal.NewFromInt(1)

	noPrice := salad
	noPrice.Item.Price = decimal.NewFromInt(-3)

	customer := models.Customer{Name: "Grace", Phone: "555-0199"}

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
		expectedKind   string
		checkResponse  func(*testing.T, *models.Order)
	}{
		{
			name: "successful order",
			requestBody: models.OrderRequest{
				Lines: []models.CartLine{burger, salad}, DeliveryType: models.DeliveryPickup,
				PaymentMethod: "card", Customer: customer,
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, order *models.Order) {
				if order.ID == "" {
					t.Error("order ID is empty")
				}
				if len(order.Lines) != 2 {
					t.Errorf("expected 2 lines, got %d", len(order.Lines))
				}
				// 27.98 + 9.49 = 37.47, tax 2.9976
				if pricing.FormatCurrency(order.Totals.Total) != "$40.47" {
					t.Errorf("expected total $40.47, got %s", pricing.FormatCurrency(order.Totals.Total))
				}
			},
		},
		{
			name: "empty order",
			requestBody: models.OrderRequest{
				DeliveryType: models.DeliveryPickup, PaymentMethod: "card", Customer: customer,
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "tampered price",
			requestBody: models.OrderRequest{
				Lines: []models.CartLine{tampered}, DeliveryType: models.DeliveryPickup,
				PaymentMethod: "card", Customer: customer,
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "negative price in snapshot",
			requestBody: models.OrderRequest{
				Lines: []models.CartLine{noPrice}, DeliveryType: models.DeliveryPickup,
				PaymentMethod: "card", Customer: customer,
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedKind:   string(pricing.InvalidPrice),
		},
		{
			name: "unknown delivery type",
			requestBody: models.OrderRequest{
				Lines: []models.CartLine{burger}, DeliveryType: "teleport",
				PaymentMethod: "card", Customer: customer,
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "invalid JSON",
			requestBody:    "invalid json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/order", encodeBody(t, tt.requestBody))
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.expectedStatus, w.Body.String())
			}

			if tt.expectedKind != "" {
				var resp ErrorResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if resp.Kind != tt.expectedKind {
					t.Errorf("kind = %s, want %s", resp.Kind, tt.expectedKind)
				}
			}

			if tt.checkResponse != nil {
				var order models.Order
				if err := json.NewDecoder(w.Body).Decode(&order); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				tt.checkResponse(t, &order)
			}
		})
	}
}

func TestOrderHandler_Quote(t *testing.T) {
	r, svc := newOrderRouter(t)
	pizza := pricedLine(t, svc, models.LineRequest{ItemID: "2", Quantity: 1}) // 11.99 promo

	body := models.QuoteRequest{
		Lines:        []models.CartLine{pizza},
		DeliveryType: models.DeliveryDelivery,
		Tip:          pricing.CustomTip(decimal.RequireFromString("3")),
	}
	req := httptest.NewRequest(http.MethodPost, "/api/order/quote", encodeBody(t, body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}

	var quote service.Quote
	if err := json.NewDecoder(w.Body).Decode(&quote); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	// 11.99 + 0.9592 + 5.00 + 3.00
	if quote.Display.Total != "$20.95" {
		t.Errorf("total = %s, want $20.95", quote.Display.Total)
	}
	if quote.Display.DeliveryFee != "$5.00" {
		t.Errorf("delivery fee = %s, want $5.00", quote.Display.DeliveryFee)
	}
}

func TestOrderHandler_ReceiptAndAdmin(t *testing.T) {
	r, svc := newOrderRouter(t)
	wings := pricedLine(t, svc, models.LineRequest{
		ItemID:    "4",
		Quantity:  1,
		Modifiers: models.ModifierSelection{"sauce": {"ghost-pepper": 1}},
	})

	order, err := svc.PlaceOrder(context.Background(), models.OrderRequest{
		Lines: []models.CartLine{wings}, DeliveryType: models.DeliveryDineIn,
		PaymentMethod: "cash", Customer: models.Customer{Name: "Linus", Phone: "555-0142", TableNumber: "12"},
	})
	if err != nil {
		t.Fatalf("failed to place order: %v", err)
	}

	t.Run("receipt", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/order/"+order.ID, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var receipt service.Receipt
		if err := json.NewDecoder(w.Body).Decode(&receipt); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(receipt.Lines) != 1 || receipt.Lines[0].Total != "$11.50" {
			t.Errorf("unexpected receipt lines: %+v", receipt.Lines)
		}
	})

	t.Run("receipt not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/order/does-not-exist", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})

	t.Run("update status", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/api/admin/orders/"+order.ID+"/status", encodeBody(t, models.StatusUpdate{Status: "ready"}))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
		}
		var updated models.Order
		if err := json.NewDecoder(w.Body).Decode(&updated); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if updated.Status != "ready" {
			t.Errorf("status = %s, want ready", updated.Status)
		}
	})

	t.Run("list by status", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/orders?status=ready&limit=10", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var orders []models.Order
		if err := json.NewDecoder(w.Body).Decode(&orders); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(orders) != 1 {
			t.Errorf("expected 1 order, got %d", len(orders))
		}
	})

	t.Run("bad limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/orders?limit=0", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}

func TestHealthHandler(t *testing.T) {
	_, db := newTestOrderService(t)
	handler := NewHealthHandler(db, logger.New("error"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "healthy" || resp.Database != "ok" {
		t.Errorf("unexpected health response: %+v", resp)
	}

	_ = db.Close()
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status after close = %d, want 503", w.Code)
	}
}
