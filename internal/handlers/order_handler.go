package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Lixing-Zhang/bistro-ordering/internal/models"
	"github.com/Lixing-Zhang/bistro-ordering/internal/repository"
	"github.com/Lixing-Zhang/bistro-ordering/internal/service"
	"github.com/go-chi/chi/v5"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	orderService *service.OrderService
	log          *slog.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService, log *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		log:          log,
	}
}

// Quote handles POST /api/order/quote
func (h *OrderHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req models.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn("failed to decode quote request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	quote, err := h.orderService.Quote(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, quote, h.log)
}

// CreateOrder handles POST /api/order
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.OrderRequest

	// Parse request body
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error("failed to decode order request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	order, err := h.orderService.PlaceOrder(r.Context(), req)
	if err != nil {
		h.log.Warn("failed to create order", "error", err)
		writeServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusCreated, order, h.log)
}

// GetReceipt handles GET /api/order/{orderId}
func (h *OrderHandler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	if orderID == "" {
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.log)
		return
	}

	receipt, err := h.orderService.Receipt(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, receipt, h.log)
}

// ListOrders handles GET /api/admin/orders
// Query: status, limit (default 50, max 200), offset.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.OrderFilter{Status: q.Get("status"), Limit: 50}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 200 {
			WriteError(w, http.StatusBadRequest, "limit must be between 1 and 200", h.log)
			return
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			WriteError(w, http.StatusBadRequest, "offset must not be negative", h.log)
			return
		}
		filter.Offset = n
	}

	orders, err := h.orderService.ListOrders(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, orders, h.log)
}

// UpdateStatus handles PATCH /api/admin/orders/{orderId}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	var req models.StatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), orderID, req)
	if err != nil {
		writeServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, order, h.log)
}
