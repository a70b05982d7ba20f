package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/bistro-ordering/internal/cart"
	"github.com/Lixing-Zhang/bistro-ordering/internal/models"
	"github.com/Lixing-Zhang/bistro-ordering/internal/pricing"
	"github.com/Lixing-Zhang/bistro-ordering/internal/service"
)

const maxCartBody = 1 << 20

// CartHandler prices customizations and restores persisted carts
type CartHandler struct {
	orderService *service.OrderService
	log          *slog.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(orderService *service.OrderService, log *slog.Logger) *CartHandler {
	return &CartHandler{
		orderService: orderService,
		log:          log,
	}
}

// RestoreResponse is the cleaned cart returned to the client
type RestoreResponse struct {
	Lines    []models.CartLine `json:"lines"`
	Rejected []cart.Rejection  `json:"rejected,omitempty"`
	Subtotal string            `json:"subtotal"`
}

// AddLine handles POST /api/cart/lines
func (h *CartHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	var req models.LineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn("failed to decode line request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	line, err := h.orderService.PriceLine(r.Context(), req)
	if err != nil {
		h.log.Info("line rejected", "item_id", req.ItemID, "error", err)
		writeServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusCreated, line, h.log)
}

// Restore handles POST /api/cart/restore
// Untrustworthy lines are dropped and listed under "rejected".
func (h *CartHandler) Restore(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxCartBody))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	c, rejected, err := cart.Decode(body)
	if err != nil {
		h.log.Warn("failed to decode persisted cart", "error", err)
		writeServiceError(w, err, h.log)
		return
	}
	if len(rejected) > 0 {
		h.log.Info("dropped persisted cart lines", "rejected", len(rejected), "kept", c.Len())
	}

	WriteJSON(w, http.StatusOK, RestoreResponse{
		Lines:    c.Lines(),
		Rejected: rejected,
		Subtotal: pricing.FormatCurrency(c.Subtotal()),
	}, h.log)
}
