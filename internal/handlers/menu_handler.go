package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Lixing-Zhang/bistro-ordering/internal/repository"
	"github.com/Lixing-Zhang/bistro-ordering/internal/service"
	"github.com/go-chi/chi/v5"
)

// MenuHandler handles menu-related HTTP requests
type MenuHandler struct {
	service *service.MenuService
	logger  *slog.Logger
}

// NewMenuHandler creates a new menu handler
func NewMenuHandler(service *service.MenuService, logger *slog.Logger) *MenuHandler {
	return &MenuHandler{
		service: service,
		logger:  logger,
	}
}

// ListMenu handles GET /api/menu
// An optional ?category= narrows the listing.
func (h *MenuHandler) ListMenu(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	items, err := h.service.ListItems(r.Context(), category)
	if err != nil {
		h.logger.Error("failed to list menu", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, items, h.logger)
}

// GetMenuItem handles GET /api/menu/{itemId}
// - 200: successful operation
// - 400: missing ID
// - 404: item not found
func (h *MenuHandler) GetMenuItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemId")
	if itemID == "" {
		h.logger.Warn("menu item ID is required")
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.logger)
		return
	}

	item, err := h.service.GetItem(r.Context(), itemID)
	if err != nil {
		if errors.Is(err, repository.ErrMenuItemNotFound) {
			h.logger.Info("menu item not found", "itemId", itemID)
			WriteError(w, http.StatusNotFound, "Menu item not found", h.logger)
			return
		}

		h.logger.Error("failed to get menu item", "itemId", itemID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, item, h.logger)
}
