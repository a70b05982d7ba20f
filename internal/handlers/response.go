package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/bistro-ordering/internal/cart"
	"github.com/Lixing-Zhang/bistro-ordering/internal/pricing"
	"github.com/Lixing-Zhang/bistro-ordering/internal/repository"
	"github.com/Lixing-Zhang/bistro-ordering/internal/service"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Group string `json:"group,omitempty"`
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an error response in JSON format
func WriteError(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	WriteJSON(w, status, ErrorResponse{Error: message}, logger)
}

// writeServiceError maps domain errors to HTTP status codes
func writeServiceError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var verr *pricing.ValidationError
	if errors.As(err, &verr) {
		WriteJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error: verr.Error(),
			Kind:  string(verr.Kind),
			Group: verr.Group,
		}, logger)
		return
	}

	switch {
	case errors.Is(err, repository.ErrMenuItemNotFound), errors.Is(err, service.ErrInvalidMenuItem):
		WriteError(w, http.StatusNotFound, "Menu item not found", logger)
	case errors.Is(err, repository.ErrOrderNotFound):
		WriteError(w, http.StatusNotFound, "Order not found", logger)
	case errors.Is(err, service.ErrItemUnavailable):
		WriteError(w, http.StatusConflict, "This item is currently unavailable", logger)
	case errors.Is(err, service.ErrLinePriceMismatch):
		WriteError(w, http.StatusConflict, "Your cart is out of date, please review it and try again", logger)
	case errors.Is(err, service.ErrEmptyOrder):
		WriteError(w, http.StatusUnprocessableEntity, "Order must contain at least one item", logger)
	case errors.Is(err, service.ErrInvalidDeliveryType),
		errors.Is(err, service.ErrMissingAddress),
		errors.Is(err, service.ErrInvalidTip),
		errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, cart.ErrInvalidLine),
		errors.Is(err, cart.ErrUnknownOption),
		errors.Is(err, cart.ErrUnknownUpsell):
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), logger)
	case errors.Is(err, cart.ErrMalformedCart):
		WriteError(w, http.StatusBadRequest, "Invalid request body", logger)
	default:
		logger.Error("request failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", logger)
	}
}
