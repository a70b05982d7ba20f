package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Lixing-Zhang/bistro-ordering/internal/models"
	"github.com/Lixing-Zhang/bistro-ordering/internal/repository"
	"github.com/Lixing-Zhang/bistro-ordering/internal/service"
	"github.com/Lixing-Zhang/bistro-ordering/pkg/logger"
	"github.com/go-chi/chi/v5"
)

func newMenuRouter() http.Handler {
	svc := service.NewMenuService(repository.NewInMemoryMenuRepository())
	handler := NewMenuHandler(svc, logger.New("error"))

	r := chi.NewRouter()
	r.Get("/api/menu", handler.ListMenu)
	r.Get("/api/menu/{itemId}", handler.GetMenuItem)
	return r
}

func TestListMenu(t *testing.T) {
	r := newMenuRouter()

	tests := []struct {
		name      string
		url       string
		wantCount int
	}{
		{"full menu", "/api/menu", 7},
		{"category filter", "/api/menu?category=Burgers", 1},
		{"category is case insensitive", "/api/menu?category=drinks", 1},
		{"unknown category", "/api/menu?category=Soup", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", w.Code)
			}

			var items []models.MenuItem
			if err := json.NewDecoder(w.Body).Decode(&items); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if len(items) != tt.wantCount {
				t.Errorf("expected %d items, got %d", tt.wantCount, len(items))
			}
		})
	}
}

func TestGetMenuItem_Success(t *testing.T) {
	r := newMenuRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/menu/2", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var item models.MenuItem
	if err := json.NewDecoder(w.Body).Decode(&item); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if item.Name != "Margherita Pizza" {
		t.Errorf("expected Margherita Pizza, got %s", item.Name)
	}
	if !item.PromoActive || item.PromoPrice == nil || item.PromoPrice.String() != "11.99" {
		t.Errorf("expected active promo at 11.99, got %v", item.PromoPrice)
	}
	if len(item.ModifierGroups) != 2 {
		t.Errorf("expected 2 modifier groups, got %d", len(item.ModifierGroups))
	}
}

func TestGetMenuItem_NotFound(t *testing.T) {
	r := newMenuRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/menu/999", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if response["error"] != "Menu item not found" {
		t.Errorf("expected error message 'Menu item not found', got %s", response["error"])
	}
}
