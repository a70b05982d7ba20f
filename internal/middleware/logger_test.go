package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})
	handler := chimiddleware.RequestID(Logger(log)(next))

	req := httptest.NewRequest(http.MethodGet, "/api/menu", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log line: %v", err)
	}

	if entry["status"] != float64(http.StatusTeapot) {
		t.Errorf("status = %v, want %d", entry["status"], http.StatusTeapot)
	}
	if entry["bytes"] != float64(len("short and stout")) {
		t.Errorf("bytes = %v, want %d", entry["bytes"], len("short and stout"))
	}
	if entry["path"] != "/api/menu" {
		t.Errorf("path = %v, want /api/menu", entry["path"])
	}
	if id, _ := entry["request_id"].(string); id == "" {
		t.Error("expected request_id to be logged")
	}
}
