package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/bistro-ordering/internal/config"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// APIKeyAuth guards the admin routes. The key is passed in the "api_key" header.
func APIKeyAuth(cfg config.AuthConfig, logger *slog.Logger) func(next http.Handler) http.Handler {
	keys := make([][]byte, 0, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		keys = append(keys, []byte(k))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get("api_key")

			if apiKey == "" {
				http.Error(w, "Unauthorized: API key required", http.StatusUnauthorized)
				return
			}

			valid := false
			for _, k := range keys {
				if subtle.ConstantTimeCompare([]byte(apiKey), k) == 1 {
					valid = true
					break
				}
			}

			if !valid {
				logger.Warn("rejected admin request",
					"path", r.URL.Path,
					"request_id", chimiddleware.GetReqID(r.Context()),
					"remote_addr", r.RemoteAddr,
				)
				http.Error(w, "Forbidden: Invalid API key", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
