package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Lixing-Zhang/bistro-ordering/internal/catalog"
	"github.com/Lixing-Zhang/bistro-ordering/internal/config"
	"github.com/Lixing-Zhang/bistro-ordering/internal/handlers"
	"github.com/Lixing-Zhang/bistro-ordering/internal/middleware"
	"github.com/Lixing-Zhang/bistro-ordering/internal/models"
	"github.com/Lixing-Zhang/bistro-ordering/internal/pricing"
	"github.com/Lixing-Zhang/bistro-ordering/internal/repository"
	"github.com/Lixing-Zhang/bistro-ordering/internal/service"
	"github.com/Lixing-Zhang/bistro-ordering/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting bistro ordering api server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"log_level", cfg.LogLevel,
		"db_driver", cfg.Database.Driver,
	)

	ctx := context.Background()

	// Menu: built-in house menu unless catalog snapshots are configured
	menuRepo := repository.NewInMemoryMenuRepository()
	if len(cfg.Catalog.URLs) > 0 || len(cfg.Catalog.Files) > 0 {
		items, err := loadCatalog(ctx, cfg.Catalog, log)
		if err != nil {
			log.Error("failed to load menu catalog", "error", err)
			os.Exit(1)
		}
		menuRepo.Replace(items)
	}
	log.Info("menu ready", "categories", menuRepo.Categories(ctx))

	// Order storage
	db, err := repository.OpenDB(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	orderRepo := repository.NewSQLOrderRepository(db, cfg.Database.Driver)
	if err := orderRepo.Migrate(ctx); err != nil {
		log.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	// Initialize services
	calc := &pricing.Calculator{TaxRate: cfg.Pricing.TaxRate, DeliveryFee: cfg.Pricing.DeliveryFee}
	menuService := service.NewMenuService(menuRepo)
	orderService := service.NewOrderService(menuRepo, orderRepo, calc, log)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, log)
	menuHandler := handlers.NewMenuHandler(menuService, log)
	cartHandler := handlers.NewCartHandler(orderService, log)
	orderHandler := handlers.NewOrderHandler(orderService, log)

	// Create router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "api_key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Register health check endpoint
	r.Get("/health", healthHandler.ServeHTTP)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/menu", menuHandler.ListMenu)
		r.Get("/menu/{itemId}", menuHandler.GetMenuItem)

		r.Post("/cart/lines", cartHandler.AddLine)
		r.Post("/cart/restore", cartHandler.Restore)

		r.Post("/order/quote", orderHandler.Quote)
		r.Post("/order", orderHandler.CreateOrder)
		r.Get("/order/{orderId}", orderHandler.GetReceipt)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(cfg.Auth, log))
			r.Get("/orders", orderHandler.ListOrders)
			r.Patch("/orders/{orderId}/status", orderHandler.UpdateStatus)
		})
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

// loadCatalog fetches the configured snapshots. Files are applied after URLs,
// so a local file can override a hosted item.
func loadCatalog(ctx context.Context, cfg config.CatalogConfig, log *slog.Logger) ([]models.MenuItem, error) {
	loader := catalog.NewLoader(time.Duration(cfg.TimeoutSeconds) * time.Second)

	var items []models.MenuItem
	if len(cfg.URLs) > 0 {
		fromURLs, err := loader.LoadFromURLs(ctx, cfg.URLs)
		if err != nil {
			return nil, err
		}
		stats := loader.GetStats()
		log.Info("catalog loaded from urls", "sources", stats["total_sources"], "items", stats["total_items"], "skipped", stats["skipped_items"])
		items = append(items, fromURLs...)
	}
	if len(cfg.Files) > 0 {
		fromFiles, err := loader.LoadFromFiles(ctx, cfg.Files)
		if err != nil {
			return nil, err
		}
		stats := loader.GetStats()
		log.Info("catalog loaded from files", "sources", stats["total_sources"], "items", stats["total_items"], "skipped", stats["skipped_items"])
		items = append(items, fromFiles...)
	}
	return items, nil
}
