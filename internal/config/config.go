package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all configuration for the application
// Following 12-factor app principles, all config is loaded from environment variables
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Catalog  CatalogConfig
	Database DatabaseConfig
	Pricing  PricingConfig
	LogLevel string
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
	AllowedOrigins  []string
}

type AuthConfig struct {
	APIKeys []string // Valid API keys for the admin endpoints
}

// CatalogConfig points at menu snapshots exported from the hosted backend.
// When neither URLs nor files are set the built-in house menu is served.
type CatalogConfig struct {
	URLs           []string
	Files          []string
	TimeoutSeconds int
}

type DatabaseConfig struct {
	Driver string // sqlite or postgres
	DSN    string
}

type PricingConfig struct {
	TaxRate     decimal.Decimal
	DeliveryFee decimal.Decimal
}

// Load reads configuration from environment variables, after loading a .env
// file from the working directory if one exists
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	taxRate, err := getEnvAsDecimal("TAX_RATE", "0.08")
	if err != nil {
		return nil, err
	}
	deliveryFee, err := getEnvAsDecimal("DELIVERY_FEE", "5.00")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			ReadTimeout:     getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout:    getEnvAsInt("WRITE_TIMEOUT", 15),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 30),
			AllowedOrigins:  getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
		},
		Auth: AuthConfig{
			APIKeys: getEnvAsSlice("API_KEYS", []string{"apitest"}),
		},
		Catalog: CatalogConfig{
			URLs:           getEnvAsSlice("CATALOG_URLS", nil),
			Files:          getEnvAsSlice("CATALOG_FILES", nil),
			TimeoutSeconds: getEnvAsInt("CATALOG_TIMEOUT", 30),
		},
		Database: DatabaseConfig{
			Driver: getEnv("DB_DRIVER", "sqlite"),
			DSN:    getEnv("DB_DSN", "file:orders.db?_pragma=busy_timeout(5000)"),
		},
		Pricing: PricingConfig{
			TaxRate:     taxRate,
			DeliveryFee: deliveryFee,
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if len(c.Auth.APIKeys) == 0 {
		return fmt.Errorf("at least one API key must be configured")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid DB_DRIVER: %s (must be sqlite or postgres)", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}

	if c.Pricing.TaxRate.IsNegative() || c.Pricing.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("TAX_RATE must be in [0, 1), got %s", c.Pricing.TaxRate)
	}
	if c.Pricing.DeliveryFee.IsNegative() {
		return fmt.Errorf("DELIVERY_FEE must not be negative, got %s", c.Pricing.DeliveryFee)
	}

	if c.Catalog.TimeoutSeconds <= 0 {
		return fmt.Errorf("CATALOG_TIMEOUT must be positive")
	}

	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvAsDecimal(key, defaultValue string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(getEnv(key, defaultValue))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}
