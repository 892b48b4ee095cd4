// Package config provides centralized configuration management for the importer.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Import   ImportConfig
	Resolver ResolverConfig
	VIES     VIESConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, running imports included (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// MaxUploadSize is the largest accepted spreadsheet in bytes (default: 50MB)
	MaxUploadSize int64 `env:"SERVER_MAX_UPLOAD_SIZE" default:"52428800"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string of the ERP database (required)
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true" secret:"true"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// CompanyID selects the chart of accounts and warehouse (default: 1)
	CompanyID int64 `env:"DB_COMPANY_ID" default:"1"`

	// Lang is the language of field labels in reports (default: en_US)
	Lang string `env:"DB_LANG" default:"en_US"`
}

// ImportConfig holds the defaults of import batches.
type ImportConfig struct {
	// HomeCountry is the ISO code of the company country (default: FR)
	HomeCountry string `env:"IMPORT_HOME_COUNTRY" default:"FR"`

	EmailCheckDeliverability bool `env:"IMPORT_EMAIL_CHECK_DELIVERABILITY" default:"true"`
	CreateBank               bool `env:"IMPORT_CREATE_BANK" default:"true"`
	Inventory                bool `env:"IMPORT_INVENTORY" default:"true"`
	DeferCreations           bool `env:"IMPORT_DEFER_CREATIONS" default:"false"`

	// LocationID is the stock location; 0 uses the default warehouse
	LocationID int64 `env:"IMPORT_LOCATION_ID" default:"0"`

	// Supports* switch optional fields off even when the database has them.
	SupportsSiren bool `env:"IMPORT_SUPPORTS_SIREN" default:"true"`
	SupportsSiret bool `env:"IMPORT_SUPPORTS_SIRET" default:"true"`
	SupportsPOS   bool `env:"IMPORT_SUPPORTS_POS" default:"true"`

	// MaxConcurrent is the maximum number of parallel batches (default: 4)
	MaxConcurrent int `env:"IMPORT_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long a batch waits for a slot (default: 30s)
	MaxWaitTime time.Duration `env:"IMPORT_MAX_WAIT_TIME" default:"30s"`
}

// ResolverConfig holds the country resolver settings.
type ResolverConfig struct {
	// APIKey is the OpenAI key. Batches fail without it.
	APIKey  string        `env:"OPENAI_API_KEY" secret:"true"`
	Model   string        `env:"RESOLVER_MODEL" default:"gpt-4o-mini"`
	BaseURL string        `env:"OPENAI_BASE_URL"`
	Timeout time.Duration `env:"RESOLVER_TIMEOUT" default:"20s"`
}

// VIESConfig holds the EU VAT registry settings.
type VIESConfig struct {
	Enabled bool   `env:"VIES_ENABLED" default:"true"`
	URL     string `env:"VIES_URL" default:"https://ec.europa.eu/taxation_customs/vies/services/checkVatService"`

	Timeout time.Duration `env:"VIES_TIMEOUT" default:"10s"`

	// Interval is the minimum delay between two requests (default: 200ms)
	Interval time.Duration `env:"VIES_INTERVAL" default:"200ms"`
}

// RateLimitConfig holds per-IP rate limits of the HTTP API.
type RateLimitConfig struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// ImportLimit is requests per minute for import endpoints (default: 10)
	ImportLimit int `env:"RATE_LIMIT_IMPORT" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// APIKeys is a comma-separated list of accepted X-API-Key values
	APIKeys []string `env:"API_KEYS" secret:"true"`

	// RequireAPIKey rejects API requests without a valid key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
