// Package application wires configuration, database and external services
// into a core.Service. The server and the CLI share it.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/erpimport/internal/config"
	"github.com/JonMunkholm/erpimport/internal/core"
	_ "github.com/JonMunkholm/erpimport/internal/core/kinds"
	"github.com/JonMunkholm/erpimport/internal/email"
	"github.com/JonMunkholm/erpimport/internal/resolver"
	"github.com/JonMunkholm/erpimport/internal/store/memory"
	"github.com/JonMunkholm/erpimport/internal/store/postgres"
	"github.com/JonMunkholm/erpimport/internal/vies"
)

// App holds the long-lived dependencies of a process.
type App struct {
	Config  *config.Config
	Pool    *pgxpool.Pool
	Store   *postgres.Store
	Service *core.Service

	// DryRun is the record store used instead of the database, if any.
	DryRun *memory.Store
}

// Options tune Open.
type Options struct {
	// DryRun validates against the database reference data but creates
	// records in memory only.
	DryRun bool
}

// Open connects to the database, detects capabilities and builds the service.
func Open(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	pool, err := Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	store := postgres.New(pool, postgres.Options{CompanyID: cfg.Database.CompanyID, Lang: cfg.Database.Lang})
	detected, err := store.Capabilities(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("detect capabilities: %w", err)
	}
	caps := Capabilities(cfg.Import, detected)
	slog.Info("capabilities detected",
		"siren", caps.SupportsSiren, "siret", caps.SupportsSiret, "pos", caps.SupportsPOS)

	app := &App{Config: cfg, Pool: pool, Store: store}

	var records core.RecordStore = store
	if opts.DryRun {
		app.DryRun = memory.New(nil)
		records = app.DryRun
	}

	app.Service = core.NewService(store, records, Externals(cfg), core.ServiceConfig{
		HomeCountry:   cfg.Import.HomeCountry,
		Capabilities:  caps,
		MaxConcurrent: cfg.Import.MaxConcurrent,
		MaxWait:       cfg.Import.MaxWaitTime,
	})
	return app, nil
}

// Close releases the database pool.
func (a *App) Close() {
	a.Pool.Close()
}

// Connect opens and pings a pgx pool.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return pool, nil
}

// Capabilities keeps the detected capabilities the configuration allows.
func Capabilities(cfg config.ImportConfig, detected core.Capabilities) core.Capabilities {
	return core.Capabilities{
		SupportsSiren: cfg.SupportsSiren && detected.SupportsSiren,
		SupportsSiret: cfg.SupportsSiret && detected.SupportsSiret,
		SupportsPOS:   cfg.SupportsPOS && detected.SupportsPOS,
	}
}

// Externals builds the external services. The resolver is left nil without
// an API key, which makes every batch fail with core.ErrMissingCredential.
func Externals(cfg *config.Config) core.Externals {
	ext := core.Externals{Email: email.New(nil)}

	r, err := resolver.New(resolver.Config{
		APIKey:  cfg.Resolver.APIKey,
		Model:   cfg.Resolver.Model,
		BaseURL: cfg.Resolver.BaseURL,
		Timeout: cfg.Resolver.Timeout,
	})
	switch {
	case errors.Is(err, resolver.ErrNoAPIKey):
		slog.Warn("OPENAI_API_KEY is not set, imports will be refused")
	case err != nil:
		slog.Error("country resolver unavailable", "error", err)
	default:
		ext.Resolver = r
	}

	if cfg.VIES.Enabled {
		ext.Registry = vies.NewClient(cfg.VIES.URL, cfg.VIES.Timeout, cfg.VIES.Interval)
	}
	return ext
}

// BatchOptions returns the configured per-batch defaults.
func BatchOptions(cfg config.ImportConfig) core.Options {
	return core.Options{
		EmailCheckDeliverability: cfg.EmailCheckDeliverability,
		CreateBank:               cfg.CreateBank,
		Inventory:                cfg.Inventory,
		LocationID:               cfg.LocationID,
		DeferCreations:           cfg.DeferCreations,
	}
}
