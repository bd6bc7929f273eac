// Package main is the entry point for the flight data mediation server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"farefinder/config"
	"farefinder/internal/amadeus"
	"farefinder/internal/cache"
	"farefinder/internal/httpclient"
	"farefinder/internal/mediator"
	"farefinder/internal/observability"
	"farefinder/internal/quota"
	"farefinder/internal/server"
	"farefinder/internal/store"
	"farefinder/internal/synth"
	"farefinder/internal/version"
)

func main() {
	// Add a version flag check
	versionFlag := flag.Bool("version", false, "Print version information")
	flag.Parse()

	if *versionFlag {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// Load .env before viper so both see the same environment
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	var logger *slog.Logger
	if cfg.Log.Format == "pretty" {
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{TimeFormat: time.Kitchen}))
	} else {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	slog.SetDefault(logger)

	// Log the version immediately on startup
	slog.Info("starting farefinder",
		"version", version.Version,
		"commit", version.Commit,
		"build_date", version.Date,
	)

	offline := cfg.EffectiveOffline()
	if offline {
		slog.Warn("running in offline mode, all responses will be synthesized",
			"explicit_flag", cfg.Amadeus.Offline,
			"credentials_present", cfg.Amadeus.ClientID != "" && cfg.Amadeus.ClientSecret != "")
	}

	// Open the persistent store backend
	st, err := openStore(cfg.Store)
	if err != nil {
		slog.Error("failed to open store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("store close error", "error", err)
		}
	}()
	slog.Info("store ready", "backend", cfg.Store.Backend)

	// Wire the upstream client
	httpClient := httpclient.NewDefaultHTTPClient()
	tokens := amadeus.NewTokenManager(httpClient, cfg.Amadeus.BaseURL,
		cfg.Amadeus.ClientID, cfg.Amadeus.ClientSecret)
	upstream := amadeus.NewClient(httpClient, cfg.Amadeus.BaseURL, tokens, cfg.Amadeus.HTTPTimeout)

	// Quota state is loaded from the store so budgets survive restarts
	tracker := quota.New(context.Background(), st, cfg.Quota.PerMinute, cfg.Quota.PerDay)
	snap := tracker.Snapshot()
	slog.Info("quota tracker ready",
		"per_minute", cfg.Quota.PerMinute,
		"per_day", cfg.Quota.PerDay,
		"calls_today", snap.CallsToday,
	)

	var metrics *observability.Metrics
	if cfg.Server.MetricsEnabled {
		metrics = observability.NewMetrics()
		slog.Info("prometheus metrics enabled", "endpoint", "/metrics")
	} else {
		slog.Info("prometheus metrics disabled")
	}

	medCfg := mediator.DefaultConfig()
	medCfg.Offline = offline
	med := mediator.New(medCfg, cache.New(st), tracker, tokens, upstream, synth.New(), metrics)

	srv := server.New(med, &server.Config{MetricsEnabled: cfg.Server.MetricsEnabled})

	// Handle graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		slog.Info("shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	addr := ":" + cfg.Server.Port
	slog.Info("starting server", "address", addr)

	if err := srv.Start(addr); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			slog.Info("server stopped gracefully")
		} else {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}
}

// openStore builds the persistence backend named in the configuration.
func openStore(cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return store.NewMemoryStore(), nil
	case "file":
		return store.NewFileStore(cfg.Path), nil
	case "sqlite":
		return store.NewSQLiteStore(cfg.Path)
	case "redis":
		return store.NewRedisStore(cfg.RedisURL)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
