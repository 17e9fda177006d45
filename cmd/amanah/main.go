// Amanah - Halal compliance verification for online marketplaces.
// Copyright (c) 2026 halaleco
// Licensed under the Apache License 2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/halaleco/amanah/internal/api"
	"github.com/halaleco/amanah/internal/auth"
	"github.com/halaleco/amanah/internal/bus"
	"github.com/halaleco/amanah/internal/cache"
	"github.com/halaleco/amanah/internal/compliance"
	"github.com/halaleco/amanah/internal/domain"
	"github.com/halaleco/amanah/internal/fraud"
	"github.com/halaleco/amanah/internal/ledger"
	"github.com/halaleco/amanah/internal/repository"
	"github.com/halaleco/amanah/internal/rules"
	"github.com/halaleco/amanah/internal/supplychain"
	"github.com/halaleco/amanah/internal/worker"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// Initialize structured logger
	logLevel := slog.LevelInfo
	if os.Getenv("AMANAH_DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Log startup
	slog.Info("starting amanah",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	// Load configuration
	cfg := domain.DefaultConfig()

	// Check for Pro tier via environment
	if os.Getenv("AMANAH_TIER") == "pro" {
		cfg = domain.ProConfig()
		slog.Info("running in Pro tier mode")
	}
	applyEnvOverrides(cfg)

	slog.Info("configuration loaded",
		"tier", cfg.Tier,
		"repository", cfg.Repository.Driver,
		"cache", cfg.Cache.Type,
		"eventbus", cfg.EventBus.Type,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Initialize Repository
	repo, err := repository.New(cfg.Repository)
	if err != nil {
		slog.Error("failed to initialize repository", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	slog.Info("repository initialized", "driver", cfg.Repository.Driver)

	// Initialize Cache
	cacheImpl, err := cache.New(cfg.Cache)
	if err != nil {
		slog.Error("failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer cacheImpl.Close()
	slog.Info("cache initialized", "type", cfg.Cache.Type)

	// Initialize EventBus
	busImpl, err := bus.New(cfg.EventBus)
	if err != nil {
		slog.Error("failed to initialize event bus", "error", err)
		os.Exit(1)
	}
	defer busImpl.Close()
	slog.Info("event bus initialized", "type", cfg.EventBus.Type)

	// Initialize certification ledger
	mockLedger := ledger.New()
	slog.Info("certification ledger initialized")

	// Initialize compliance components
	verifier := compliance.NewVerifier(mockLedger, cacheImpl)
	complianceEngine := compliance.NewEngine(verifier, mockLedger)
	validator := compliance.NewValidator(mockLedger)

	// Initialize Rule Engine
	ruleEngine, err := rules.NewEngine(100)
	if err != nil {
		slog.Error("failed to initialize rule engine", "error", err)
		os.Exit(1)
	}
	defer ruleEngine.Close()

	// Load rules from database (no hardcoded defaults - configure via API)
	if err := loadRulesFromDatabase(ctx, repo, ruleEngine); err != nil {
		slog.Error("failed to load rules", "error", err)
		os.Exit(1)
	}
	slog.Info("rule engine initialized", "rules_count", ruleEngine.RulesCount())

	// Initialize Fraud Engine with velocity counting backed by the cache
	velocityCounter := func(ctx context.Context, sellerID string) (int64, error) {
		return cacheImpl.IncrementCounter(ctx, "velocity:seller:"+sellerID, time.Hour)
	}
	fraudEngine := fraud.NewEngine(ruleEngine, velocityCounter, busImpl)
	slog.Info("fraud engine initialized")

	// Initialize Supply Chain Tracker
	tracker := supplychain.NewTracker(mockLedger, busImpl)
	slog.Info("supply chain tracker initialized")

	// Initialize async alert Worker
	alertWorker := worker.NewWorker(busImpl, repo)
	if err := alertWorker.Start(); err != nil {
		slog.Error("failed to start alert worker", "error", err)
	} else {
		slog.Info("alert worker started")
	}

	// Initialize Auth Service
	authSvc := auth.NewService(repo, cfg.Auth)
	slog.Info("auth service initialized", "token_ttl_seconds", cfg.Auth.TokenTTL)

	// Initialize Server
	handler := api.NewHandler(repo, cacheImpl, busImpl, authSvc, complianceEngine,
		validator, verifier, fraudEngine, ruleEngine, mockLedger, tracker, Version)
	srv := api.NewServer(cfg.Server, handler)

	// Start Server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("amanah is ready",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	printBanner(cfg, Version)

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("shutting down...")

	// Stop alert worker first
	if err := alertWorker.Stop(); err != nil {
		slog.Error("failed to stop alert worker", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("amanah shutdown complete")
}

// applyEnvOverrides layers environment settings over the tier defaults.
func applyEnvOverrides(cfg *domain.Config) {
	if secret := os.Getenv("AMANAH_JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if port := os.Getenv("AMANAH_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if host := os.Getenv("AMANAH_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if path := os.Getenv("AMANAH_SQLITE_PATH"); path != "" {
		cfg.Repository.SQLitePath = path
	}
	if host := os.Getenv("AMANAH_POSTGRES_HOST"); host != "" {
		cfg.Repository.PostgresHost = host
	}
	if pass := os.Getenv("AMANAH_POSTGRES_PASSWORD"); pass != "" {
		cfg.Repository.PostgresPassword = pass
	}
	if addr := os.Getenv("AMANAH_REDIS_ADDR"); addr != "" {
		cfg.Cache.RedisAddr = addr
	}
	if url := os.Getenv("AMANAH_NATS_URL"); url != "" {
		cfg.EventBus.NATSUrl = url
	}
}

// loadRulesFromDatabase loads screening rules from the database into the
// engine. All rules must be configured via POST /rules API - no hardcoded
// defaults.
func loadRulesFromDatabase(ctx context.Context, repo domain.Repository, engine *rules.Engine) error {
	dbRules, err := repo.ListScreeningRules(ctx)
	if err != nil {
		slog.Warn("failed to list rules from database", "error", err)
		return nil // Start with empty rules - they can be added via API
	}

	if len(dbRules) > 0 {
		slog.Info("loading rules from database", "count", len(dbRules))
		return engine.LoadRules(dbRules)
	}

	slog.Info("no rules in database - configure via POST /rules API")
	return nil
}

func printBanner(cfg *domain.Config, version string) {
	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════╗")
	fmt.Println("  ║               ☪  AMANAH                   ║")
	fmt.Println("  ║     Halal Compliance Verification         ║")
	fmt.Println("  ║      Trust, verified end to end.          ║")
	fmt.Println("  ╚═══════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("  Version:  %s\n", version)
	fmt.Printf("  Tier:     %s\n", cfg.Tier)
	fmt.Printf("  Server:   http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()
	fmt.Println("  Endpoints:")
	fmt.Println("    POST /auth/register           - Create an account")
	fmt.Println("    POST /auth/login              - Sign in")
	fmt.Println("    GET  /auth/me                 - Current user")
	fmt.Println("    POST /validate-halal          - Validate a product listing")
	fmt.Println("    POST /halal-compliance        - Full compliance screening")
	fmt.Println("    POST /fraud-detection         - Fraud risk screening")
	fmt.Println("    POST /supply-chain/track      - Trace a supply chain record")
	fmt.Println("    GET  /supply-chain/analytics  - Supply chain analytics")
	fmt.Println("    POST /blockchain/verify       - Verify a certification")
	fmt.Println("    POST /blockchain/create-record - Anchor a certification")
	fmt.Println("    GET  /rules                   - List screening rules")
	fmt.Println("    POST /rules                   - Create a screening rule")
	fmt.Println("    POST /rules/reload            - Hot-reload rules")
	fmt.Println("    GET  /vendors                 - List vendors")
	fmt.Println("    GET  /alerts                  - Recent screening alerts")
	fmt.Println("    GET  /health                  - Health check")
	fmt.Println()
}
