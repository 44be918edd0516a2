/**
 * @description
 * This is the main entry point for the subscription-service.
 * It initializes and wires together all the components of the application,
 * including configuration, storage, repository, service, scheduler, and the
 * HTTP router. Finally, it starts the HTTP server to listen for incoming
 * requests.
 */
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

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/subtrack/subscription-service/internal/api"
	"github.com/subtrack/subscription-service/internal/app"
	"github.com/subtrack/subscription-service/internal/config"
	"github.com/subtrack/subscription-service/internal/store"
	"github.com/subtrack/subscription-service/pkg/advisor"
)

func main() {
	// .env is optional; environment variables win either way
	_ = godotenv.Load()

	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Load application configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up channel to listen for OS signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Pick the storage backend: PostgreSQL when DATABASE_URL is set,
	// otherwise an in-memory store suitable for local runs and demos.
	var (
		repo   app.Repository
		digest app.DigestStore
	)
	if cfg.DatabaseURL != "" {
		poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			logger.Error("unable to parse database URL", "error", err)
			os.Exit(1)
		}

		// Configure connection pool for high-traffic scenarios
		poolConfig.MaxConns = 100
		poolConfig.MinConns = 20
		poolConfig.MaxConnLifetime = 30 * time.Minute
		poolConfig.MaxConnIdleTime = 5 * time.Minute

		// IMPORTANT: Disable prepared statements to work with PgBouncer transaction pooling
		// Use simple protocol to avoid statement cache errors (SQLSTATE 42P05)
		poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

		dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			logger.Error("unable to connect to database", "error", err)
			os.Exit(1)
		}
		defer dbpool.Close()
		logger.Info("database connection established")

		repository := store.NewRepository(dbpool)
		if err := repository.EnsureSchema(ctx); err != nil {
			logger.Error("failed to ensure database schema", "error", err)
			os.Exit(1)
		}
		repo = repository
		digest = repository
	} else {
		memory := store.NewMemory()
		if cfg.DemoMode {
			if err := store.SeedDemoData(ctx, memory); err != nil {
				logger.Error("failed to seed demo data", "error", err)
				os.Exit(1)
			}
			logger.Info("demo data seeded", "user_id", store.DemoUserID)
		}
		logger.Info("using in-memory store")
		repo = memory
		digest = memory
	}

	// The AI advisor is optional and only enabled when a key is present
	var adv app.SpendingAdvisor
	if cfg.OpenAIAPIKey != "" {
		adv = advisor.NewClient(cfg.OpenAIAPIKey, cfg.AIModel, logger)
		logger.Info("ai advisor enabled", "model", cfg.AIModel)
	} else {
		logger.Warn("OPENAI_API_KEY not set, ai features disabled")
	}

	// Initialize application layers
	service := app.NewService(repo, adv, cfg, logger)
	handler := api.NewHandler(service, logger)
	router := api.NewRouter(handler)

	// Start the scheduled jobs
	jobs := app.NewJobs(digest, logger, cfg)
	scheduler := app.NewScheduler(jobs, logger, cfg)
	scheduler.Start()

	// Configure and start the HTTP server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	go func() {
		logger.Info("starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for an OS signal
	<-sigCh
	logger.Info("shutdown signal received, gracefully shutting down")

	// Create a context with a timeout for shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Stop accepting cron runs, then drain the HTTP server
	<-scheduler.Stop().Done()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}
