package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/terra-clan/careerprep/internal/api"
	"github.com/terra-clan/careerprep/internal/cache"
	"github.com/terra-clan/careerprep/internal/career"
	"github.com/terra-clan/careerprep/internal/catalog"
	"github.com/terra-clan/careerprep/internal/cleanup"
	"github.com/terra-clan/careerprep/internal/config"
	"github.com/terra-clan/careerprep/internal/interview"
	"github.com/terra-clan/careerprep/internal/llm"
	"github.com/terra-clan/careerprep/internal/resume"
	"github.com/terra-clan/careerprep/internal/storage"
)

func main() {
	_ = godotenv.Load()

	// Setup structured logging
	setupLogger("info")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.Log.Level)

	slog.Info("starting careerprep",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"llm_provider", cfg.LLM.Provider,
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	// Load catalog
	catalogLoader, err := catalog.NewLoader()
	if err != nil {
		slog.Error("failed to load built-in catalog", "error", err)
		os.Exit(1)
	}
	if cfg.Catalog.Dir != "" {
		if err := catalogLoader.LoadFromDir(cfg.Catalog.Dir); err != nil {
			slog.Warn("failed to load catalog from dir, keeping built-in catalog", "dir", cfg.Catalog.Dir, "error", err)
		}
	}

	// Initialize repository
	repo, err := openRepository(initCtx, cfg.Database)
	if err != nil {
		slog.Error("failed to create repository", "error", err)
		os.Exit(1)
	}

	// Initialize cache
	var resultCache cache.Cache = cache.Noop{}
	if cfg.Redis.Address != "" {
		redisCache, err := cache.NewRedisCache(initCtx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			slog.Warn("redis unavailable, caching disabled", "address", cfg.Redis.Address, "error", err)
		} else {
			resultCache = redisCache
			slog.Info("redis connected successfully", "address", cfg.Redis.Address)
		}
	}

	// Initialize text generator
	provider, err := llm.NewProvider(initCtx, cfg.LLM)
	if err != nil {
		slog.Error("failed to create LLM provider", "error", err)
		os.Exit(1)
	}
	slog.Info("LLM provider ready", "provider", cfg.LLM.Provider, "model", provider.ModelID())

	// Initialize services
	interviewer := interview.NewInterviewer(provider)
	manager := interview.NewManager(repo, interviewer, cfg.Interview.TTL)

	// Initialize cleanup worker
	cleaner := cleanup.NewCleaner(manager, cfg.Cleanup.Interval)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start cleanup worker
	cleaner.Start(ctx)

	// Setup HTTP server
	server := api.NewServer(cfg.Server, api.Dependencies{
		Catalog:     catalogLoader,
		Career:      career.NewService(catalogLoader, provider),
		Resume:      resume.NewAnalyzer(provider, resultCache, cfg.Redis.CacheTTL),
		Interviewer: interviewer,
		Interviews:  manager,
		Repo:        repo,
		Cache:       resultCache,
	})
	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Cancel context to stop background workers
	cancel()
	cleaner.Wait()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Let in-flight result writes land before closing storage
	manager.Wait()

	if err := resultCache.Close(); err != nil {
		slog.Error("cache close error", "error", err)
	}
	if err := repo.Close(); err != nil {
		slog.Error("repository close error", "error", err)
	}

	slog.Info("careerprep stopped")
}

func setupLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: lvl,
	}))
	slog.SetDefault(logger)
}

// openRepository connects to PostgreSQL and applies migrations, or falls
// back to the in-memory repository when no DSN is configured.
func openRepository(ctx context.Context, cfg config.DatabaseConfig) (storage.Repository, error) {
	if cfg.DSN == "" {
		slog.Warn("DATABASE_DSN not set, interviews are kept in memory")
		return storage.NewMemoryRepository(), nil
	}

	repo, err := storage.NewPostgresRepository(ctx, storage.PostgresConfig{
		DSN:      cfg.DSN,
		MaxConns: int32(cfg.MaxConns),
		MinConns: int32(cfg.MinConns),
	})
	if err != nil {
		return nil, err
	}
	slog.Info("database connected successfully")

	migrations, err := storage.MigrationsFS(cfg.MigrationsDir)
	if err != nil {
		repo.Close()
		return nil, err
	}
	slog.Info("running database migrations", "dir", cfg.MigrationsDir)
	if err := storage.RunMigrations(ctx, repo.Pool(), migrations); err != nil {
		repo.Close()
		return nil, err
	}

	return repo, nil
}
