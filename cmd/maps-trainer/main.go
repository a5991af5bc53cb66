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

	"github.com/shelter-training/maps-trainer/internal/api"
	"github.com/shelter-training/maps-trainer/internal/auth"
	"github.com/shelter-training/maps-trainer/internal/catalog"
	"github.com/shelter-training/maps-trainer/internal/config"
	"github.com/shelter-training/maps-trainer/internal/ranking"
	"github.com/shelter-training/maps-trainer/internal/storage"
	"github.com/shelter-training/maps-trainer/internal/training"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting maps-trainer",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	// Run database migrations
	slog.Info("running database migrations", "dir", cfg.Database.MigrationsDir)
	if err := storage.MigrateFromDSN(initCtx, cfg.Database.DSN, cfg.Database.MigrationsDir); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize database repository
	repo, err := storage.NewPostgresRepository(initCtx, storage.PostgresConfig{
		DSN:          cfg.Database.DSN,
		MaxOpenConns: int32(cfg.Database.MaxOpenConns),
		MaxIdleConns: int32(cfg.Database.MaxIdleConns),
	})
	if err != nil {
		slog.Error("failed to create database repository", "error", err)
		os.Exit(1)
	}
	slog.Info("database connected successfully")

	// Leaderboard cache; the service degrades to database reads without it
	var cache training.LeaderboardCache
	redisCache, err := training.NewRedisCache(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Leaderboard.CacheTTL)
	if err != nil {
		slog.Warn("redis unavailable, leaderboard cache disabled", "error", err)
	} else {
		cache = redisCache
		defer redisCache.Close()
	}

	// Load the lesson catalog
	lessonLoader := catalog.NewLoader()
	if cfg.Catalog.LessonsDir != "" {
		if err := lessonLoader.LoadFromDir(cfg.Catalog.LessonsDir); err != nil {
			slog.Warn("failed to load lessons from dir", "dir", cfg.Catalog.LessonsDir, "error", err)
		}
	}

	// Initialize services
	trainingService := training.NewService(repo, cache)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := auth.NewService(repo, tokens)

	// Seed the catalog on startup; a no-op when already seeded
	inserted, err := trainingService.SeedCatalog(initCtx, lessonLoader.List())
	if err != nil {
		slog.Error("failed to seed lesson catalog", "error", err)
		os.Exit(1)
	}
	slog.Info("lesson catalog ready", "inserted", inserted)

	// Create context with cancellation for background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the leaderboard cache refresher
	if cache != nil {
		refresher := ranking.NewRefresher(trainingService, cfg.Leaderboard.RefreshInterval)
		refresher.Start(ctx)
	}

	// Setup HTTP server
	server := api.NewServer(cfg.Server, trainingService, authService, tokens, lessonLoader, repo)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
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

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	if err := repo.Close(); err != nil {
		slog.Error("repository close error", "error", err)
	}

	slog.Info("maps-trainer stopped")
}
