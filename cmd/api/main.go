package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"quantum-digest/internal/config"
	handler "quantum-digest/internal/handler/http"
	pgRepo "quantum-digest/internal/infra/adapter/persistence/postgres"
	"quantum-digest/internal/infra/db"
	"quantum-digest/internal/observability/logging"
	"quantum-digest/internal/usecase/subscription"
)

const (
	defaultPort = 8080

	tokenTTL = 90 * 24 * time.Hour
)

func main() {
	_ = godotenv.Load()

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	database := db.Open()
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	secret := os.Getenv("UNSUBSCRIBE_TOKEN_SECRET")
	if secret == "" {
		logger.Error("UNSUBSCRIBE_TOKEN_SECRET is required")
		os.Exit(1)
	}

	repo := pgRepo.NewSubscriberRepo(database)
	tokens := subscription.NewTokenManager([]byte(secret), tokenTTL)
	svc := subscription.NewService(repo, tokens, config.LoadRetryConfig().Policy())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", apiPort(logger)),
		Handler:      handler.NewRouter(svc, database, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("api server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api server shutdown failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("api server stopped")
}

func apiPort(logger *slog.Logger) int {
	raw := os.Getenv("API_PORT")
	if raw == "" {
		return defaultPort
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port < 1 || port > 65535 {
		logger.Warn("invalid API_PORT, using default",
			slog.String("value", raw), slog.Int("default", defaultPort))
		return defaultPort
	}
	return port
}
