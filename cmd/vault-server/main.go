package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vault-gateway/gateway"
	"vault-gateway/logging"
	authinfra "vault-gateway/middleware/auth/infra"
	"vault-gateway/middleware/ratelimit/infra"
	"vault-gateway/vault"

	"go.uber.org/zap"
)

func main() {
	// Exemplo: o vault com os handlers locais, sem proxy.
	logger, err := logging.New(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	handlers := vault.New(logger)
	stats := infra.NewMemoryStatsStore()

	gw, err := gateway.New(gateway.Options{
		Routes:     gateway.DefaultRoutes(),
		Identities: authinfra.NewStaticSet([]string{"abc", "def"}),
		Handlers: map[string]http.Handler{
			"POST /vault":           http.HandlerFunc(handlers.CreateVault),
			"GET /vault/items":      http.HandlerFunc(handlers.ListVaultItems),
			"PUT /vault/items/{id}": http.HandlerFunc(handlers.CreateVaultItem),
		},
		Stats:               stats,
		AddRateLimitHeaders: true,
		Logger:              logger,
	})
	if err != nil {
		logger.Fatal("gateway setup failed", zap.Error(err))
	}
	defer gw.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	addr := "[::]:3000"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           gw,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		total := stats.Snapshot().Total
		logger.Info("shutting down", zap.Int64("allowed", total.Allowed), zap.Int64("denied", total.Denied))
	}()

	logger.Info("vault server listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
