package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"monedero/internal/backend"
	"monedero/internal/config"
	apphttp "monedero/internal/http"
	applog "monedero/internal/log"
	"monedero/internal/session"
)

// tokenHolder hands the last login credential to the REST backend.
type tokenHolder struct {
	mu    sync.Mutex
	token string
}

func (h *tokenHolder) Set(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = token
}

func (h *tokenHolder) Get() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.token
}

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)
	appLogger := logger.WithComponent(applog.ComponentApp)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		appLogger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	tokens := &tokenHolder{}
	backendCfg, err := backend.FromAppConfig(cfg, tokens.Get)
	if err != nil {
		appLogger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateBackend(context.Background(), backendCfg)
	if err != nil {
		appLogger.Error("Failed to initialize data backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				appLogger.Error("Backend cleanup failed", "error", err)
			}
		}()
	}

	sessions := session.NewManager(cfg.SessionTTL)

	srv := apphttp.NewServer(":"+cfg.Port, result.Backend, sessions)
	srv.OnLogin = tokens.Set

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		appLogger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	appLogger.Info("Starting monedero server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		appLogger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	appLogger.Info("Server stopped gracefully")
}
