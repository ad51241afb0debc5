package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eakyuz/zikirmatik/internal/config"
	"github.com/eakyuz/zikirmatik/internal/handler"
	"github.com/eakyuz/zikirmatik/internal/repository/sqlite"
	"github.com/eakyuz/zikirmatik/internal/service"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.New()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied")

	broadcast := service.NewBroadcaster()
	authService := service.NewAuthService(db.Identities(), db.Accounts(), cfg.JWTSecret)
	accountService := service.NewAccountService(db.Identities(), db.Accounts(), db.Counters(), cfg.BcryptCost)
	counterService := service.NewCounterService(db.Counters(), broadcast)

	// One login attempt per 2 seconds per address, bursting to 5.
	loginLimiter := service.NewTokenBucket(0.5, 5)

	// Seed the bootstrap admin account (idempotent).
	if err := accountService.SeedAdmin(context.Background(), cfg.Admin.Email, cfg.Admin.DisplayName, cfg.Admin.Password); err != nil {
		slog.Error("failed to seed admin account", "error", err)
		os.Exit(1)
	}
	if cfg.Admin.Email != "" {
		slog.Info("admin account ensured", "email", cfg.Admin.Email)
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, authService, accountService, counterService, loginLimiter, cfg.CookieSecure)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.SecurityHeaders(handler.RequestLogger(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
