// Package main is the entry point for the orderbell API server.
// All state lives in memory and is lost on restart.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orderbell/internal/app"
	"orderbell/internal/config"
	"orderbell/internal/domain/auth"
	v1 "orderbell/internal/infrastructure/http/v1"
	"orderbell/internal/infrastructure/metrics"
	"orderbell/internal/infrastructure/push"
	"orderbell/pkg/logger"
)

// realmFetchTimeout bounds how long an admin request waits for the realm key.
const realmFetchTimeout = 3 * time.Second

func main() {
	cfg, err := config.Load(os.Getenv("ENV_FILE"))
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Infow("starting orderbell server", "env", cfg.Env)

	// --- Push delivery ---
	pushClient := push.New(push.Config{
		BaseURL:     cfg.PushAPIURL,
		AccessToken: cfg.PushAccessToken,
		Timeout:     cfg.PushTimeout,
	})

	// --- Identity provider ---
	authorizer := auth.NewAuthorizer(
		auth.NewRealmKeySource(cfg.RealmURL, &http.Client{Timeout: realmFetchTimeout}),
		auth.Config{KeyTTL: cfg.KeyTTL, AdminRoles: cfg.AdminRoles},
	)
	log.Infow("authorizer initialized", "realm", cfg.RealmURL, "admin_roles", cfg.AdminRoles)

	// --- State ---
	m := metrics.New()
	state := app.NewState(pushClient, m, cfg.PushTimeout)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		State:          state,
		Logger:         log,
		Authorizer:     authorizer,
		Metrics:        m,
		CORSOrigins:    cfg.CORSOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// In-flight completions finish their push fan-out before the process exits.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return
	}

	log.Info("server stopped")
}
