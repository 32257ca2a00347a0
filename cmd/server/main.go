package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"solarsizing/docs"
	"solarsizing/internal/app"
	"solarsizing/internal/cache"
	"solarsizing/internal/config"
	"solarsizing/internal/db"
	"solarsizing/internal/logger"
	"solarsizing/internal/router"
)

const shutdownTimeout = 10 * time.Second

// @title Solar Sizing API
// @version 1.0
// @description Solar sizing projects, versioned inputs and calculations, gated by a one-off activation payment.
// @host localhost:8000
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Development: cfg.IsDev()})
	defer func() { _ = log.Sync() }()

	gormDB, err := db.Open(cfg.DatabaseURL, db.Options{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		SlowThreshold:   200 * time.Millisecond,
	}, log)
	if err != nil {
		return fmt.Errorf("database init: %w", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if cfg.ResetDB {
		log.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			return fmt.Errorf("reset database: %w", err)
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, log)
	if cacheClient == nil {
		log.Info("redis disabled; token revocation and webhook dedupe are off")
	} else if err := cacheClient.Ping(context.Background()); err != nil {
		log.Warn("redis unreachable, continuing without cache", zap.Error(err))
	}
	defer func() { _ = cacheClient.Close() }()

	services, err := app.NewServices(app.Dependencies{
		Config: cfg,
		Logger: log,
		DB:     gormDB,
		Cache:  cacheClient,
	})
	if err != nil {
		return err
	}
	defer services.Events.Close()

	if !cfg.StripeConfigured() {
		log.Warn("STRIPE_SECRET_KEY not set; card checkout is unavailable")
	}

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}

	e := echo.New()
	e.HidePort = true
	router.Register(e, cfg, log, services.Auth, services.Handlers())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.ServerPort
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", addr), zap.String("swagger", "/swagger/index.html"))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server start: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	services.Events.Close()
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}
