package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/azzamfsta/Pharmacy-Management-System/internal/api"
	"github.com/azzamfsta/Pharmacy-Management-System/internal/auth"
	"github.com/azzamfsta/Pharmacy-Management-System/internal/cache"
	"github.com/azzamfsta/Pharmacy-Management-System/internal/config"
	"github.com/azzamfsta/Pharmacy-Management-System/internal/database"
	"github.com/azzamfsta/Pharmacy-Management-System/internal/metrics"
	"github.com/azzamfsta/Pharmacy-Management-System/internal/migrations"
	"github.com/azzamfsta/Pharmacy-Management-System/internal/pos"
	"github.com/azzamfsta/Pharmacy-Management-System/internal/report"
	"github.com/azzamfsta/Pharmacy-Management-System/internal/seed"
	"github.com/azzamfsta/Pharmacy-Management-System/internal/store"
)

const sessionSweepInterval = time.Minute

func newLogger(component string) *log.Logger {
	return log.New(os.Stdout, "["+component+"] ", log.LstdFlags|log.LUTC|log.Lshortfile)
}

func main() {
	cfg := config.Load()
	logger := newLogger("api")

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(db, cfg.DatabaseDSN); err != nil {
		logger.Fatalf("run migrations: %v", err)
	}

	st := store.New(db, newLogger("store"))
	ctx := context.Background()
	seedLogger := newLogger("seed")
	if err := seed.EnsureAdmin(ctx, st, cfg.AdminEmail, cfg.AdminPassword, seedLogger); err != nil {
		logger.Fatalf("ensure admin: %v", err)
	}
	if err := seed.LoadMedicinesFile(ctx, st, cfg.SeedCSV, seedLogger); err != nil {
		logger.Fatalf("seed medicines: %v", err)
	}

	var catalogCache cache.Catalog = cache.Noop{}
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Printf("redis unavailable at %s, catalog cache disabled: %v", cfg.RedisAddr, err)
		} else {
			catalogCache = cache.NewRedisCatalog(redisClient, cfg.CatalogCacheTTL)
			logger.Printf("catalog cache enabled at %s", cfg.RedisAddr)
		}
	}

	posLogger := newLogger("pos")
	pricing := pos.Pricing{Rate: cfg.TaxRate, Places: cfg.CurrencyDecimals}
	catalog := pos.NewCachedCatalog(st, catalogCache, posLogger)
	committer := pos.NewCommitter(st, pos.Mode(cfg.CheckoutMode), metrics.Checkout{}, posLogger)
	renderer := pos.NewRenderer(pos.Clinic{Name: cfg.ClinicName, Address: cfg.ClinicAddress}, pricing, pos.NewMoney(cfg.CurrencyLocale, cfg.CurrencyDecimals))
	sessions := pos.NewSessionStore(catalog, committer, pricing, renderer, cfg.SessionTTL, posLogger)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sessions.Run(sweepCtx, sessionSweepInterval)

	reports := report.NewService(st, cfg.LowStockThreshold, newLogger("report"))
	tokens := auth.NewTokenManager(cfg.Secret, cfg.TokenTTL)
	handler := api.New(st, tokens, sessions, reports, catalog, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("PharmGate server starting on :%s (checkout mode %s)", cfg.HTTPPort, committer.Mode())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
