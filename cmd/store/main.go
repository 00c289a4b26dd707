package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hifzanazir00781/OnlineShoppingStore/internal/admin"
	"github.com/hifzanazir00781/OnlineShoppingStore/internal/catalog"
	"github.com/hifzanazir00781/OnlineShoppingStore/internal/checkout"
	"github.com/hifzanazir00781/OnlineShoppingStore/internal/config"
	"github.com/hifzanazir00781/OnlineShoppingStore/internal/payment"
	"github.com/hifzanazir00781/OnlineShoppingStore/internal/persist"
	"github.com/hifzanazir00781/OnlineShoppingStore/internal/server"
	"github.com/hifzanazir00781/OnlineShoppingStore/pkg/kit"
)

const (
	service         = "store"
	loginRateLimit  = 10
	loginRateWindow = 60
)

func main() {
	_ = godotenv.Load()

	log := kit.NewLogger(service)
	defer func() { _ = log.Sync() }()

	cfg := config.Load()

	store, err := catalog.LoadFile(cfg.ProductsPath)
	if err != nil {
		log.Fatal("failed to load products", zap.String("path", cfg.ProductsPath), zap.Error(err))
	}
	log.Info("products loaded", zap.Int("count", store.Len()))

	sink := buildSink(cfg, log)

	reg := prometheus.NewRegistry()
	metrics := kit.NewMetrics(reg)

	pool := payment.NewPool(cfg.PaymentWorkers, cfg.PaymentQueueDepth, log)
	gateway := payment.NewSimulator(cfg.PaymentMinDelay, cfg.PaymentMaxDelay, cfg.PaymentSuccessRate)
	coord := checkout.NewCoordinator(store, sink, gateway, pool, log, metrics)

	limiter := kit.NewIPRateLimiter(cfg.ConnLimit, cfg.ConnLimitWindow)
	srv := server.New(cfg.ListenAddr, store, coord, log, metrics, limiter)

	adminHandler := admin.NewHandler(admin.Deps{
		Log:          log,
		Service:      service,
		Registry:     reg,
		Metrics:      metrics,
		Store:        store,
		Sink:         sink,
		JWT:          admin.NewTokenMaker(cfg.JWTSecret),
		User:         cfg.AdminUser,
		PasswordHash: hashAdminPassword(cfg, log),
		TokenTTL:     cfg.TokenTTL,
		MetricsToken: cfg.MetricsToken,
		LoginLimiter: kit.NewIPRateLimiter(loginRateLimit, loginRateWindow),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() { errCh <- srv.Run(ctx) }()
	go func() { errCh <- kit.RunHTTPServer(ctx, cfg.AdminAddr, adminHandler, log) }()

	received := 0
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		received++
		if err != nil {
			log.Error("server stopped", zap.Error(err))
		}
		stop()
	}

	deadline := time.After(cfg.ShutdownTimeout)
wait:
	for received < 2 {
		select {
		case err := <-errCh:
			received++
			if err != nil {
				log.Error("server stopped", zap.Error(err))
			}
		case <-deadline:
			log.Warn("shutdown deadline exceeded")
			break wait
		}
	}

	// Let queued payment attempts resolve so reservations settle.
	pool.Stop()
	log.Info("store shut down")
}

func buildSink(cfg config.Config, log *zap.Logger) persist.Sink {
	if cfg.PersistDSN == "" {
		return persist.NewFileSink(cfg.ProductsPath)
	}

	pg, err := persist.OpenPostgres(cfg.PersistDSN)
	if err != nil {
		log.Fatal("failed to open postgres sink", zap.Error(err))
	}
	log.Info("persisting catalog to postgres")
	return pg
}

func hashAdminPassword(cfg config.Config, log *zap.Logger) []byte {
	if cfg.AdminPassword == "" {
		log.Warn("ADMIN_PASSWORD not set, admin login disabled")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("failed to hash admin password", zap.Error(err))
	}
	return hash
}
