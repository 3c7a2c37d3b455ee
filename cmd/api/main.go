package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/ecolife-shop/internal/api"
	"github.com/example/ecolife-shop/internal/auth"
	"github.com/example/ecolife-shop/internal/config"
	"github.com/example/ecolife-shop/internal/domain/cart"
	"github.com/example/ecolife-shop/internal/domain/catalog"
	"github.com/example/ecolife-shop/internal/domain/checkout"
	"github.com/example/ecolife-shop/internal/domain/counter"
	"github.com/example/ecolife-shop/internal/infrastructure/co2api"
	"github.com/example/ecolife-shop/internal/ledger"
	"github.com/example/ecolife-shop/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[API] %v", err)
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		log.Fatalf("[API] failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger.Named("ecolife")); err != nil {
		logger.Fatal("api stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("store", cfg.StoreBackend),
		zap.String("events", cfg.EventBackend),
		zap.Bool("co2_remote", cfg.CO2RemoteEnabled),
		zap.Bool("ledger", cfg.LedgerEnabled),
	)

	cat := catalog.NewMemoryCatalog()
	warnings, err := cat.LoadFile(cfg.CatalogPath)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		logger.Warn("catalog", zap.String("warning", w))
	}
	logger.Info("catalog loaded", zap.Int("products", len(cat.List(catalog.Filter{}))))

	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	var remote counter.Remote
	if cfg.CO2RemoteEnabled {
		remote = co2api.NewClient(cfg.CO2APIURL, co2api.NewHTTPClient(cfg.CO2APITimeout),
			co2api.WithAdminToken(cfg.AdminToken),
		)
	}
	co2 := counter.New(remote, b.kv, logger,
		counter.WithTimeout(cfg.CO2APITimeout),
		counter.WithMetrics(m),
	)

	// Orders accepted before the remote is reachable add to the persisted
	// total rather than to the seed.
	logger.Info("local counter loaded", zap.Float64("total_co2_saved", co2.LoadLocal(ctx)))

	routerOpts := api.RouterOptions{Metrics: m, Gatherer: reg, WebDir: cfg.WebDir, AdminToken: cfg.AdminToken}
	if cfg.AdminToken == "" {
		logger.Warn("ADMIN_TOKEN is not set, counter reset is disabled")
	}
	if cfg.LedgerEnabled {
		routerOpts.Ledger = ledger.NewServer(ledger.New(b.kv, counter.Seed, logger), logger)
	}

	co := checkout.NewService(co2, logger,
		checkout.WithPublisher(b.publisher),
		checkout.WithMetrics(m),
	)
	tokens := auth.NewSessionTokens(cfg.JWTSecret, cfg.SessionTTL)
	sessions := cart.NewSessions(b.kv, cat, logger,
		cart.WithIdleTTL(cfg.CartIdleTTL),
		cart.WithMaxOpen(cfg.MaxOpenCarts),
	)
	handlers := api.NewHandlers(cat, sessions, co, co2, tokens, logger)

	sweeper, err := cart.NewSweeper(sessions, cfg.CartIdleTTL/2, m, logger)
	if err != nil {
		return err
	}
	sweeper.Start()
	defer sweeper.Stop()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(handlers, routerOpts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// The counter is loaded once the server is up, so a ledger served by
	// this same process can answer.
	logger.Info("global counter loaded", zap.Float64("total_co2_saved", co2.Load(ctx)))

	if cfg.CounterRefresh > 0 {
		refresher, err := counter.NewRefresher(co2, cfg.CounterRefresh, logger)
		if err != nil {
			return err
		}
		refresher.Start()
		defer refresher.Stop()
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}
