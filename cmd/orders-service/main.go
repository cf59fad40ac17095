package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/microcommerce/orders-service/internal/orders/core/service"
	"github.com/microcommerce/orders-service/internal/orders/infra/adapters/catalog"
	"github.com/microcommerce/orders-service/internal/orders/infra/adapters/payment"
	"github.com/microcommerce/orders-service/internal/orders/infra/events"
	"github.com/microcommerce/orders-service/internal/orders/infra/httpx"
	"github.com/microcommerce/orders-service/internal/orders/infra/store/sqlite"
	"github.com/microcommerce/orders-service/internal/pkg/cache"
	"github.com/microcommerce/orders-service/internal/pkg/config"
	"github.com/microcommerce/orders-service/internal/pkg/telemetry"
)

const serviceName = "orders-service"

func main() {
	telemetry.InitLogger(serviceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	shutdown, err := telemetry.SetupTracer(ctx, getEnv("OTEL_SERVICE_NAME", serviceName))
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open order store", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	var snapshotCache cache.Cache
	if cfg.RedisAddr != "" {
		snapshotCache = cache.NewRedisCache(cfg.RedisAddr, "orders")
	}

	catalogClient := catalog.New(cfg.CatalogURL, cfg.UpstreamTimeout, snapshotCache)
	gatewayClient := payment.New(cfg.PaymentGatewayURL, cfg.UpstreamTimeout)

	aggregator := service.NewOrderAggregator(store, catalogClient)
	query := service.NewOrderQueryService(store, catalogClient)
	statusManager := service.NewOrderStatusManager(store)
	coordinator := service.NewPaymentCoordinator(store, gatewayClient)

	handler := httpx.NewHandler(aggregator, query, statusManager, coordinator)
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpx.NewRouter(handler),
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		slog.Info("orders service HTTP API running", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if len(cfg.KafkaBrokers) > 0 {
		consumer := events.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID)
		defer consumer.Close()
		listener := events.NewPaymentListener(coordinator)

		group.Go(func() error {
			slog.Info("payment confirmation consumer running",
				"topic", cfg.KafkaTopic,
				"group_id", cfg.KafkaGroupID,
			)
			err := consumer.Consume(groupCtx, listener.HandleMessage)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		slog.Warn("KAFKA_BROKERS not set, payment confirmations accepted over HTTP only")
	}

	if err := group.Wait(); err != nil {
		slog.Error("service stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("orders service stopped")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
