// Package app wires together all dependencies and runs the wishlist service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ae-inbuator/second-story-wishlist/internal/cache"
	redisstorage "github.com/ae-inbuator/second-story-wishlist/internal/cache/redis"
	"github.com/ae-inbuator/second-story-wishlist/internal/config"
	handler "github.com/ae-inbuator/second-story-wishlist/internal/handler/http"
	"github.com/ae-inbuator/second-story-wishlist/internal/notify"
	remotehttp "github.com/ae-inbuator/second-story-wishlist/internal/remote/http"
	"github.com/ae-inbuator/second-story-wishlist/internal/service"
	"github.com/ae-inbuator/second-story-wishlist/pkg/health"
	"github.com/ae-inbuator/second-story-wishlist/pkg/httpclient"
	pkgkafka "github.com/ae-inbuator/second-story-wishlist/pkg/kafka"
)

// App holds the wired dependency graph for the wishlist service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	rdb        *redis.Client
	producer   *pkgkafka.Producer
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Snapshot storage: Redis when configured, in-memory otherwise. The
	// in-memory fallback loses offline snapshots on restart and is meant
	// for development only.
	var storage cache.Storage
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)
		storage = redisstorage.NewStorage(rdb, time.Duration(cfg.CacheTTL)*time.Hour)
	} else {
		logger.Warn("no Redis configured, using in-memory snapshot storage")
		storage = cache.NewMemoryStorage()
	}

	// Outcome notices: Kafka when brokers are configured.
	var producer *pkgkafka.Producer
	var notifier notify.Notifier = notify.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
		producer = pkgkafka.NewProducer(kafkaCfg, logger)
		notifier = notify.NewKafkaNotifier(producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Record-store client, behind a circuit breaker so a dead record store
	// fails fast into the offline path instead of waiting out every retry.
	hcCfg := httpclient.DefaultConfig()
	hcCfg.Timeout = time.Duration(cfg.RecordStoreTimeoutMS) * time.Millisecond
	breaker := httpclient.NewBreakerClient(
		httpclient.New(hcCfg),
		httpclient.DefaultBreakerConfig("record-store"),
		logger,
	)
	recordStore := remotehttp.NewClient(cfg.RecordStoreURL, breaker)

	// Build the dependency graph.
	snapshots := cache.New(storage, logger)
	registry := service.NewRegistry(snapshots, recordStore, recordStore, notifier, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	if rdb != nil {
		healthHandler.Register("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}
	if producer != nil {
		healthHandler.Register("kafka", producer.Ping)
	}

	// HTTP router.
	router := handler.NewRouter(registry, healthHandler, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		rdb:        rdb,
		producer:   producer,
		httpServer: httpServer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	a.logger.Info("application shutdown complete")
	return nil
}
