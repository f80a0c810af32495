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

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/marcelsud/webhook-dispatch/config"
	"github.com/marcelsud/webhook-dispatch/delivery"
	"github.com/marcelsud/webhook-dispatch/eventtypes"
	"github.com/marcelsud/webhook-dispatch/internal/http/chi"
	"github.com/marcelsud/webhook-dispatch/metrics"
	"github.com/marcelsud/webhook-dispatch/webhook"
	"github.com/marcelsud/webhook-dispatch/webhook/memory"
	"github.com/marcelsud/webhook-dispatch/webhook/postgres"
	redisstore "github.com/marcelsud/webhook-dispatch/webhook/redis"
)

/* main wires every package together: config, storage, queue, delivery pool and HTTP API
 * Imports only go downwards: the binary imports business packages, which import storage
 */

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	if err := run(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("api stopped")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	catalog, err := loadCatalog(cfg.EventTypesFile)
	if err != nil {
		return err
	}
	logger.Info().Int("event_types", len(catalog.Names())).Str("file", cfg.EventTypesFile).Msg("event types loaded")

	var redisClient *goredis.Client
	if cfg.StoreDriver == config.DriverRedis || cfg.QueueDriver == config.DriverRedis {
		redisClient, err = redisstore.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
	}

	repo, err := newRepository(cfg, redisClient)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(context.Background()); err != nil {
			logger.Error().Err(err).Msg("closing registry")
		}
		// the Redis repository owns the client; any other backend leaves it to us
		if redisClient != nil && cfg.StoreDriver != config.DriverRedis {
			redisClient.Close()
		}
	}()

	queue, err := newQueue(ctx, cfg, redisClient, logger)
	if err != nil {
		return err
	}

	strategy := cfg.Retry()
	logger.Info().
		Int("max_retries", strategy.MaxRetries).
		Str("schedule", strategy.String()).
		Msg("retry strategy")

	collector := metrics.NewCollector()
	observer := webhook.Observers{collector, delivery.NewLogObserver(logger)}

	service := webhook.NewService(repo, catalog)
	dispatcher := delivery.NewDispatcher(service, queue, catalog, logger)
	sender := delivery.NewSender(nil, cfg.DeliveryTimeout)
	tester := delivery.NewTester(service, sender)
	policy := delivery.NewFailurePolicy(service, cfg.DisableThreshold, observer, logger)

	opts := []delivery.PoolOption{delivery.WithObserver(observer)}
	aggregator := &metrics.Aggregator{Deliveries: collector, Queue: queue}
	if redisClient != nil {
		opts = append(opts, delivery.WithHeartbeats(redisstore.NewRepository(redisClient), delivery.DefaultHeartbeatInterval))
		aggregator.Workers = metrics.NewRedisCollector(redisClient)
	}

	pool := delivery.NewPool(service, queue, sender, policy, delivery.PoolConfig{
		Name:        cfg.ConsumerName,
		WorkerCount: cfg.WorkerCount,
		Retry:       strategy,
	}, logger, opts...)

	exporter, err := metrics.NewOTelExporter(aggregator)
	if err != nil {
		return err
	}

	r := chi.Handlers(ctx, chi.API{
		Webhooks: service,
		Events:   dispatcher,
		Tester:   tester,
		Catalog:  catalog,
		Stats:    aggregator,
		Metrics:  exporter.Handler(),
	})
	srv := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Addr:         ":" + cfg.Port,
		Handler:      r,
	}

	pool.Start()

	errShutdown := make(chan error, 1)
	go shutdown(srv, ctx, cfg.ShutdownTimeout, errShutdown)

	logger.Info().
		Str("port", cfg.Port).
		Str("store", cfg.StoreDriver).
		Str("queue", cfg.QueueDriver).
		Int("workers", cfg.WorkerCount).
		Msg("listening")

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		stop()
		pool.Stop()
		queue.Close(context.Background())
		return err
	}
	err = <-errShutdown

	// stop pulling new jobs, let in-flight deliveries finish, then release the queue
	pool.Stop()
	if cerr := queue.Close(context.Background()); cerr != nil {
		logger.Error().Err(cerr).Msg("closing queue")
	}
	if serr := exporter.Shutdown(context.Background()); serr != nil {
		logger.Error().Err(serr).Msg("shutting down metrics exporter")
	}

	return err
}

func shutdown(server *http.Server, ctxShutdown context.Context, timeout time.Duration, errShutdown chan error) {
	<-ctxShutdown.Done()

	ctxTimeout, stop := context.WithTimeout(context.Background(), timeout)
	defer stop()

	err := server.Shutdown(ctxTimeout)
	switch {
	case err == nil:
		errShutdown <- nil
	case errors.Is(err, context.DeadlineExceeded):
		errShutdown <- fmt.Errorf("forcing closing the server: %w", err)
	default:
		errShutdown <- fmt.Errorf("forcing closing the server: %w", err)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.LogJSON {
		logger = zerolog.New(os.Stdout)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	return logger.Level(level).With().Timestamp().Str("service", "webhook-dispatch").Logger()
}

func loadCatalog(path string) (*eventtypes.Catalog, error) {
	if path == "" {
		return eventtypes.Default(), nil
	}
	catalog, err := eventtypes.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading event types: %w", err)
	}
	return catalog, nil
}

func newRepository(cfg *config.Config, client *goredis.Client) (webhook.Repository, error) {
	switch cfg.StoreDriver {
	case config.DriverRedis:
		return redisstore.NewRepository(client), nil
	case config.DriverPostgres:
		repo, err := postgres.NewRepositoryWithPoolConfig(
			cfg.DatabaseURL,
			cfg.PostgresMaxOpenConns,
			cfg.PostgresMaxIdleConns,
			cfg.PostgresConnMaxLifeMinutes,
		)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.DriverMemory:
		return memory.NewRepository(), nil
	}
	return nil, fmt.Errorf("unknown store driver: %s", cfg.StoreDriver)
}

// reportingQueue is a delivery queue that can also report its backlog
type reportingQueue interface {
	webhook.Queue
	webhook.DepthReporter
}

func newQueue(ctx context.Context, cfg *config.Config, client *goredis.Client, logger zerolog.Logger) (reportingQueue, error) {
	switch cfg.QueueDriver {
	case config.DriverRedis:
		return redisstore.NewQueue(ctx, client, redisstore.QueueConfig{
			Consumer:    cfg.ConsumerName,
			ReclaimIdle: cfg.ReclaimIdle,
		}, logger)
	case config.DriverMemory:
		return memory.NewQueue(memory.WithReclaimIdle(cfg.ReclaimIdle)), nil
	}
	return nil, fmt.Errorf("unknown queue driver: %s", cfg.QueueDriver)
}
