// Package main is the entry point for the VigilGo alert engine.
// It initializes all components and starts the HTTP server, the activity
// tracker, the broadcast hub, and the sweep scheduler.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"vigil-go/internal/api"
	"vigil-go/internal/banner"
	"vigil-go/internal/broadcast"
	"vigil-go/internal/condition"
	"vigil-go/internal/config"
	"vigil-go/internal/dispatch"
	"vigil-go/internal/ingest"
	"vigil-go/internal/queue"
	kafkaqueue "vigil-go/internal/queue/kafka"
	memoryqueue "vigil-go/internal/queue/memory"
	"vigil-go/internal/scheduler"
	"vigil-go/internal/snapshot"
	"vigil-go/internal/store"
	memorystor "vigil-go/internal/store/memory"
	postgresstor "vigil-go/internal/store/postgres"
	redisstor "vigil-go/internal/store/redis"
	"vigil-go/internal/tracker"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	flag.Parse()

	banner.Print()

	// Load configuration before the logger so its settings apply
	cfg, err := config.Load(*configPath)
	if err != nil {
		cfg = config.Default()
		slog.Warn("no configuration file, using defaults", "path", *configPath)
	}

	logger := initLogger(&cfg.Logger)
	logger.Info("configuration loaded",
		"storage_mode", cfg.Storage.Mode,
		"sweep_interval", cfg.Scheduler.Interval.String(),
	)

	deps, cleanup, err := initDependencies(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize dependencies", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// Create context that listens for shutdown signals
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Start activity tracker in background
	go func() {
		if err := deps.tracker.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Error("tracker error", "error", err)
			cancel()
		}
	}()

	// Start broadcast hub
	go func() {
		if err := deps.hub.Start(cfg.Broadcast.Address(), cfg.Broadcast.Path); err != nil {
			logger.Error("broadcast hub error", "error", err)
			cancel()
		}
	}()

	// Start sweep scheduler
	go func() {
		if err := deps.scheduler.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Error("scheduler error", "error", err)
			cancel()
		}
	}()

	// Start HTTP server
	go func() {
		if err := deps.server.Start(); err != nil {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	logger.Info("VigilGo started",
		"address", cfg.Server.Address(),
		"broadcast", cfg.Broadcast.Address(),
		"storage_mode", cfg.Storage.Mode,
	)

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer shutdownCancel()

	if err := deps.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if err := deps.hub.Shutdown(shutdownCtx); err != nil {
		logger.Error("broadcast hub shutdown error", "error", err)
	}
	if err := deps.tracker.Stop(); err != nil {
		logger.Error("tracker shutdown error", "error", err)
	}

	logger.Info("VigilGo stopped")
}

// dependencies holds all initialized service dependencies.
type dependencies struct {
	server    *api.Server
	tracker   *tracker.Service
	scheduler *scheduler.Scheduler
	hub       *broadcast.Hub
}

// initDependencies creates and wires all service dependencies based on config.
// Returns the dependencies and a cleanup function.
func initDependencies(cfg *config.Config, logger *slog.Logger) (*dependencies, func(), error) {
	var (
		alertRepo    store.AlertRepository
		metricsStore store.MetricsStore
		producer     queue.Producer
		consumer     queue.Consumer
		builderOpts  []snapshot.Option
		cleanupFuncs []func()
	)

	if cfg.Storage.UseMemory() {
		logger.Info("initializing in-memory storage")

		alertRepo = memorystor.NewAlertRepository()

		memMetrics := memorystor.NewMetricsStore()
		metricsStore = memMetrics
		cleanupFuncs = append(cleanupFuncs, func() { _ = memMetrics.Close() })

		memQueue := memoryqueue.NewQueue(10000)
		producer = memQueue
		consumer = memQueue
		cleanupFuncs = append(cleanupFuncs, func() { _ = memQueue.Close() })
	} else {
		logger.Info("initializing production storage (Kafka, Redis, PostgreSQL)")

		ctx := context.Background()
		db, err := postgresstor.NewDB(ctx, &cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		cleanupFuncs = append(cleanupFuncs, db.Close)

		if err := db.RunMigrations(ctx); err != nil {
			return nil, nil, err
		}
		logger.Info("database migrations completed")

		alertRepo = postgresstor.NewAlertRepository(db)
		builderOpts = append(builderOpts, snapshot.WithDBConnections(db.OpenConnections))

		redisMetrics, err := redisstor.NewMetricsStore(&cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		metricsStore = redisMetrics
		cleanupFuncs = append(cleanupFuncs, func() { _ = redisMetrics.Close() })

		kafkaProducer := kafkaqueue.NewProducer(&cfg.Kafka)
		producer = kafkaProducer
		cleanupFuncs = append(cleanupFuncs, func() { _ = kafkaProducer.Close() })

		kafkaConsumer := kafkaqueue.NewConsumer(&cfg.Kafka, logger)
		consumer = kafkaConsumer
		cleanupFuncs = append(cleanupFuncs, func() { _ = kafkaConsumer.Close() })
	}

	// Condition language
	catalog := condition.DefaultCatalog()
	evaluator := condition.NewEvaluator(catalog, logger)

	// Notification channels
	var emailSender dispatch.EmailSender
	if cfg.SMTP.Enabled() {
		emailSender = dispatch.NewSMTPSender(&cfg.SMTP)
	} else {
		logger.Info("no SMTP transport configured, email goes to the log")
		emailSender = dispatch.NewLogSender(logger)
	}
	hub := broadcast.NewHub(logger)
	dispatcher := dispatch.NewDispatcher(emailSender, hub, dispatch.NewWebhookSender(logger), logger)

	// Activity pipeline
	ingestService := ingest.NewService(producer, logger)
	trackerService := tracker.NewService(consumer, metricsStore, logger)

	// Sweep scheduler
	builder := snapshot.NewMetricsBuilder(metricsStore, logger, builderOpts...)
	sched := scheduler.New(alertRepo, builder, evaluator, dispatcher, logger, scheduler.Options{
		Interval:        cfg.Scheduler.Interval,
		Cooldown:        cfg.Scheduler.Cooldown,
		DispatchTimeout: cfg.Scheduler.DispatchTimeout,
	})

	// HTTP server
	server := api.NewServer(api.ServerDeps{
		Config:           &cfg.Server,
		Logger:           logger,
		AlertHandler:     api.NewAlertHandler(alertRepo, evaluator, logger),
		ConditionHandler: api.NewConditionHandler(catalog, evaluator, builder, logger),
		IngestHandler:    api.NewIngestHandler(ingestService, logger),
		SweepHandler:     api.NewSweepHandler(sched, logger),
	})

	cleanup := func() {
		for i := len(cleanupFuncs) - 1; i >= 0; i-- {
			cleanupFuncs[i]()
		}
	}

	return &dependencies{
		server:    server,
		tracker:   trackerService,
		scheduler: sched,
		hub:       hub,
	}, cleanup, nil
}

// initLogger creates and configures the application logger.
func initLogger(cfg *config.LoggerConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
