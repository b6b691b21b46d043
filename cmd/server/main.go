package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	budgetapp "github.com/ddmpress/backend/internal/application/budget"
	"github.com/ddmpress/backend/internal/application/cascade"
	financeapp "github.com/ddmpress/backend/internal/application/finance"
	partnerapp "github.com/ddmpress/backend/internal/application/partner"
	projectapp "github.com/ddmpress/backend/internal/application/project"
	"github.com/ddmpress/backend/internal/domain/shared"
	"github.com/ddmpress/backend/internal/infrastructure/cache"
	"github.com/ddmpress/backend/internal/infrastructure/config"
	"github.com/ddmpress/backend/internal/infrastructure/event"
	"github.com/ddmpress/backend/internal/infrastructure/logger"
	"github.com/ddmpress/backend/internal/infrastructure/persistence"
	"github.com/ddmpress/backend/internal/infrastructure/storage"
	"github.com/ddmpress/backend/internal/interfaces/http/handler"
	"github.com/ddmpress/backend/internal/interfaces/http/middleware"
	"github.com/ddmpress/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting DDM Press backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Repositories
	clientRepo := persistence.NewGormClientRepository(db.DB)
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	budgetRepo := persistence.NewGormBudgetRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Event serialization and the transactional outbox
	eventSerializer := event.NewEventSerializer()
	outboxPublisher := event.NewOutboxPublisher(eventSerializer, log)
	budgetRepo.SetOutboxEventSaver(outboxPublisher)

	// Transaction scope for multi-aggregate writes
	txScope := persistence.NewGormTransactionScope(db.DB)
	txScope.SetOutboxEventSaver(outboxPublisher)

	// Application services
	clientService := partnerapp.NewClientService(clientRepo, txScope)
	budgetService := budgetapp.NewBudgetService(budgetRepo)
	projectService := projectapp.NewProjectService(projectRepo, txScope, log)
	invoiceService := financeapp.NewInvoiceService(invoiceRepo, orderRepo)

	// Conversion cascade
	builder := cascade.NewBuilder(cfg.Cascade.DueDay)
	committer := cascade.NewCommitter(txScope, builder, cascade.CommitterConfig{
		MaxAttempts: cfg.Cascade.MaxAttempts,
		BaseBackoff: cfg.Cascade.RetryBackoff,
	}, log)

	// Post-commit side effects
	var archiver cascade.DocumentArchiver
	if cfg.Storage.Enabled {
		s3Archiver, err := storage.NewS3DocumentArchiver(&cfg.Storage, log)
		if err != nil {
			log.Fatal("Failed to initialize document archiver", zap.Error(err))
		}
		if err := s3Archiver.EnsureBucket(context.Background()); err != nil {
			log.Fatal("Failed to ensure storage bucket", zap.Error(err))
		}
		archiver = s3Archiver
		log.Info("Document archiver enabled", zap.String("bucket", s3Archiver.GetBucket()))
	}
	notifier := storage.NewLogNotifier(log)

	// Idempotency store: Redis when configured, in-memory otherwise
	var idempotencyStore shared.IdempotencyStore
	if cfg.Redis.Host != "" {
		redisStore, err := cache.NewRedisIdempotencyStore(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		idempotencyStore = redisStore
		log.Info("Redis idempotency store connected", zap.String("addr", cfg.Redis.Addr()))
	} else {
		idempotencyStore = cache.NewInMemoryIdempotencyStore()
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Event bus and the conversion handler
	eventBus := event.NewInMemoryEventBus(log)

	approvedHandler := cascade.NewBudgetApprovedHandler(committer, archiver, notifier, log)
	eventBus.Subscribe(event.NewIdempotentHandler(approvedHandler, idempotencyStore, log))
	log.Info("Event handlers registered",
		zap.Strings("budget_approved_events", approvedHandler.EventTypes()),
	)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Outbox processor delivers stored events to the bus
	if cfg.Event.ProcessorEnabled {
		processorConfig := event.DefaultOutboxProcessorConfig()
		if cfg.Event.BatchSize > 0 {
			processorConfig.BatchSize = cfg.Event.BatchSize
		}
		if cfg.Event.PollInterval > 0 {
			processorConfig.PollInterval = cfg.Event.PollInterval
		}
		processorConfig.CleanupEnabled = cfg.Event.CleanupEnabled
		if cfg.Event.CleanupRetention > 0 {
			processorConfig.CleanupRetention = cfg.Event.CleanupRetention
		}

		outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, processorConfig, log)
		if err := outboxProcessor.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	router.Setup(engine, router.Handlers{
		Budget:  handler.NewBudgetHandler(budgetService),
		Client:  handler.NewClientHandler(clientService),
		Project: handler.NewProjectHandler(projectService),
		Invoice: handler.NewInvoiceHandler(invoiceService),
		System:  handler.NewSystemHandler(db),
		Outbox:  handler.NewOutboxHandler(outboxRepo),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
