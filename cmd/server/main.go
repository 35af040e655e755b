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

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/stayloop/service-booking/internal/application"
	"github.com/stayloop/service-booking/internal/config"
	bookingDomain "github.com/stayloop/service-booking/internal/domain/booking"
	"github.com/stayloop/service-booking/internal/domain/sequence"
	bookingEvents "github.com/stayloop/service-booking/internal/events"
	"github.com/stayloop/service-booking/internal/handler"
	"github.com/stayloop/service-booking/internal/platform/auth"
	"github.com/stayloop/service-booking/internal/platform/database"
	"github.com/stayloop/service-booking/internal/platform/health"
	"github.com/stayloop/service-booking/internal/platform/logger"
	"github.com/stayloop/service-booking/internal/platform/metrics"
	"github.com/stayloop/service-booking/internal/platform/middleware"
	"github.com/stayloop/service-booking/internal/repository"
	"github.com/stayloop/service-booking/migrations"
)

const serviceName = "service-booking"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.String("event_transport", cfg.EventTransport),
		zap.String("sequence_backend", cfg.SequenceBackend),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.IsDevelopment() {
		if err := repository.AutoMigrate(db); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), migrations.FS, log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		cfg.JWTConfig.AccessTokenTTL,
		cfg.JWTConfig.RefreshTokenTTL,
	)

	m := metrics.New()

	// Initialize ID allocator
	var allocator sequence.Allocator
	switch cfg.SequenceBackend {
	case config.SequenceRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer func() { _ = rdb.Close() }()
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			log.Fatal("failed to connect to redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		allocator = repository.NewRedisSequenceAllocator(rdb)
	default:
		allocator = repository.NewSQLSequenceAllocator(db)
	}
	ids := m.InstrumentAllocator(allocator)

	// Initialize repositories
	bookingRepo := repository.NewGormBookingRepository(db)
	propertyRepo := repository.NewGormPropertyRepository(db)
	imageRepo := repository.NewGormImageRepository(db)
	favoriteRepo := repository.NewGormFavoriteRepository(db)

	// Initialize event channel and consumers
	bus := bookingEvents.NewBus(m, log)
	bookingEvents.NewBookingStatusConsumer(bookingRepo, m, log).Register(bus)
	bookingEvents.NewBookingRequestLogger(log).Register(bus)

	var channel bookingEvents.Channel
	switch cfg.EventTransport {
	case config.TransportMemory:
		channel = bookingEvents.NewMemoryChannel(bus, 256, m, log)
	default:
		channel = bookingEvents.NewKafkaChannel(cfg.KafkaConfig.Brokers, cfg.KafkaConfig.GroupPrefix, bus, m, log)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		log.Info("starting booking event consumer", zap.Strings("topics", bus.Topics()))
		if err := channel.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("booking event consumer error", zap.Error(err))
		}
	}()

	// Initialize application services
	bookingService := application.NewBookingService(
		bookingRepo,
		propertyRepo,
		imageRepo,
		ids,
		bookingDomain.NewNightlyPricingStrategy(),
		channel,
		m,
		log,
	)
	propertyService := application.NewPropertyService(propertyRepo, imageRepo, ids, log)
	favoriteService := application.NewFavoriteService(favoriteRepo, propertyRepo, imageRepo, ids, log)

	// Setup Gin router
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := handler.RegisterValidators(); err != nil {
		log.Fatal("failed to register request validators", zap.Error(err))
	}
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins, cfg.AllowAllCORS))
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check and metrics routes
	health.NewHandler(db, serviceName).RegisterRoutes(router)
	m.RegisterRoutes(router)

	// Register routes
	handler.NewBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewPropertyHandler(propertyService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewOwnerHandler(bookingService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewAdminHandler(bookingService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewFavoriteHandler(favoriteService).RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + serviceName)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	// The memory channel drains its queue once closed; the Kafka consumer stops on cancel.
	if err := channel.Close(); err != nil {
		log.Warn("failed to close event channel", zap.Error(err))
	}
	if cfg.EventTransport != config.TransportMemory {
		cancel()
	}
	<-consumerDone

	log.Info(serviceName + " stopped")
}
