package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/stayflow/service-hotel/internal/application"
	"github.com/stayflow/service-hotel/internal/auth"
	"github.com/stayflow/service-hotel/internal/config"
	"github.com/stayflow/service-hotel/internal/consumer"
	"github.com/stayflow/service-hotel/internal/database"
	"github.com/stayflow/service-hotel/internal/domain"
	bookingDomain "github.com/stayflow/service-hotel/internal/domain/booking"
	"github.com/stayflow/service-hotel/internal/handler"
	"github.com/stayflow/service-hotel/internal/kafka"
	"github.com/stayflow/service-hotel/internal/logger"
	"github.com/stayflow/service-hotel/internal/middleware"
	"github.com/stayflow/service-hotel/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-hotel")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-hotel",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.RoomModel{}, &repository.BookingModel{}, &repository.RoomChangeModel{}); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Kafka producer
	producer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = producer.Close() }()

	// Initialize repositories
	bookingRepo := repository.NewGormBookingRepository(db)
	roomRepo := repository.NewGormRoomRepository(db)
	roomChangeRepo := repository.NewGormRoomChangeRepository(db)
	txManager := repository.NewTxManager(db)

	clock := domain.SystemClock{}
	rates := bookingDomain.NewRateCalculator(cfg.TaxRateBps, cfg.ExtraBedRateCents)

	// Initialize application services
	bookingService := application.NewBookingService(
		bookingRepo,
		roomRepo,
		txManager,
		rates,
		producer,
		clock,
		cfg.Housekeeping.VacatedRoomStatus,
		log,
	)
	roomService := application.NewRoomService(roomRepo, bookingRepo, producer, clock, log)
	reassignmentService := application.NewReassignmentService(
		txManager,
		roomChangeRepo,
		producer,
		clock,
		cfg.Housekeeping.VacatedRoomStatus,
		log,
	)
	housekeepingService := application.NewHousekeepingService(
		roomRepo,
		bookingRepo,
		clock,
		cfg.Housekeeping.VacatedRoomStatus,
		cfg.Housekeeping.AutoCheckIn,
		log,
	)

	// Initialize and start payment event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "hotel-service"
	paymentConsumer := consumer.NewPaymentEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		bookingService,
		log,
	)
	defer func() { _ = paymentConsumer.Close() }()

	go func() {
		log.Info("starting payment event consumer")
		if err := paymentConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("payment event consumer error", zap.Error(err))
		}
	}()

	// Schedule the housekeeping sweep
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Housekeeping.Schedule, func() {
		if _, err := housekeepingService.RunSweep(ctx); err != nil {
			log.Error("scheduled sweep failed", zap.Error(err))
		}
	}); err != nil {
		log.Fatal("invalid housekeeping schedule", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService, reassignmentService)
	roomHandler := handler.NewRoomHandler(roomService, reassignmentService)
	housekeepingHandler := handler.NewHousekeepingHandler(housekeepingService)
	adminHandler := handler.NewAdminHandler(bookingService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := handler.NewHealthHandler(db, "service-hotel")
	healthHandler.RegisterRoutes(router)

	// Register routes
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	roomHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	housekeepingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-hotel...")

	// Cancel the consumer context and stop the scheduler
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-hotel stopped")
}
