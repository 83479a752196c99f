package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"rideshare/internal/app"
	"rideshare/internal/config"
	"rideshare/internal/handler"
	internalRedis "rideshare/internal/redis"
	"rideshare/internal/repository/postgres"
	"rideshare/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server, emailWorker := wireServer(db, redisClient, nrApp, cfg)

	// Run the email queue worker until shutdown.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go emailWorker.Run(workerCtx)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server and the
// email queue worker.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, *service.EmailWorker) {
	// Initialize Redis stores.
	lockStore := internalRedis.NewLockStore(redisClient)
	geocodeCache := internalRedis.NewGeocodeCache(redisClient)
	var rateLimiter internalRedis.RateLimiterInterface
	if cfg.RateLimit.Enabled {
		rateLimiter = internalRedis.NewRateLimiter(redisClient, cfg.RateLimit.Limit, cfg.RateLimit.Window)
	}

	// Initialize repositories.
	profileRepo := postgres.NewProfileRepository(db)
	vehicleRepo := postgres.NewVehicleRepository(db)
	rideRepo := postgres.NewRideRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	blockRepo := postgres.NewBlockRepository(db)
	convRepo := postgres.NewConversationRepository(db)
	reportRepo := postgres.NewReportRepository(db)
	emailRepo := postgres.NewEmailRepository(db)

	// Initialize email delivery.
	var sender service.Sender = service.LogSender{}
	if cfg.Email.SMTPEnabled {
		sender = service.NewSMTPSender(
			cfg.Email.SMTPHost+":"+cfg.Email.SMTPPort,
			cfg.Email.SMTPHost,
			cfg.Email.SMTPFrom,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
		)
	}
	emailService := service.NewEmailService(emailRepo)
	emailWorker := service.NewEmailWorker(emailRepo, profileRepo, sender, service.EmailWorkerConfig{
		Interval:    cfg.Email.WorkerInterval,
		BatchSize:   cfg.Email.BatchSize,
		BaseDelay:   cfg.Email.RetryBaseDelay,
		MaxAttempts: cfg.Email.MaxAttempts,
	})

	// Initialize services.
	rideService := service.NewRideService(db, rideRepo, bookingRepo, blockRepo, vehicleRepo, emailService)
	bookingService := service.NewBookingService(rideRepo, bookingRepo, blockRepo, profileRepo, lockStore, emailService)
	messagingService := service.NewMessagingService(convRepo, blockRepo, emailService)
	profileService := service.NewProfileService(profileRepo, vehicleRepo, blockRepo, rideRepo, bookingRepo, emailService)
	moderationService := service.NewModerationService(reportRepo, profileRepo, rideRepo, bookingRepo, emailService)
	geocodeService := service.NewGeocodeService(cfg.Geocoder.BaseURL, cfg.Geocoder.Timeout, geocodeCache)

	// Initialize handlers.
	profileHandler := handler.NewProfileHandler(profileService)
	rideHandler := handler.NewRideHandler(rideService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	messageHandler := handler.NewMessageHandler(messagingService)
	reportHandler := handler.NewReportHandler(moderationService)
	geocodeHandler := handler.NewGeocodeHandler(geocodeService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		ProfileHandler: profileHandler,
		RideHandler:    rideHandler,
		BookingHandler: bookingHandler,
		MessageHandler: messageHandler,
		ReportHandler:  reportHandler,
		GeocodeHandler: geocodeHandler,
		ProfileRepo:    profileRepo,
		RateLimiter:    rateLimiter,
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, emailWorker
}
