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

	"cargoride/internal/app"
	"cargoride/internal/config"
	"cargoride/internal/handler"
	internalRedis "cargoride/internal/redis"
	"cargoride/internal/repository/postgres"
	"cargoride/internal/service"
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
	server := wireServer(db, redisClient, nrApp, cfg)

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

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) *http.Server {
	// Initialize Redis stores.
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Initialize repositories.
	accountRepo := postgres.NewAccountRepository(db)
	memberRepo := postgres.NewMemberRepository(db)
	tripRepo := postgres.NewTripRepository(db)
	ruleRepo := postgres.NewPricingRuleRepository(db)
	commodityRepo := postgres.NewCommodityPriceRepository(db)
	driverRepo := postgres.NewDriverRepository(db)
	walletRepo := postgres.NewWalletRepository(db)

	// Initialize services.
	notificationService := service.NewNotificationService()
	receiptService := service.NewReceiptService(notificationService)
	fareService := service.NewFareService(commodityRepo, ruleRepo, cacheStore)
	ledgerService := service.NewLedgerService(db)
	spendLimitService := service.NewSpendLimitService(accountRepo, tripRepo)
	pricingService := service.NewPricingService(commodityRepo, ruleRepo, cacheStore)
	accountService := service.NewAccountService(accountRepo, memberRepo)
	walletService := service.NewWalletService(driverRepo, walletRepo)
	tripService := service.NewTripService(
		tripRepo, memberRepo, accountRepo, driverRepo,
		fareService, spendLimitService, ledgerService, lockStore,
		notificationService, receiptService,
	)

	// Initialize handlers.
	fareHandler := handler.NewFareHandler(fareService)
	tripHandler := handler.NewTripHandler(tripService)
	accountHandler := handler.NewAccountHandler(accountService)
	driverHandler := handler.NewDriverHandler(walletService)
	pricingHandler := handler.NewPricingHandler(pricingService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		FareHandler:    fareHandler,
		TripHandler:    tripHandler,
		AccountHandler: accountHandler,
		DriverHandler:  driverHandler,
		PricingHandler: pricingHandler,
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
