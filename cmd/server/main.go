package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/sahmly/engine/internal/adapter/http"
	"github.com/sahmly/engine/internal/adapter/http/handler"
	"github.com/sahmly/engine/internal/adapter/http/middleware"
	postgresRepo "github.com/sahmly/engine/internal/adapter/repository/postgres"
	redisRepo "github.com/sahmly/engine/internal/adapter/repository/redis"
	"github.com/sahmly/engine/internal/domain"
	"github.com/sahmly/engine/internal/infrastructure/config"
	"github.com/sahmly/engine/internal/infrastructure/eventpublisher"
	"github.com/sahmly/engine/internal/infrastructure/logger"
	"github.com/sahmly/engine/internal/infrastructure/logging"
	"github.com/sahmly/engine/internal/infrastructure/metrics"
	"github.com/sahmly/engine/internal/infrastructure/postgres"
	"github.com/sahmly/engine/internal/infrastructure/profile"
	"github.com/sahmly/engine/internal/infrastructure/redis"
	"github.com/sahmly/engine/internal/infrastructure/worker"
	"github.com/sahmly/engine/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup loggers. Request handling and usecases log through zerolog;
	// background workers take an slog.Logger.
	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	appLog := logging.New(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
	slog.SetDefault(appLog.Logger)

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	propertyRepo := postgresRepo.NewPropertyRepository(pool)
	investmentRepo := postgresRepo.NewInvestmentRepository(pool)
	walletRepo := postgresRepo.NewWalletRepository(pool)
	bankAccountRepo := postgresRepo.NewBankAccountRepository(pool)
	distributionRepo := postgresRepo.NewDistributionRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	retrier := postgresRepo.NewRetrier()
	idGen := postgresRepo.NewULIDGenerator()
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	cache := redisRepo.NewCache(redisClient)

	// Shared services
	m := metrics.New()
	eligibility := profile.NewClient(cfg.ProfileServiceURL, cfg.ProfileServiceTimeout)
	policy := domain.FeePolicy{
		PlatformFeeBps:    cfg.PlatformFeeBps,
		ProcessingFeeMode: domain.ProcessingFeeMode(cfg.ProcessingFeeMode),
		ProcessingFeeBps:  cfg.ProcessingFeeBps,
		ProcessingFlatFee: cfg.ProcessingFlatFee,
	}

	// Initialize use cases
	quoteUC := usecase.NewQuoteUseCase(propertyRepo, cache, policy)
	ledgerUC := usecase.NewLedgerUseCase(txManager, walletRepo, outboxRepo, auditRepo, idGen, m)
	inventoryUC := usecase.NewInventoryUseCase(txManager, propertyRepo, outboxRepo, idGen, m)
	investmentUC := usecase.NewInvestmentUseCase(usecase.InvestmentUseCaseConfig{
		TxManager:         txManager,
		Retrier:           retrier,
		Eligibility:       eligibility,
		PropertyRepo:      propertyRepo,
		InvestmentRepo:    investmentRepo,
		WalletRepo:        walletRepo,
		Inventory:         inventoryUC,
		Ledger:            ledgerUC,
		OutboxRepo:        outboxRepo,
		AuditRepo:         auditRepo,
		IDGen:             idGen,
		Policy:            policy,
		ReservationWindow: cfg.ReservationWindow,
		Logger:            log.Logger,
		Metrics:           m,
	})
	intakeUC := usecase.NewIntakeUseCase(ledgerUC, walletRepo, bankAccountRepo, auditRepo, idGen, m)
	distributionUC := usecase.NewDistributionUseCase(txManager, propertyRepo, investmentRepo, walletRepo, distributionRepo, ledgerUC, outboxRepo, auditRepo, idGen, m)
	reconciliationUC := usecase.NewReconciliationUseCase(walletRepo, auditRepo, idGen, log.Logger, m)

	// Initialize handlers
	propertyHandler := handler.NewPropertyHandler(propertyRepo, quoteUC)
	investmentHandler := handler.NewInvestmentHandler(investmentUC)
	walletHandler := handler.NewWalletHandler(ledgerUC, intakeUC)
	adminHandler := handler.NewAdminHandler(ledgerUC, distributionUC, reconciliationUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		PropertyHandler:   propertyHandler,
		InvestmentHandler: investmentHandler,
		WalletHandler:     walletHandler,
		AdminHandler:      adminHandler,
		HealthHandler:     healthHandler,
		IdempotencyStore:  idempotencyStore,
		IdempotencyTTL:    cfg.IdempotencyTTL,
		RateLimiter:       rateLimiter,
		RequestLogger:     middleware.NewLoggingMiddleware(log.Logger),
	})

	// Background workers
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				rateLimiter.Reset()
			}
		}
	}()

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewRedisStreamPublisher(redisClient, cfg.EventStream),
		Logger:     appLog.Logger,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
	})
	go func() {
		if err := publisher.Start(workerCtx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	sweeper := worker.NewSweeper(worker.Config{
		Sweep:    investmentUC,
		Logger:   appLog.Logger,
		Interval: cfg.SweepInterval,
	})
	go func() {
		if err := sweeper.Start(workerCtx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("expiry sweeper stopped")
		}
	}()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopWorkers()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
