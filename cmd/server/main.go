package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"farewatch-service/internal/domain/entity"
	domainRepo "farewatch-service/internal/domain/repository"
	"farewatch-service/internal/infrastructure/config"
	"farewatch-service/internal/infrastructure/oauth"
	"farewatch-service/internal/infrastructure/persistence"
	gmailNotifier "farewatch-service/internal/interface/gmail"
	"farewatch-service/internal/interface/repository"
	"farewatch-service/internal/usecase"
	"farewatch-service/pkg/logger"
	"farewatch-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Create logger
	log := logger.NewLogger()
	log.Info("Starting Farewatch Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	routes, err := config.LoadRoutes(cfg.RoutesFile)
	if err != nil {
		log.Fatal("Failed to load routes", "file", cfg.RoutesFile, "error", err)
	}
	if len(routes) == 0 {
		log.Fatal("No routes configured", "file", cfg.RoutesFile)
	}
	log.Info("Routes loaded", "file", cfg.RoutesFile, "count", len(routes))

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up the price history store. A store that cannot be loaded is
	// fatal: evaluating against an empty baseline would flood notifiers.
	db, err := persistence.NewSQLiteDB(cfg.HistoryDBPath)
	if err != nil {
		log.Fatal("Failed to open history database", "path", cfg.HistoryDBPath, "error", err)
	}
	defer db.Close()

	historyRepo, err := repository.NewSQLitePriceHistoryRepository(ctx, db, cfg.HistoryDBPath, log)
	if err != nil {
		log.Fatal("Failed to load price history", "path", cfg.HistoryDBPath, "error", err)
	}

	checkpointRepo, err := repository.NewSQLiteCheckpointRepository(ctx, db)
	if err != nil {
		log.Fatal("Failed to initialize checkpoint store", "error", err)
	}

	// Airport reference data is optional enrichment
	var airportRepo domainRepo.AirportRepository
	if cfg.PostgresURI != "" {
		gormDB, err := gorm.Open(postgres.Open(cfg.PostgresURI), &gorm.Config{})
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", "error", err)
		}
		airportRepo = repository.NewGormAirportRepository(gormDB)
		log.Info("Airport reference data enabled")
	}

	m := metrics.NewMetrics("farewatch")

	// Assemble notifiers. The service runs detect-and-log-only when
	// neither the archive nor the mailer is configured.
	var notifiers []domainRepo.DealNotifier
	var mongoClient *mongo.Client

	if cfg.MongoURI != "" {
		log.Info("Connecting to MongoDB")
		client, mongoDB, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB", "error", err)
		}
		mongoClient = client
		notifiers = append(notifiers, usecase.NewArchiveNotifier(repository.NewMongoDealRecordRepository(mongoDB)))
		log.Info("Deal archive enabled")
	}

	if cfg.GmailClientID != "" && cfg.GmailClientSecret != "" && cfg.GmailRefreshToken != "" && cfg.DealRecipient != "" {
		gmailOAuth := oauth.NewGmailOAuth(cfg.GmailClientID, cfg.GmailClientSecret, cfg.GmailRefreshToken, log)
		mailer, err := gmailNotifier.NewDealMailer(ctx, gmailOAuth.GetTokenSource(ctx), airportRepo, log, cfg.DealSender, cfg.DealRecipient)
		if err != nil {
			log.Fatal("Failed to create Gmail mailer", "error", err)
		}
		notifiers = append(notifiers, mailer)
		log.Info("Gmail notifier enabled", "recipient", cfg.DealRecipient)
	}

	if len(notifiers) == 0 {
		log.Warn("No notifiers configured, deals will only be logged")
	}

	// Assemble the pipeline
	searchRepo := repository.NewScraperSearchRepository(cfg.ScraperServiceURL, cfg.ScraperToken, log)
	normalizer := usecase.NewOfferNormalizer(log)
	evaluator := usecase.NewDealEvaluator(historyRepo, log, cfg.DiscountThresholdPct, cfg.MinDurationHours, cfg.PremiumOnly)
	dispatcher := usecase.NewNotifierDispatch(log, m, notifiers...)

	var originFilter func(entity.Route) bool
	if len(cfg.OriginFilter) > 0 {
		allowed := cfg.OriginFilter
		originFilter = func(route entity.Route) bool {
			return slices.Contains(allowed, route.Origin)
		}
		log.Info("Origin filter active", "origins", allowed)
	}

	matrix := usecase.NewMatrixGenerator(routes, usecase.MatrixConfig{
		MinStayDays:        cfg.MinStayDays,
		MaxStayDays:        cfg.MaxStayDays,
		StayInterval:       cfg.StayInterval,
		StartDays:          cfg.StartDays,
		MaxDays:            cfg.MaxDays,
		CheckInterval:      cfg.CheckInterval,
		RoundTrip:          cfg.RoundTrip,
		MinDurationMinutes: int(cfg.MinDurationHours * 60),
		PremiumOnly:        cfg.PremiumOnly,
	}, originFilter)

	scheduler := usecase.NewBatchScheduler(matrix, searchRepo, normalizer, evaluator, dispatcher, checkpointRepo, m, log, usecase.SchedulerConfig{
		BatchSize:              cfg.BatchSize,
		BatchPause:             cfg.BatchPause,
		SearchPause:            cfg.SearchPause,
		Interval:               cfg.Interval,
		MaxConsecutiveFailures: cfg.MaxConsecutiveFailures,
	})

	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		scheduler.Run(ctx)
	}()

	// Set up HTTP server for metrics
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown: stop scheduling, let the in-flight task finish
	cancel()
	<-schedulerDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	if mongoClient != nil {
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			log.Error("MongoDB disconnect error", "error", err)
		}
	}

	log.Info("Farewatch Service stopped")
}
