package main

import (
	"context"
	"time"

	"github.com/BrooksFlannery/who-all2-sub001/internal/cluster"
	matchconfig "github.com/BrooksFlannery/who-all2-sub001/internal/config"
	"github.com/BrooksFlannery/who-all2-sub001/internal/interests"
	"github.com/BrooksFlannery/who-all2-sub001/internal/pseudo"
	"github.com/BrooksFlannery/who-all2-sub001/internal/recommend"
	"github.com/BrooksFlannery/who-all2-sub001/internal/store"
	"github.com/BrooksFlannery/who-all2-sub001/pkg/config"
	"github.com/BrooksFlannery/who-all2-sub001/pkg/database"
	"github.com/BrooksFlannery/who-all2-sub001/pkg/llm"
	"github.com/BrooksFlannery/who-all2-sub001/pkg/logging"
	"github.com/BrooksFlannery/who-all2-sub001/pkg/monitoring"
	"github.com/BrooksFlannery/who-all2-sub001/pkg/server"
	"github.com/BrooksFlannery/who-all2-sub001/pkg/version"
)

func main() {
	// Setup logger
	logger := logging.NewLoggerWithService("matchmaker")

	// Load environment variables
	config.LoadEnv(logger)

	logger.Info("Starting Matchmaker (event recommendation and generation API)")

	cfg := matchconfig.LoadConfig()

	// Connect to database
	dbConfig := database.DefaultConfig()
	dbConfig.URL = cfg.DatabaseURL
	db := database.MustConnect(dbConfig, logger)
	defer func() { _ = db.Close() }()

	// Setup monitoring
	healthChecker := monitoring.NewHealthChecker("matchmaker", version.Version)
	metricsCollector := monitoring.NewMetricsCollector("matchmaker", version.Version, version.GitCommit)

	healthChecker.AddCheck("database", monitoring.DatabaseHealthCheck(db))
	healthChecker.AddCheck("config", monitoring.ConfigurationHealthCheck(map[string]string{
		"DATABASE_URL": cfg.DatabaseURL,
	}))

	// Stores
	userStore := store.NewUserStore(db)
	eventStore := store.NewEventStore(db)
	signalStore := store.NewSignalStore(db)

	// LLM providers and embedding client
	genProvider, err := llm.NewProvider(llm.Config{
		Provider:    cfg.LLMProvider,
		Model:       cfg.LLMModel,
		APIKey:      cfg.LLMAPIKey,
		APIURL:      cfg.LLMAPIURL,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.GenTemperature,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to create generation provider")
	}
	venueProvider, err := llm.NewProvider(llm.Config{
		Provider:    cfg.LLMProvider,
		Model:       cfg.LLMModel,
		APIKey:      cfg.LLMAPIKey,
		APIURL:      cfg.LLMAPIURL,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.VenueTemperature,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to create venue inference provider")
	}
	embedder, err := llm.NewEmbeddingClient(llm.Config{
		Provider: cfg.EmbeddingProvider,
		Model:    cfg.EmbeddingModel,
		APIKey:   cfg.EmbeddingAPIKey,
		APIURL:   cfg.EmbeddingAPIURL,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to create embedding client")
	}

	if dims, err := llm.ProbeEmbeddingDimensions(context.Background(), embedder); err != nil {
		logger.WithError(err).Warn("Could not probe embedding dimensions")
	} else if dims != cfg.EmbeddingDimensions {
		logger.WithFields(logging.Fields{
			"configured": cfg.EmbeddingDimensions,
			"actual":     dims,
		}).Warn("Embedding dimensions differ from configuration")
	}

	// Recommendation engine
	engine := recommend.NewEngine(userStore, eventStore, logger)

	// Clustering and pseudo-event generation
	clusterer := cluster.NewClusterer(cluster.Config{
		Epsilon:           cfg.ClusterEpsilon,
		MinSamples:        cfg.ClusterMinSamples,
		MinClusterSize:    cfg.MinClusterSize,
		NoiseAsSingletons: cfg.NoiseAsSingletons,
		Logger:            logger,
	})
	generator, err := pseudo.NewGenerator(pseudo.Config{
		Users:               userStore,
		Clusterer:           clusterer,
		Embedder:            embedder,
		Provider:            genProvider,
		VenueProvider:       venueProvider,
		Logger:              logger,
		CandidateCount:      cfg.CandidateCount,
		RepresentativeCount: cfg.RepresentativeCount,
		Concurrency:         cfg.GenerationWorkers,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to create pseudo-event generator")
	}

	// Router and routes
	router := server.SetupServiceRouter(logger, "matchmaker", healthChecker, metricsCollector)

	recommendHandler := &recommend.Handler{Engine: engine, Logger: logger}
	recommendHandler.RegisterRoutes(router)

	pseudoHandler := &pseudo.Handler{Generator: generator, Logger: logger}
	pseudoHandler.RegisterRoutes(router)

	updater := interests.NewUpdater(signalStore, userStore, embedder, logger)
	interestsHandler := &interests.Handler{Updater: updater, Logger: logger}
	interestsHandler.RegisterRoutes(router)

	// Optional periodic generation batch
	if cfg.GenerationInterval > 0 {
		go runGenerationLoop(context.Background(), generator, cfg.GenerationInterval, logger)
	}

	serverConfig := server.DefaultConfig("matchmaker", cfg.Port)
	if err := server.Start(serverConfig, router, logger); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}
}

// runGenerationLoop triggers a generation batch on a fixed interval.
func runGenerationLoop(ctx context.Context, generator *pseudo.Generator, interval time.Duration, logger logging.Logger) {
	logger.WithField("interval", interval).Info("Starting periodic pseudo-event generation")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result := generator.GenerateAll(ctx)
			if !result.Success {
				logger.WithFields(logging.Fields{
					"errors": result.Errors,
				}).Warn("Periodic generation batch had failures")
			}
		}
	}
}
