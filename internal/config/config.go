package config

import (
	"time"

	"github.com/BrooksFlannery/who-all2-sub001/pkg/config"
)

// Config stores environment configuration for the matchmaker service.
type Config struct {
	Port                string
	DatabaseURL         string
	LLMProvider         string
	LLMModel            string
	LLMAPIKey           string
	LLMAPIURL           string
	LLMMaxTokens        int
	GenTemperature      float64
	VenueTemperature    float64
	EmbeddingProvider   string
	EmbeddingModel      string
	EmbeddingAPIKey     string
	EmbeddingAPIURL     string
	EmbeddingDimensions int
	ClusterEpsilon      float64
	ClusterMinSamples   int
	MinClusterSize      int
	NoiseAsSingletons   bool
	CandidateCount      int
	RepresentativeCount int
	GenerationInterval  time.Duration
	GenerationWorkers   int
	RecommendationK     int
}

// LoadConfig loads the matchmaker configuration from environment variables.
func LoadConfig() Config {
	return Config{
		Port:                config.GetEnv("PORT", "18030"),
		DatabaseURL:         config.RequireEnv("DATABASE_URL"),
		LLMProvider:         config.GetEnv("LLM_PROVIDER", "openai"),
		LLMModel:            config.GetEnv("LLM_MODEL", ""),
		LLMAPIKey:           config.GetEnv("LLM_API_KEY", ""),
		LLMAPIURL:           config.GetEnv("LLM_API_URL", ""),
		LLMMaxTokens:        config.GetEnvInt("LLM_MAX_TOKENS", 0),
		GenTemperature:      config.GetEnvFloat("GENERATION_TEMPERATURE", 0.8),
		VenueTemperature:    config.GetEnvFloat("VENUE_TEMPERATURE", 0.2),
		EmbeddingProvider:   config.GetEnv("EMBEDDING_PROVIDER", config.GetEnv("LLM_PROVIDER", "openai")),
		EmbeddingModel:      config.GetEnv("EMBEDDING_MODEL", config.GetEnv("LLM_MODEL", "")),
		EmbeddingAPIKey:     config.GetEnv("EMBEDDING_API_KEY", config.GetEnv("LLM_API_KEY", "")),
		EmbeddingAPIURL:     config.GetEnv("EMBEDDING_API_URL", config.GetEnv("LLM_API_URL", "")),
		EmbeddingDimensions: config.GetEnvInt("EMBEDDING_DIMENSIONS", 1536),
		ClusterEpsilon:      config.GetEnvFloat("CLUSTER_EPSILON", 0.35),
		ClusterMinSamples:   config.GetEnvInt("CLUSTER_MIN_SAMPLES", 2),
		MinClusterSize:      config.GetEnvInt("CLUSTER_MIN_SIZE", 2),
		NoiseAsSingletons:   config.GetEnvBool("CLUSTER_NOISE_AS_SINGLETONS", false),
		CandidateCount:      config.GetEnvInt("CANDIDATE_COUNT", 5),
		RepresentativeCount: config.GetEnvInt("REPRESENTATIVE_COUNT", 2),
		GenerationInterval:  config.GetEnvDuration("GENERATION_INTERVAL", 0),
		GenerationWorkers:   config.GetEnvInt("GENERATION_WORKERS", 1),
		RecommendationK:     config.GetEnvInt("RECOMMENDATION_K", 3),
	}
}
