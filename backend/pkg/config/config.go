package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	apperrors "ad-rewriter/backend/pkg/errors"
)

// Config holds all application configuration
type Config struct {
	// App
	Port string
	Env  string

	// Neo4j
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	// Session pool
	PoolMaxSessions    int
	PoolAcquireTimeout time.Duration

	// Strategy cache
	CacheCapacity int

	// Style/creative-type score combination. Each present source
	// contributes its weight; absent sources contribute zero.
	PlatformWeight float64
	AudienceWeight float64
	IntentWeight   float64

	// Rewrite model
	LLMBaseURL string
	LLMAPIKey  string
	ModelID    string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		Neo4jURI:           getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:          getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:      getEnv("NEO4J_PASSWORD", "password"),
		PoolMaxSessions:    getEnvInt("POOL_MAX_SESSIONS", 50),
		PoolAcquireTimeout: time.Duration(getEnvInt("POOL_ACQUIRE_TIMEOUT_SECONDS", 120)) * time.Second,
		CacheCapacity:      getEnvInt("STRATEGY_CACHE_CAPACITY", 128),
		PlatformWeight:     getEnvFloat("PLATFORM_STYLE_WEIGHT", 0.4),
		AudienceWeight:     getEnvFloat("AUDIENCE_STYLE_WEIGHT", 0.3),
		IntentWeight:       getEnvFloat("INTENT_STYLE_WEIGHT", 0.3),
		LLMBaseURL:         getEnv("LLM_BASE_URL", "http://localhost:4000"),
		LLMAPIKey:          getEnv("LLM_API_KEY", ""),
		ModelID:            getEnv("MODEL_ID", "gpt-4o-mini"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.Neo4jURI == "" {
		return apperrors.NewConfigMissingRequired("NEO4J_URI")
	}
	if c.Neo4jUser == "" {
		return apperrors.NewConfigMissingRequired("NEO4J_USER")
	}
	if c.Neo4jPassword == "" {
		return apperrors.NewConfigMissingRequired("NEO4J_PASSWORD")
	}
	if c.LLMBaseURL == "" {
		return apperrors.NewConfigMissingRequired("LLM_BASE_URL")
	}
	if c.ModelID == "" {
		return apperrors.NewConfigMissingRequired("MODEL_ID")
	}
	if c.PoolMaxSessions < 1 {
		return fmt.Errorf("POOL_MAX_SESSIONS must be positive")
	}
	if c.CacheCapacity < 1 {
		return fmt.Errorf("STRATEGY_CACHE_CAPACITY must be positive")
	}
	// LLM API key is optional when pointed at a local proxy
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var result float64
		if _, err := fmt.Sscanf(value, "%f", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
