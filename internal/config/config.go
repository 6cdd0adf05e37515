package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Ingestion pipelines authenticate intake requests with this key.
	IngestAPIKey string

	// Matching engine knobs
	DateWindowDays       int
	AmountBandPct        float64
	ProposalThreshold    float64
	AutoApproveThreshold float64
	CandidateBatchSize   int

	// Vendor alias feedback loop
	AliasReinforceStep float64
	AliasDecayStep     float64
	AliasStaleAfter    time.Duration

	// Background jobs
	GenerateInterval   time.Duration
	AliasDecayInterval time.Duration
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "expensematch"),
		DBPassword: getEnv("DB_PASSWORD", "expensematch"),
		DBName:     getEnv("DB_NAME", "expensematch"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		IngestAPIKey: getEnv("INGEST_API_KEY", ""),

		DateWindowDays:       getEnvInt("MATCH_DATE_WINDOW_DAYS", 7),
		AmountBandPct:        getEnvFloat("MATCH_AMOUNT_BAND_PCT", 0.20),
		ProposalThreshold:    getEnvFloat("MATCH_PROPOSAL_THRESHOLD", 50),
		AutoApproveThreshold: getEnvFloat("MATCH_AUTO_APPROVE_THRESHOLD", 85),
		CandidateBatchSize:   getEnvInt("MATCH_CANDIDATE_BATCH_SIZE", 100),

		AliasReinforceStep: getEnvFloat("ALIAS_REINFORCE_STEP", 0.1),
		AliasDecayStep:     getEnvFloat("ALIAS_DECAY_STEP", 0.15),
	}

	config.JWTExpirationDur = getEnvDuration("JWT_EXPIRES_IN", 24*time.Hour)
	config.AliasStaleAfter = getEnvDuration("ALIAS_STALE_AFTER", 90*24*time.Hour)
	config.GenerateInterval = getEnvDuration("MATCH_GENERATE_INTERVAL", 15*time.Minute)
	config.AliasDecayInterval = getEnvDuration("ALIAS_DECAY_INTERVAL", 24*time.Hour)

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, raw, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %g\n", key, raw, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return value
}
