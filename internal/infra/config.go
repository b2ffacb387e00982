package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	RedisAddr   string
	JWTSecret   string

	StoragePath    string
	StorageBaseURL string
	GeoIPDBPath    string

	GeminiAPIKey      string
	GeminiBaseURL     string
	ByteDanceAPIKey   string
	ByteDanceEndpoint string
	FalAPIKey         string
	FalBaseURL        string
	ProviderRPM       int

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int

	WorkerConcurrency  int
	JobPollInterval    time.Duration
	StuckJobMaxAge     time.Duration
	SignupGrantCredits int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		JWTSecret:   os.Getenv("JWT_SECRET"),

		StoragePath:    getEnv("STORAGE_PATH", "./storage"),
		StorageBaseURL: getEnv("STORAGE_BASE_URL", "http://localhost:8080/static"),
		GeoIPDBPath:    os.Getenv("GEOIP_DB_PATH"),

		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiBaseURL:     getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		ByteDanceAPIKey:   os.Getenv("BYTEDANCE_API_KEY"),
		ByteDanceEndpoint: os.Getenv("BYTEDANCE_ENDPOINT"),
		FalAPIKey:         os.Getenv("FAL_KEY"),
		FalBaseURL:        os.Getenv("FAL_BASE_URL"),
		ProviderRPM:       getEnvInt("PROVIDER_REQUESTS_PER_MINUTE", 30),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),

		WorkerConcurrency:  getEnvInt("WORKER_CONCURRENCY", 4),
		JobPollInterval:    time.Second * time.Duration(getEnvInt("JOB_POLL_INTERVAL_SECONDS", 2)),
		StuckJobMaxAge:     time.Minute * time.Duration(getEnvInt("STUCK_JOB_MAX_AGE_MINUTES", 15)),
		SignupGrantCredits: getEnvInt("SIGNUP_GRANT_CREDITS", 25),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
