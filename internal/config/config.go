// Package config loads client configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config is the explicitly constructed client configuration passed into the
// orchestrator and its adapters at construction time.
type Config struct {
	Env           string `validate:"required"`
	Port          string `validate:"required,numeric"`
	PublicBaseURL string `validate:"required,url"`

	// BackendURL is the API base of the routing backend. Empty runs the
	// in-process stub backend.
	BackendURL     string        `validate:"omitempty,url"`
	BackendTimeout time.Duration `validate:"gt=0"`
	BackendRPS     float64       `validate:"gte=0"`

	NearbyRadius    float64 `validate:"gt=0"`
	NearbyLimit     int     `validate:"gt=0,lte=100"`
	SearchLimit     int     `validate:"gt=0,lte=100"`
	DefaultMapStyle string  `validate:"required"`

	LocationCache    string `validate:"oneof=memory sqlite postgres redis"`
	LocationCacheTTL time.Duration
	SqlitePath       string `validate:"required_if=LocationCache sqlite"`
	DatabaseURL      string `validate:"required_if=LocationCache postgres"`
	RedisURL         string `validate:"required_if=LocationCache redis"`

	ArtifactStore  string `validate:"oneof=memory minio"`
	MinIOEndpoint  string `validate:"required_if=ArtifactStore minio"`
	MinIOAccessKey string `validate:"required_if=ArtifactStore minio"`
	MinIOSecretKey string `validate:"required_if=ArtifactStore minio"`
	MinIOBucket    string `validate:"required_if=ArtifactStore minio"`
	MinIOUseSSL    bool
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds and validates a Config from the process environment only.
func FromEnv() (*Config, error) {
	port := Get("PORT", "8080")

	timeout, err := time.ParseDuration(Get("BACKEND_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("config: BACKEND_TIMEOUT: %w", err)
	}
	rps, err := getFloat("BACKEND_RPS", 20)
	if err != nil {
		return nil, err
	}
	radius, err := getFloat("NEARBY_RADIUS", 0.001)
	if err != nil {
		return nil, err
	}
	nearbyLimit, err := getInt("NEARBY_LIMIT", 10)
	if err != nil {
		return nil, err
	}
	searchLimit, err := getInt("SEARCH_LIMIT", 10)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := time.ParseDuration(Get("LOCATION_CACHE_TTL", "0s"))
	if err != nil {
		return nil, fmt.Errorf("config: LOCATION_CACHE_TTL: %w", err)
	}

	cfg := &Config{
		Env:              Get("APP_ENV", "development"),
		Port:             port,
		PublicBaseURL:    strings.TrimRight(Get("PUBLIC_BASE_URL", "http://localhost:"+port), "/"),
		BackendURL:       strings.TrimRight(os.Getenv("BACKEND_URL"), "/"),
		BackendTimeout:   timeout,
		BackendRPS:       rps,
		NearbyRadius:     radius,
		NearbyLimit:      nearbyLimit,
		SearchLimit:      searchLimit,
		DefaultMapStyle:  Get("DEFAULT_MAP_STYLE", "enhanced"),
		LocationCache:    Get("LOCATION_CACHE", "memory"),
		LocationCacheTTL: cacheTTL,
		SqlitePath:       Get("SQLITE_PATH", "data/locations.db"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		ArtifactStore:    Get("ARTIFACT_STORE", "memory"),
		MinIOEndpoint:    os.Getenv("MINIO_ENDPOINT"),
		MinIOAccessKey:   os.Getenv("MINIO_ACCESS_KEY"),
		MinIOSecretKey:   os.Getenv("MINIO_SECRET_KEY"),
		MinIOBucket:      Get("MINIO_BUCKET", "route-maps"),
		MinIOUseSSL:      strings.EqualFold(os.Getenv("MINIO_USE_SSL"), "true"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return v, nil
}

func getInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return v, nil
}
