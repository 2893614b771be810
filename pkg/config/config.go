package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultDatabaseURL = "todos.db"
	DefaultPort        = "8080"
	DefaultMetricsPort = "9091"
	DefaultServiceName = "todoapi"
)

type AppConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	GinMode        string
	Port           string

	DatabaseURL   string
	RunMigrations bool
	StrictWrites  bool

	RateLimitEnabled bool
	RateLimit        RateLimitConfig

	EnforceHTTPS bool

	MetricsPort  string
	OTLPEndpoint string
	LokiURL      string
	LogLevel     string
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

func GetDefaultConfig() *AppConfig {
	return &AppConfig{
		ServiceName:      DefaultServiceName,
		ServiceVersion:   "1.0.0",
		Environment:      "development",
		Port:             DefaultPort,
		DatabaseURL:      DefaultDatabaseURL,
		RunMigrations:    true,
		StrictWrites:     false,
		RateLimitEnabled: true,
		RateLimit: RateLimitConfig{
			Requests: 600,
			Window:   time.Minute,
		},
		EnforceHTTPS: false,
		MetricsPort:  DefaultMetricsPort,
		LogLevel:     "info",
	}
}

// Load reads an optional .env file from the working directory and overlays
// the environment on top of the defaults. Variables already set in the
// process environment win over the file.
func Load(files ...string) (*AppConfig, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}

	return FromEnv()
}

func FromEnv() (*AppConfig, error) {
	cfg := GetDefaultConfig()

	cfg.ServiceName = getEnv("SERVICE_NAME", cfg.ServiceName)
	cfg.ServiceVersion = getEnv("SERVICE_VERSION", cfg.ServiceVersion)
	cfg.Environment = getEnv("APP_ENV", cfg.Environment)
	cfg.GinMode = os.Getenv("GIN_MODE")
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.OTLPEndpoint = os.Getenv("OTLP_ENDPOINT")
	cfg.LokiURL = strings.TrimRight(os.Getenv("LOKI_URL"), "/")
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	if value, ok := os.LookupEnv("METRICS_PORT"); ok {
		cfg.MetricsPort = value
	}

	var err error

	if cfg.RunMigrations, err = getBool("RUN_MIGRATIONS", cfg.RunMigrations); err != nil {
		return nil, err
	}

	if cfg.StrictWrites, err = getBool("TODO_STRICT_WRITES", cfg.StrictWrites); err != nil {
		return nil, err
	}

	if cfg.RateLimitEnabled, err = getBool("RATE_LIMIT_ENABLED", cfg.RateLimitEnabled); err != nil {
		return nil, err
	}

	if cfg.EnforceHTTPS, err = getBool("ENFORCE_HTTPS", cfg.GinMode == "release"); err != nil {
		return nil, err
	}

	if value := os.Getenv("RATE_LIMIT_REQUESTS"); value != "" {
		requests, err := strconv.Atoi(value)

		if err != nil || requests <= 0 {
			return nil, fmt.Errorf("RATE_LIMIT_REQUESTS must be a positive integer, got %q", value)
		}

		cfg.RateLimit.Requests = requests
	}

	if value := os.Getenv("RATE_LIMIT_WINDOW"); value != "" {
		window, err := time.ParseDuration(value)

		if err != nil || window <= 0 {
			return nil, fmt.Errorf("RATE_LIMIT_WINDOW must be a positive duration, got %q", value)
		}

		cfg.RateLimit.Window = window
	}

	return cfg, nil
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production" || c.GinMode == "release"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)

	if value == "" {
		return fallback, nil
	}

	parsed, err := strconv.ParseBool(value)

	if err != nil {
		return fallback, fmt.Errorf("%s must be a boolean, got %q", key, value)
	}

	return parsed, nil
}
