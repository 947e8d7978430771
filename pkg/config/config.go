package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NATS     NATSConfig
	Risk     RiskConfig
	Tracing  TracingConfig
	Sentry   SentryConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	Environment  string
	ServiceName  string
	ReadTimeout  int
	WriteTimeout int
	CORSOrigins  string // Comma-separated list of allowed origins
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// NATSConfig holds NATS event bus configuration
type NATSConfig struct {
	URL     string
	Enabled bool
}

// RiskConfig holds the tunables of the risk scoring service
type RiskConfig struct {
	NeighborRadiusKm float64
	ListLimit        int
	BackfillPageSize int
	CacheEnabled     bool
	CacheTTLSeconds  int
	SpatialIndex     bool
}

// TracingConfig holds OpenTelemetry configuration
type TracingConfig struct {
	Enabled      bool
	OTLPEndpoint string
	SampleRatio  float64
}

// SentryConfig holds Sentry error reporting configuration
type SentryConfig struct {
	DSN string
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ServiceName:  serviceName,
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),
			CORSOrigins:  getEnv("CORS_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "scamwatch"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxConns:       getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:       getEnvAsInt("DB_MIN_CONNS", 5),
			MigrationsPath: getEnv("DB_MIGRATIONS_PATH", "file://migrations"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		NATS: NATSConfig{
			URL:     getEnv("NATS_URL", "nats://localhost:4222"),
			Enabled: getEnvAsBool("NATS_ENABLED", false),
		},
		Risk: RiskConfig{
			NeighborRadiusKm: getEnvAsFloat("RISK_NEIGHBOR_RADIUS_KM", 5),
			ListLimit:        getEnvAsInt("RISK_LIST_LIMIT", 1000),
			BackfillPageSize: getEnvAsInt("RISK_BACKFILL_PAGE_SIZE", 10000),
			CacheEnabled:     getEnvAsBool("RISK_CACHE_ENABLED", false),
			CacheTTLSeconds:  getEnvAsInt("RISK_CACHE_TTL_SECONDS", 300),
			SpatialIndex:     getEnvAsBool("RISK_SPATIAL_INDEX", false),
		},
		Tracing: TracingConfig{
			Enabled:      getEnvAsBool("TRACING_ENABLED", false),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			SampleRatio:  getEnvAsFloat("TRACING_SAMPLE_RATIO", 1.0),
		},
		Sentry: SentryConfig{
			DSN: getEnv("SENTRY_DSN", ""),
		},
	}

	if cfg.Risk.NeighborRadiusKm <= 0 {
		return nil, fmt.Errorf("RISK_NEIGHBOR_RADIUS_KM must be positive, got %v", cfg.Risk.NeighborRadiusKm)
	}
	if cfg.Risk.ListLimit <= 0 {
		return nil, fmt.Errorf("RISK_LIST_LIMIT must be positive, got %d", cfg.Risk.ListLimit)
	}
	if cfg.Risk.BackfillPageSize <= 0 {
		return nil, fmt.Errorf("RISK_BACKFILL_PAGE_SIZE must be positive, got %d", cfg.Risk.BackfillPageSize)
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// MigrationURL returns the golang-migrate database URL for the pgx/v5 driver
func (c *DatabaseConfig) MigrationURL() string {
	return fmt.Sprintf(
		"pgx5://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// CacheTTL returns the batch cache TTL as a duration
func (c *RiskConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}
