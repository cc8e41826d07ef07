// Package config provides application configuration management.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds all application configuration.
type Config struct {
	App           AppConfig
	HTTP          HTTPConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	MatchRPC      MatchRPCConfig
	Matching      MatchingConfig
	Features      *FeatureFlags
	Observability ObservabilityConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string
	Environment Environment
	Debug       bool
	Version     string

	// Timezone for displaying dates (e.g., "Asia/Almaty")
	Timezone string
	Location *time.Location

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration
}

// HTTPConfig holds REST API server settings.
type HTTPConfig struct {
	Host string
	Port int

	// Timeouts
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// RateLimitPerMinute limits requests per minute per IP (0 = disabled).
	RateLimitPerMinute int
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// Query timeout
	QueryTimeout time.Duration

	// Enable query logging (development only)
	LogQueries bool
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	URL      string
	Host     string
	Port     int
	Password string
	DB       int

	// Connection pool
	PoolSize     int
	MinIdleConns int

	// Timeouts
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Disable Redis (fallback to in-memory)
	Disabled bool
}

// MatchRPCConfig holds settings for the remote match scoring backend.
// When disabled, candidates are scored and ranked in-process.
type MatchRPCConfig struct {
	// Enabled switches ranking to the remote backend.
	Enabled bool

	BaseURL string
	APIKey  string

	// Request settings
	RequestTimeout time.Duration

	// Retry settings
	MaxRetries     int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration

	// Circuit breaker settings
	CircuitBreakerThreshold   int           // failures before opening
	CircuitBreakerTimeout     time.Duration // time before half-open
	CircuitBreakerHalfOpenMax int           // max requests in half-open
}

// MatchingConfig holds scoring and ranking defaults.
// Per-request query parameters override these.
type MatchingConfig struct {
	// Component weights for the compatibility score.
	SkillWeight float64
	RoleWeight  float64

	// DefaultThreshold is the minimum score (0-100) for a candidate
	// to appear in results when the request does not set one.
	DefaultThreshold float64

	// DefaultLimit caps the result list size (0 = unlimited).
	DefaultLimit int

	// CacheTTL is how long ranked match lists stay cached.
	CacheTTL time.Duration
}

// ObservabilityConfig holds logging and metrics settings.
type ObservabilityConfig struct {
	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text

	// Metrics (future: Prometheus)
	MetricsEnabled bool
	MetricsPort    int

	// Tracing (future: OpenTelemetry)
	TracingEnabled  bool
	TracingEndpoint string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.App = loadAppConfig()
	cfg.HTTP = loadHTTPConfig()

	var err error
	cfg.Database, err = loadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("database config: %w", err)
	}

	cfg.Redis = loadRedisConfig()
	cfg.MatchRPC = loadMatchRPCConfig()
	cfg.Matching = loadMatchingConfig()
	cfg.Features = LoadFeatureFlags()
	cfg.Observability = loadObservabilityConfig()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func loadAppConfig() AppConfig {
	env := Environment(getEnv("APP_ENV", "development"))
	timezone := getEnv("APP_TIMEZONE", "Asia/Almaty")

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}

	return AppConfig{
		Name:            getEnv("APP_NAME", "cybermatch-hub"),
		Environment:     env,
		Debug:           env == EnvDevelopment || getEnvBool("APP_DEBUG", false),
		Version:         getEnv("APP_VERSION", "0.1.0"),
		Timezone:        timezone,
		Location:        loc,
		ShutdownTimeout: getEnvDuration("APP_SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

func loadHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Host:               getEnv("HTTP_HOST", "0.0.0.0"),
		Port:               getEnvInt("HTTP_PORT", 8080),
		ReadTimeout:        getEnvDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:       getEnvDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:        getEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		RateLimitPerMinute: getEnvInt("HTTP_RATE_LIMIT_PER_MINUTE", 120),
	}
}

func loadDatabaseConfig() (DatabaseConfig, error) {
	url := getEnv("DATABASE_URL", "")
	if url == "" {
		// Try to build from individual components
		host := getEnv("DB_HOST", "")
		port := getEnv("DB_PORT", "5432")
		user := getEnv("DB_USER", "")
		pass := getEnv("DB_PASSWORD", "")
		name := getEnv("DB_NAME", "postgres")
		sslmode := getEnv("DB_SSLMODE", "require")

		if host != "" && user != "" {
			url = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
				user, pass, host, port, name, sslmode)
		}
	}

	return DatabaseConfig{
		URL:             url,
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 1*time.Minute),
		QueryTimeout:    getEnvDuration("DB_QUERY_TIMEOUT", 30*time.Second),
		LogQueries:      getEnvBool("DB_LOG_QUERIES", false),
	}, nil
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		URL:          getEnv("REDIS_URL", ""),
		Host:         getEnv("REDIS_HOST", "localhost"),
		Port:         getEnvInt("REDIS_PORT", 6379),
		Password:     getEnv("REDIS_PASSWORD", ""),
		DB:           getEnvInt("REDIS_DB", 0),
		PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
		MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
		DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		Disabled:     getEnvBool("REDIS_DISABLED", false),
	}
}

func loadMatchRPCConfig() MatchRPCConfig {
	return MatchRPCConfig{
		Enabled:                   getEnvBool("MATCH_RPC_ENABLED", false),
		BaseURL:                   getEnv("MATCH_RPC_BASE_URL", ""),
		APIKey:                    getEnv("MATCH_RPC_API_KEY", ""),
		RequestTimeout:            getEnvDuration("MATCH_RPC_REQUEST_TIMEOUT", 10*time.Second),
		MaxRetries:                getEnvInt("MATCH_RPC_MAX_RETRIES", 3),
		RetryBaseDelay:            getEnvDuration("MATCH_RPC_RETRY_BASE_DELAY", 200*time.Millisecond),
		RetryMaxDelay:             getEnvDuration("MATCH_RPC_RETRY_MAX_DELAY", 5*time.Second),
		CircuitBreakerThreshold:   getEnvInt("MATCH_RPC_CB_THRESHOLD", 3),
		CircuitBreakerTimeout:     getEnvDuration("MATCH_RPC_CB_TIMEOUT", 60*time.Second),
		CircuitBreakerHalfOpenMax: getEnvInt("MATCH_RPC_CB_HALF_OPEN_MAX", 1),
	}
}

func loadMatchingConfig() MatchingConfig {
	return MatchingConfig{
		SkillWeight:      getEnvFloat("MATCHING_SKILL_WEIGHT", 0.7),
		RoleWeight:       getEnvFloat("MATCHING_ROLE_WEIGHT", 0.3),
		DefaultThreshold: getEnvFloat("MATCHING_DEFAULT_THRESHOLD", 50.0),
		DefaultLimit:     getEnvInt("MATCHING_DEFAULT_LIMIT", 0),
		CacheTTL:         getEnvDuration("MATCHING_CACHE_TTL", 5*time.Minute),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		MetricsEnabled:  getEnvBool("METRICS_ENABLED", false),
		MetricsPort:     getEnvInt("METRICS_PORT", 9090),
		TracingEnabled:  getEnvBool("TRACING_ENABLED", false),
		TracingEndpoint: getEnv("TRACING_ENDPOINT", ""),
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []string

	// Database URL is required in production
	if c.App.Environment == EnvProduction {
		if c.Database.URL == "" {
			errs = append(errs, "DATABASE_URL is required in production")
		}
	}

	if c.MatchRPC.Enabled && c.MatchRPC.BaseURL == "" {
		errs = append(errs, "MATCH_RPC_BASE_URL is required when MATCH_RPC_ENABLED is set")
	}

	// Validate ranges
	if c.Matching.DefaultThreshold < 0 || c.Matching.DefaultThreshold > 100 {
		errs = append(errs, "MATCHING_DEFAULT_THRESHOLD must be 0-100")
	}

	if c.Matching.SkillWeight < 0 || c.Matching.RoleWeight < 0 {
		errs = append(errs, "matching weights must be non-negative")
	}

	if c.Matching.SkillWeight+c.Matching.RoleWeight == 0 {
		errs = append(errs, "matching weights must not both be zero")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

// --- Helper functions for environment variable parsing ---

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvFloat(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
