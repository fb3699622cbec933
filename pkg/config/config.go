package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/platinummonkey/apicheck/pkg/observability"
	"github.com/platinummonkey/apicheck/pkg/storage"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Storage configuration
	Storage storage.Config

	// Observability configuration
	Observability ObservabilityConfig

	// Check configuration
	Check CheckConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// MaxBodyBytes caps the size of a submitted snapshot pair.
	MaxBodyBytes int64
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel  observability.LogLevel
	LogFormat observability.LogFormat

	// Metrics
	MetricsEnabled bool

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool // Use insecure gRPC connection
	OTelSampleRatio    float64
}

// OTel returns the tracing bootstrap settings.
func (o ObservabilityConfig) OTel() observability.OTelConfig {
	return observability.OTelConfig{
		Enabled:        o.OTelEnabled,
		Endpoint:       o.OTelEndpoint,
		ServiceName:    o.OTelServiceName,
		ServiceVersion: o.OTelServiceVersion,
		Insecure:       o.OTelInsecure,
		SampleRatio:    o.OTelSampleRatio,
	}
}

// CheckConfig holds defaults for compatibility runs. Command-line flags
// override them.
type CheckConfig struct {
	PolicyFile   string
	BaselineFile string
	Hide         []string
	Werror       bool

	// MaxParallel bounds concurrent module checks in one run.
	MaxParallel int

	// Parsed-model cache
	CacheSize int
	CacheTTL  time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Storage:       loadStorageConfig(),
		Observability: loadObservabilityConfig(),
		Check:         loadCheckConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadServerConfig loads server configuration from environment
func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("APICHECK_HOST", "0.0.0.0"),
		Port:            getEnv("APICHECK_PORT", "8080"),
		ReadTimeout:     getEnvDuration("APICHECK_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("APICHECK_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("APICHECK_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("APICHECK_SHUTDOWN_TIMEOUT", 30*time.Second),
		MaxBodyBytes:    getEnvInt64("APICHECK_MAX_BODY_BYTES", 32<<20),
	}
}

// loadStorageConfig loads storage configuration from environment
func loadStorageConfig() storage.Config {
	cfg := storage.DefaultConfig()

	// Storage type
	if storageType := getEnv("APICHECK_STORAGE_TYPE", ""); storageType != "" {
		cfg.Type = storageType
	}

	// Filesystem config
	if fsRoot := getEnv("APICHECK_FILESYSTEM_ROOT", ""); fsRoot != "" {
		cfg.FilesystemRoot = fsRoot
	}

	// S3 config
	if s3Endpoint := getEnv("APICHECK_S3_ENDPOINT", ""); s3Endpoint != "" {
		cfg.S3Endpoint = s3Endpoint
	}
	if s3Region := getEnv("APICHECK_S3_REGION", ""); s3Region != "" {
		cfg.S3Region = s3Region
	}
	if s3Bucket := getEnv("APICHECK_S3_BUCKET", ""); s3Bucket != "" {
		cfg.S3Bucket = s3Bucket
	}
	if s3Prefix := getEnv("APICHECK_S3_PREFIX", ""); s3Prefix != "" {
		cfg.S3Prefix = s3Prefix
	}
	if s3AccessKey := getEnv("APICHECK_S3_ACCESS_KEY", ""); s3AccessKey != "" {
		cfg.S3AccessKey = s3AccessKey
	}
	if s3SecretKey := getEnv("APICHECK_S3_SECRET_KEY", ""); s3SecretKey != "" {
		cfg.S3SecretKey = s3SecretKey
	}
	cfg.S3UsePathStyle = getEnvBool("APICHECK_S3_USE_PATH_STYLE", cfg.S3UsePathStyle)

	return cfg
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	level, err := observability.ParseLogLevel(getEnv("APICHECK_LOG_LEVEL", "info"))
	if err != nil {
		level = observability.InfoLevel
	}
	return ObservabilityConfig{
		LogLevel:           level,
		LogFormat:          observability.LogFormat(strings.ToLower(getEnv("APICHECK_LOG_FORMAT", string(observability.FormatText)))),
		MetricsEnabled:     getEnvBool("APICHECK_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("APICHECK_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("APICHECK_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("APICHECK_OTEL_SERVICE_NAME", "apicheck"),
		OTelServiceVersion: getEnv("APICHECK_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("APICHECK_OTEL_INSECURE", true),
		OTelSampleRatio:    getEnvFloat("APICHECK_OTEL_SAMPLE_RATIO", 1.0),
	}
}

// loadCheckConfig loads compatibility run defaults from environment
func loadCheckConfig() CheckConfig {
	return CheckConfig{
		PolicyFile:   getEnv("APICHECK_POLICY_FILE", ""),
		BaselineFile: getEnv("APICHECK_BASELINE_FILE", ""),
		Hide:         getEnvList("APICHECK_HIDE"),
		Werror:       getEnvBool("APICHECK_WERROR", false),
		MaxParallel:  getEnvInt("APICHECK_MAX_PARALLEL", 4),
		CacheSize:    getEnvInt("APICHECK_CACHE_SIZE", 128),
		CacheTTL:     getEnvDuration("APICHECK_CACHE_TTL", 10*time.Minute),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive")
	}

	// Validate storage config based on type
	switch c.Storage.Type {
	case "filesystem":
		if c.Storage.FilesystemRoot == "" {
			return fmt.Errorf("filesystem root is required for filesystem storage")
		}
	case "s3":
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("S3 bucket is required for s3 storage")
		}
		if (c.Storage.S3AccessKey == "") != (c.Storage.S3SecretKey == "") {
			return fmt.Errorf("S3 access key and secret key must be set together")
		}
	default:
		return fmt.Errorf("invalid storage type: %s (must be filesystem or s3)", c.Storage.Type)
	}

	switch c.Observability.LogFormat {
	case observability.FormatJSON, observability.FormatText:
	default:
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Observability.LogFormat)
	}

	// Validate OpenTelemetry config
	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}
	if r := c.Observability.OTelSampleRatio; r < 0 || r > 1 {
		return fmt.Errorf("OpenTelemetry sample ratio must be between 0 and 1, got %g", r)
	}

	if c.Check.MaxParallel < 1 {
		return fmt.Errorf("max parallel checks must be at least 1")
	}
	if c.Check.CacheSize < 0 {
		return fmt.Errorf("cache size must not be negative")
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvInt64 returns an int64 environment variable or a default
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat returns a float environment variable or a default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated environment variable, dropping empty
// items.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
