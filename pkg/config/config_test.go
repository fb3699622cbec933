package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/apicheck/pkg/observability"
)

// TestGetEnvHelpers tests the typed environment helpers
func TestGetEnvHelpers(t *testing.T) {
	t.Run("string", func(t *testing.T) {
		t.Setenv("TEST_VAR", "custom")
		assert.Equal(t, "custom", getEnv("TEST_VAR", "default"))
		assert.Equal(t, "default", getEnv("TEST_VAR_NOT_SET", "default"))
	})

	t.Run("bool", func(t *testing.T) {
		tests := []struct {
			value string
			def   bool
			want  bool
		}{
			{"true", false, true},
			{"TRUE", false, true},
			{"1", false, true},
			{"false", true, false},
			{"yes", true, false},
			{"", true, true},
		}
		for _, tt := range tests {
			t.Setenv("TEST_BOOL", tt.value)
			assert.Equal(t, tt.want, getEnvBool("TEST_BOOL", tt.def), "value %q", tt.value)
		}
	})

	t.Run("numbers", func(t *testing.T) {
		t.Setenv("TEST_INT", "42")
		t.Setenv("TEST_INT_BAD", "invalid")
		t.Setenv("TEST_INT64", "9223372036854775807")
		t.Setenv("TEST_FLOAT", "0.25")
		assert.Equal(t, 42, getEnvInt("TEST_INT", 10))
		assert.Equal(t, 10, getEnvInt("TEST_INT_BAD", 10))
		assert.Equal(t, int64(9223372036854775807), getEnvInt64("TEST_INT64", 10))
		assert.Equal(t, 0.25, getEnvFloat("TEST_FLOAT", 1))
		assert.Equal(t, 1.0, getEnvFloat("TEST_INT_BAD", 1))
	})

	t.Run("duration", func(t *testing.T) {
		t.Setenv("TEST_DURATION", "1m30s")
		t.Setenv("TEST_DURATION_BAD", "soon")
		assert.Equal(t, 90*time.Second, getEnvDuration("TEST_DURATION", time.Second))
		assert.Equal(t, time.Second, getEnvDuration("TEST_DURATION_BAD", time.Second))
	})

	t.Run("list", func(t *testing.T) {
		t.Setenv("TEST_LIST", " ClassAdded, ,17,")
		assert.Equal(t, []string{"ClassAdded", "17"}, getEnvList("TEST_LIST"))
		assert.Nil(t, getEnvList("TEST_LIST_NOT_SET"))
	})
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "filesystem", cfg.Storage.Type)
	assert.Equal(t, "api", cfg.Storage.FilesystemRoot)
	assert.Equal(t, observability.InfoLevel, cfg.Observability.LogLevel)
	assert.Equal(t, observability.FormatText, cfg.Observability.LogFormat)
	assert.True(t, cfg.Observability.MetricsEnabled)
	assert.False(t, cfg.Observability.OTelEnabled)
	assert.Equal(t, 4, cfg.Check.MaxParallel)
	assert.Equal(t, 128, cfg.Check.CacheSize)
	assert.Empty(t, cfg.Check.Hide)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("APICHECK_PORT", "9999")
	t.Setenv("APICHECK_STORAGE_TYPE", "s3")
	t.Setenv("APICHECK_S3_BUCKET", "baselines")
	t.Setenv("APICHECK_S3_PREFIX", "team/")
	t.Setenv("APICHECK_S3_USE_PATH_STYLE", "true")
	t.Setenv("APICHECK_LOG_LEVEL", "debug")
	t.Setenv("APICHECK_LOG_FORMAT", "JSON")
	t.Setenv("APICHECK_OTEL_ENABLED", "true")
	t.Setenv("APICHECK_OTEL_SAMPLE_RATIO", "0.5")
	t.Setenv("APICHECK_HIDE", "ClassAdded,17")
	t.Setenv("APICHECK_WERROR", "1")
	t.Setenv("APICHECK_MAX_PARALLEL", "8")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, "s3", cfg.Storage.Type)
	assert.Equal(t, "baselines", cfg.Storage.S3Bucket)
	assert.Equal(t, "team/", cfg.Storage.S3Prefix)
	assert.True(t, cfg.Storage.S3UsePathStyle)
	assert.Equal(t, observability.DebugLevel, cfg.Observability.LogLevel)
	assert.Equal(t, observability.FormatJSON, cfg.Observability.LogFormat)

	otel := cfg.Observability.OTel()
	assert.True(t, otel.Enabled)
	assert.Equal(t, "apicheck", otel.ServiceName)
	assert.Equal(t, 0.5, otel.SampleRatio)

	assert.Equal(t, []string{"ClassAdded", "17"}, cfg.Check.Hide)
	assert.True(t, cfg.Check.Werror)
	assert.Equal(t, 8, cfg.Check.MaxParallel)
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:        loadServerConfig(),
			Storage:       loadStorageConfig(),
			Observability: loadObservabilityConfig(),
			Check:         loadCheckConfig(),
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing port", func(c *Config) { c.Server.Port = "" }, "server port is required"},
		{"zero body limit", func(c *Config) { c.Server.MaxBodyBytes = 0 }, "max body bytes"},
		{"unknown storage", func(c *Config) { c.Storage.Type = "postgres" }, "invalid storage type"},
		{"filesystem without root", func(c *Config) { c.Storage.FilesystemRoot = "" }, "filesystem root is required"},
		{"s3 without bucket", func(c *Config) { c.Storage.Type = "s3" }, "S3 bucket is required"},
		{"s3 half credentials", func(c *Config) {
			c.Storage.Type = "s3"
			c.Storage.S3Bucket = "b"
			c.Storage.S3AccessKey = "key"
		}, "must be set together"},
		{"bad log format", func(c *Config) { c.Observability.LogFormat = "xml" }, "invalid log format"},
		{"otel without endpoint", func(c *Config) {
			c.Observability.OTelEnabled = true
			c.Observability.OTelEndpoint = ""
		}, "endpoint is required"},
		{"sample ratio out of range", func(c *Config) { c.Observability.OTelSampleRatio = 1.5 }, "sample ratio"},
		{"no parallelism", func(c *Config) { c.Check.MaxParallel = 0 }, "max parallel"},
		{"negative cache", func(c *Config) { c.Check.CacheSize = -1 }, "cache size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestLoadConfig_InvalidEnvironment(t *testing.T) {
	t.Setenv("APICHECK_STORAGE_TYPE", "hybrid")
	_, err := LoadConfig()
	assert.ErrorContains(t, err, "configuration validation failed")
}
