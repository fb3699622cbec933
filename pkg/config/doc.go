// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings. Command-line flags take precedence over
// anything loaded here.
//
// # Configuration Structure
//
// Server settings (used by "apicheck serve"):
//
//	APICHECK_HOST="0.0.0.0"
//	APICHECK_PORT="8080"
//	APICHECK_READ_TIMEOUT="15s"
//	APICHECK_SHUTDOWN_TIMEOUT="30s"
//	APICHECK_MAX_BODY_BYTES="33554432"
//
// Baseline storage settings:
//
//	APICHECK_STORAGE_TYPE="filesystem"  # filesystem, s3
//	APICHECK_FILESYSTEM_ROOT="api"
//	APICHECK_S3_BUCKET="api-baselines"
//	APICHECK_S3_PREFIX="baselines/"
//	APICHECK_S3_ENDPOINT="http://localhost:9000"
//	APICHECK_S3_USE_PATH_STYLE="true"
//
// Check settings:
//
//	APICHECK_POLICY_FILE="apicheck.yaml"
//	APICHECK_BASELINE_FILE="api/accepted.txt"
//	APICHECK_HIDE="ClassAdded,17"
//	APICHECK_WERROR="false"
//	APICHECK_MAX_PARALLEL="4"
//	APICHECK_CACHE_SIZE="128"
//	APICHECK_CACHE_TTL="10m"
//
// Observability settings:
//
//	APICHECK_LOG_LEVEL="info"  # debug, info, warn, error
//	APICHECK_LOG_FORMAT="text" # text, json
//	APICHECK_METRICS_ENABLED="true"
//	APICHECK_OTEL_ENABLED="true"
//	APICHECK_OTEL_ENDPOINT="otel-collector:4317"
//	APICHECK_OTEL_SAMPLE_RATIO="0.1"
//
// # Usage Example
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//	store, err := storage.NewStore(ctx, cfg.Storage)
package config
