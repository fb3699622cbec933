package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when no baseline exists for a module.
var ErrNotFound = errors.New("baseline not found")

// BaselineReader reads accepted API snapshots.
type BaselineReader interface {
	// Get returns the snapshot text stored for module, or an error wrapping
	// ErrNotFound.
	Get(ctx context.Context, module string) ([]byte, error)
	// List returns every module with a stored baseline, sorted.
	List(ctx context.Context) ([]string, error)
}

// BaselineWriter replaces accepted API snapshots.
type BaselineWriter interface {
	Put(ctx context.Context, module string, snapshot []byte) error
}

// BaselineStore is a backend holding the accepted snapshot of every module.
type BaselineStore interface {
	BaselineReader
	BaselineWriter

	// Name identifies the backend in logs, metrics and health output.
	Name() string
	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
}

// Config for storage backend
type Config struct {
	Type string // "filesystem" or "s3"

	// Filesystem config
	FilesystemRoot string

	// S3 config
	S3Endpoint     string
	S3Region       string
	S3Bucket       string
	S3Prefix       string
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		Type:           "filesystem",
		FilesystemRoot: "api",
		S3Region:       "us-east-1",
		S3Prefix:       "baselines/",
	}
}

// NewStore opens the backend selected by cfg.Type.
func NewStore(ctx context.Context, cfg Config) (BaselineStore, error) {
	switch cfg.Type {
	case "filesystem", "":
		return NewFileSystemStore(cfg.FilesystemRoot)
	case "s3":
		return NewS3Store(ctx, cfg)
	}
	return nil, fmt.Errorf("invalid storage type: %s (must be filesystem or s3)", cfg.Type)
}

// ValidateModuleName rejects names that could escape a store's namespace.
// Names are slash-separated path segments such as "core/widget".
func ValidateModuleName(module string) error {
	if module == "" {
		return fmt.Errorf("module name is required")
	}
	if strings.HasPrefix(module, "/") || strings.HasSuffix(module, "/") {
		return fmt.Errorf("invalid module name %q", module)
	}
	for _, seg := range strings.Split(module, "/") {
		if seg == "" || seg == "." || seg == ".." || strings.ContainsAny(seg, "\\\x00") {
			return fmt.Errorf("invalid module name %q", module)
		}
	}
	return nil
}
