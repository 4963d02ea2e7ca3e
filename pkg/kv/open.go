package kv

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
)

// Config selects and configures a backend.
type Config struct {
	// Backend is one of memory, file, redis, sql, s3.
	Backend string
	// Dir is the file backend's directory.
	Dir string
	// QuotaBytes bounds the memory and file backends. Zero means unlimited.
	QuotaBytes int64

	Redis RedisConfig
	SQL   SQLConfig
	S3    S3Config
}

// Open builds the backend named by cfg.Backend.
func Open(ctx context.Context, cfg Config) (Backend, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryBackend(cfg.QuotaBytes), nil
	case "", "file":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("file backend requires a directory")
		}
		return NewFileBackend(afero.NewOsFs(), cfg.Dir, cfg.QuotaBytes)
	case "redis":
		return NewRedisBackend(ctx, cfg.Redis)
	case "sql":
		return NewSQLBackend(cfg.SQL)
	case "s3":
		return NewS3Backend(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
