// Package storage persists the board and its companions as JSON values in
// a key-value store. Several backends implement KV; repositories on top of
// it know the keys and the value layouts.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound is returned by KV.Get when the key has never been written.
var ErrNotFound = errors.New("key not found")

// KV is a minimal byte store keyed by string.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMongo    = "mongo"
	DriverRedis    = "redis"
	DriverFile     = "file"
	DriverMemory   = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Driver string
	// DSN is the connection string for sqlite/postgres/mysql/mongo/redis.
	// For sqlite it is a file path; for file it is a directory.
	DSN string
	// Namespace is the table, collection, or key prefix, depending on the backend.
	Namespace string
	// Database names the mongo database.
	Database string
}

// Open connects to the configured backend.
func Open(ctx context.Context, opts Options) (KV, error) {
	if opts.Namespace == "" {
		opts.Namespace = "corkboard_kv"
	}
	switch opts.Driver {
	case DriverSQLite, "":
		if err := os.MkdirAll(filepath.Dir(opts.DSN), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
		return OpenSQL(ctx, sqliteDialect, opts.DSN+"?_journal_mode=WAL&_busy_timeout=5000", opts.Namespace)
	case DriverPostgres:
		return OpenSQL(ctx, postgresDialect, opts.DSN, opts.Namespace)
	case DriverMySQL:
		return OpenSQL(ctx, mysqlDialect, opts.DSN, opts.Namespace)
	case DriverMongo:
		return OpenMongo(ctx, opts.DSN, opts.Database, opts.Namespace)
	case DriverRedis:
		return OpenRedis(ctx, opts.DSN, opts.Namespace)
	case DriverFile:
		return NewFileKV(opts.DSN)
	case DriverMemory:
		return NewMemoryKV(), nil
	}
	return nil, fmt.Errorf("unsupported storage driver: %s", opts.Driver)
}
