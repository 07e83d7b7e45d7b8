// Package kv provides the key-value persistence the thread store is built on.
// Every backend stores opaque byte values under string keys.
package kv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/raphaelgruber/flirtassist/internal/config"
	"github.com/raphaelgruber/flirtassist/internal/db"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Store is a minimal key-value store.
type Store interface {
	// Get returns the value stored under key. found is false when the key
	// does not exist; err is reserved for backend failures.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend's resources.
	Close() error
}

// Open builds the backend named by cfg.StorageBackend.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("backend", cfg.StorageBackend)

	switch cfg.StorageBackend {
	case config.BackendMemory:
		return NewMemory(), nil

	case config.BackendFile, "":
		return NewFile(filepath.Join(cfg.DataDir, "kv"))

	case config.BackendBadger:
		return OpenBadger(filepath.Join(cfg.DataDir, "badger"))

	case config.BackendSQLite:
		return OpenSQLite(ctx, filepath.Join(cfg.DataDir, "flirtassist.db"))

	case config.BackendRedis:
		return OpenRedis(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			Prefix:   cfg.RedisPrefix,
		})

	case config.BackendSurreal:
		client, err := db.NewClient(ctx, db.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to surrealdb: %w", err)
		}
		if err := client.InitSchema(ctx); err != nil {
			_ = client.Close(ctx)
			return nil, err
		}
		return NewSurreal(client), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.StorageBackend)
}
