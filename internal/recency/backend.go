package recency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vijay-prabhu/jobmatch/internal/config"
	"github.com/vijay-prabhu/jobmatch/internal/database"
)

// Backend is an opened Store plus the resources behind it
type Backend struct {
	Store Store
	DB    *database.DB // set for the sqlite backend, shared with run history

	closers []func() error
}

// Close releases the backend's connections
func (b *Backend) Close() error {
	var errs []error
	for _, closeFn := range b.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OpenBackend opens the store selected by cfg.Backend
func OpenBackend(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) (*Backend, error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		return &Backend{Store: NewFileStore(cfg.Path)}, nil

	case config.BackendSQLite:
		db, err := database.Open(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return &Backend{
			Store:   NewSQLStore(db),
			DB:      db,
			closers: []func() error{db.Close},
		}, nil

	case config.BackendRedis:
		client, err := NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Store:   NewRedisStore(client, cfg.KeyPrefix, logger),
			closers: []func() error{client.Close},
		}, nil

	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
