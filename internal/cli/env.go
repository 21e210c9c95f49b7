package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vijay-prabhu/jobmatch/internal/config"
	"github.com/vijay-prabhu/jobmatch/internal/database"
	"github.com/vijay-prabhu/jobmatch/internal/recency"
)

// environment holds the stores a command works against
type environment struct {
	cfg     *config.Config
	logger  *slog.Logger
	backend *recency.Backend
	db      *database.DB // run history; shared with the sqlite cache backend
	ownDB   bool
}

// openEnvironment opens the recency backend and the run history database
func openEnvironment(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*environment, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	backend, err := recency.OpenBackend(ctx, cfg.Cache, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open recency cache: %w", err)
	}

	env := &environment{cfg: cfg, logger: logger, backend: backend, db: backend.DB}
	if env.db == nil {
		db, err := database.Open(cfg.Cache.DatabasePath)
		if err != nil {
			backend.Close()
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		env.db = db
		env.ownDB = true
	}
	return env, nil
}

// loadCache reads the current recency state from the backend
func (e *environment) loadCache(ctx context.Context) *recency.Cache {
	return recency.Load(ctx, e.backend.Store, recency.Options{
		RetentionDays: e.cfg.Cache.RetentionDays,
		Logger:        e.logger,
	})
}

func (e *environment) Close() error {
	var errs []error
	if e.ownDB {
		errs = append(errs, e.db.Close())
	}
	errs = append(errs, e.backend.Close())
	return errors.Join(errs...)
}
