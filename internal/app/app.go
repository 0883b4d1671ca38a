// Package app wires configuration, storage, the similarity engine and the
// query service together for the binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ewilliams-labs/resonance/internal/adapters/csvfile"
	"github.com/ewilliams-labs/resonance/internal/adapters/spotify"
	"github.com/ewilliams-labs/resonance/internal/adapters/sqlite"
	"github.com/ewilliams-labs/resonance/internal/config"
	"github.com/ewilliams-labs/resonance/internal/core/ports"
	"github.com/ewilliams-labs/resonance/internal/core/services"
	"github.com/ewilliams-labs/resonance/internal/core/similarity"
	"github.com/ewilliams-labs/resonance/internal/logging"
	"github.com/ewilliams-labs/resonance/internal/worker"
)

// App holds a ready-to-query recommender and the resources backing it.
type App struct {
	Config          *config.Config
	Engine          *similarity.Engine
	Recommendations *services.Recommendations

	pool    *worker.Pool
	closers []func() error
}

// InitLogging applies the logging section of cfg to the global logger.
func InitLogging(cfg *config.Config) {
	lc := logging.DefaultConfig()
	lc.Level = cfg.Logging.Level
	lc.Format = cfg.Logging.Format
	logging.Init(lc)
}

// OpenRepository returns the track repository selected by the storage
// driver, plus a function releasing it.
func OpenRepository(cfg *config.Config) (ports.TrackRepository, func() error, error) {
	switch cfg.Storage.Driver {
	case config.DriverCSV:
		return csvfile.NewStore(cfg.Dataset.Path), func() error { return nil }, nil
	case config.DriverSQLite:
		adapter, err := sqlite.NewAdapter(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return adapter, adapter.Close, nil
	default:
		return nil, nil, fmt.Errorf("app: unknown storage driver %q: %w", cfg.Storage.Driver, config.ErrInvalidConfig)
	}
}

// NewSpotifyClient builds a catalog client from the spotify section of cfg.
// Credentials are required.
func NewSpotifyClient(ctx context.Context, cfg *config.Config) (*spotify.Client, error) {
	if err := cfg.RequireSpotifyCredentials(); err != nil {
		return nil, err
	}
	sc := cfg.Spotify
	return spotify.NewClient(ctx, spotify.Config{
		ClientID:          sc.ClientID,
		ClientSecret:      sc.ClientSecret,
		BaseURL:           sc.BaseURL,
		TokenURL:          sc.TokenURL,
		MaxRetries:        sc.MaxRetries,
		RetryBackoff:      time.Duration(sc.RetryBackoffMS) * time.Millisecond,
		RequestsPerSecond: sc.RequestsPerSecond,
		Burst:             sc.Burst,
	}), nil
}

// New loads the catalog named by cfg, builds the engine and starts the
// batch worker pool. Callers must Close the returned App.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	repo, closeRepo, err := OpenRepository(cfg)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, closers: []func() error{closeRepo}}

	features := cfg.Recommender.Features
	ds, err := repo.LoadDataset(ctx, features)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("app: load catalog: %w", err)
	}

	engine, err := similarity.NewEngine(ds,
		similarity.WithFeatures(features),
		similarity.WithSeed(cfg.Recommender.Seed),
	)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("app: build engine: %w", err)
	}
	a.Engine = engine

	a.pool = worker.NewPool(engine, max(cfg.Recommender.Workers*4, 16))
	a.pool.Start(cfg.Recommender.Workers)
	a.Recommendations = services.NewRecommendations(engine, a.pool)

	logging.Info().
		Str("driver", cfg.Storage.Driver).
		Int("tracks", engine.Len()).
		Strs("features", engine.Features()).
		Int("workers", cfg.Recommender.Workers).
		Msg("recommender ready")
	return a, nil
}

// Close stops the worker pool and releases storage.
func (a *App) Close() error {
	if a.pool != nil {
		a.pool.Stop()
	}
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
