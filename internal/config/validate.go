package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Validate checks cross-field constraints after all layers are merged.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverCSV:
		if strings.TrimSpace(c.Dataset.Path) == "" {
			return fmt.Errorf("%w: dataset.path is required for the csv driver", ErrInvalidConfig)
		}
	case DriverSQLite:
		if strings.TrimSpace(c.Storage.SQLitePath) == "" {
			return fmt.Errorf("%w: storage.sqlite_path is required for the sqlite driver", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, c.Storage.Driver)
	}

	if c.Recommender.TopK < 0 {
		return fmt.Errorf("%w: recommender.top_k must not be negative, got %d", ErrInvalidConfig, c.Recommender.TopK)
	}
	if c.Recommender.Workers <= 0 {
		return fmt.Errorf("%w: recommender.workers must be positive, got %d", ErrInvalidConfig, c.Recommender.Workers)
	}

	seen := make(map[string]struct{}, len(c.Recommender.Features))
	for _, name := range c.Recommender.Features {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: recommender.features contains an empty name", ErrInvalidConfig)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: recommender.features lists %q twice", ErrInvalidConfig, name)
		}
		seen[name] = struct{}{}
	}

	if c.Spotify.MaxRetries < 0 {
		return fmt.Errorf("%w: spotify.max_retries must not be negative", ErrInvalidConfig)
	}
	if c.Spotify.RetryBackoffMS < 0 {
		return fmt.Errorf("%w: spotify.retry_backoff_ms must not be negative", ErrInvalidConfig)
	}
	if c.Spotify.RequestsPerSecond <= 0 || c.Spotify.Burst <= 0 {
		return fmt.Errorf("%w: spotify rate limit must be positive", ErrInvalidConfig)
	}

	return nil
}

// RequireSpotifyCredentials reports whether both client credentials are set.
// Only commands that talk to Spotify call it.
func (c *Config) RequireSpotifyCredentials() error {
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET are required", ErrInvalidConfig)
	}
	return nil
}
