// Package config loads runtime settings from defaults, an optional YAML file
// and environment variables, in increasing order of precedence.
package config

import (
	"github.com/ewilliams-labs/resonance/internal/core/domain"
)

// ConfigPathEnvVar names the environment variable that points at a config file.
const ConfigPathEnvVar = "RESONANCE_CONFIG"

// DefaultConfigPaths are searched in order when ConfigPathEnvVar is unset.
var DefaultConfigPaths = []string{"resonance.yaml", "config.yaml"}

// Storage drivers.
const (
	DriverCSV    = "csv"
	DriverSQLite = "sqlite"
)

type Config struct {
	Spotify     SpotifyConfig     `koanf:"spotify"`
	Storage     StorageConfig     `koanf:"storage"`
	Dataset     DatasetConfig     `koanf:"dataset"`
	Recommender RecommenderConfig `koanf:"recommender"`
	Logging     LoggingConfig     `koanf:"logging"`
	Server      ServerConfig      `koanf:"server"`
}

type SpotifyConfig struct {
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
	BaseURL      string `koanf:"base_url"`
	TokenURL     string `koanf:"token_url"`
	Market       string `koanf:"market"`
	MaxRetries   int    `koanf:"max_retries"`
	// RetryBackoffMS is the base delay of the exponential backoff.
	RetryBackoffMS    int     `koanf:"retry_backoff_ms"`
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`
}

type StorageConfig struct {
	// Driver selects where the engine's catalog is loaded from: "csv"
	// reads Dataset.Path, "sqlite" reads SQLitePath.
	Driver     string `koanf:"driver"`
	SQLitePath string `koanf:"sqlite_path"`
}

type DatasetConfig struct {
	Path string `koanf:"path"`
}

type RecommenderConfig struct {
	Features []string `koanf:"features"`
	TopK     int      `koanf:"top_k"`
	Seed     int64    `koanf:"seed"`
	Workers  int      `koanf:"workers"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type ServerConfig struct {
	Addr                   string `koanf:"addr"`
	ShutdownTimeoutSeconds int    `koanf:"shutdown_timeout_seconds"`
}

func defaultConfig() *Config {
	return &Config{
		Spotify: SpotifyConfig{
			BaseURL:           "https://api.spotify.com/v1",
			TokenURL:          "https://accounts.spotify.com/api/token",
			Market:            "IN",
			MaxRetries:        3,
			RetryBackoffMS:    200,
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Storage: StorageConfig{
			Driver:     DriverCSV,
			SQLitePath: "resonance.db",
		},
		Dataset: DatasetConfig{
			Path: "data/tracks.csv",
		},
		Recommender: RecommenderConfig{
			Features: append([]string(nil), domain.DefaultFeatures...),
			TopK:     5,
			Seed:     42,
			Workers:  4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Server: ServerConfig{
			Addr:                   ":8080",
			ShutdownTimeoutSeconds: 10,
		},
	}
}

// Default returns the built-in configuration without consulting files or
// the environment.
func Default() *Config {
	return defaultConfig()
}
