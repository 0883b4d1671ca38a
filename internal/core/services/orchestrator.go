package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ewilliams-labs/resonance/internal/core/domain"
	"github.com/ewilliams-labs/resonance/internal/core/ports"
	"github.com/ewilliams-labs/resonance/internal/logging"
	"github.com/ewilliams-labs/resonance/internal/metrics"
)

// ErrNoCatalogProvider is returned by ImportPlaylist when the orchestrator
// was built without a remote catalog.
var ErrNoCatalogProvider = errors.New("service: no catalog provider configured")

// Orchestrator moves track catalogs between a remote provider and one or
// more local repositories.
type Orchestrator struct {
	catalog ports.CatalogProvider
	repos   []ports.TrackRepository
}

// NewOrchestrator constructs an Orchestrator. catalog may be nil when only
// ImportDataset is used.
func NewOrchestrator(catalog ports.CatalogProvider, repos ...ports.TrackRepository) *Orchestrator {
	return &Orchestrator{
		catalog: catalog,
		repos:   repos,
	}
}

// ImportPlaylist fetches a playlist and saves its tracks into every
// repository, in order. It stops at the first repository error.
func (o *Orchestrator) ImportPlaylist(ctx context.Context, playlistID string, market string) (domain.Playlist, error) {
	if o.catalog == nil {
		return domain.Playlist{}, ErrNoCatalogProvider
	}

	// 1. Fetch playlist tracks and descriptors from the provider
	playlist, err := o.catalog.FetchPlaylist(ctx, playlistID, market)
	if err != nil {
		return domain.Playlist{}, fmt.Errorf("service: failed to fetch playlist: %w", err)
	}

	// 2. Persist into each configured repository
	source := "spotify:playlist:" + playlistID
	if err := o.save(ctx, source, playlist.Tracks); err != nil {
		return domain.Playlist{}, err
	}

	// 3. Summarize
	event := logging.Info().
		Str("playlist_id", playlist.ID).
		Str("playlist_name", playlist.Name).
		Int("tracks", len(playlist.Tracks))
	for name, mean := range playlist.Analyze() {
		event = event.Float64("mean_"+name, mean)
	}
	event.Msg("playlist imported")

	return playlist, nil
}

// ImportDataset loads the complete rows of source and saves them into every
// repository. It returns the number of tracks copied.
func (o *Orchestrator) ImportDataset(ctx context.Context, source ports.TrackRepository, name string, features []string) (int, error) {
	ds, err := source.LoadDataset(ctx, features)
	if err != nil {
		return 0, fmt.Errorf("service: failed to load dataset: %w", err)
	}
	if ds.Len() == 0 {
		return 0, fmt.Errorf("service: %s: %w", name, domain.ErrEmptyDataset)
	}

	if err := o.save(ctx, name, ds.Tracks); err != nil {
		return 0, err
	}
	return ds.Len(), nil
}

func (o *Orchestrator) save(ctx context.Context, source string, tracks []domain.Track) error {
	for _, repo := range o.repos {
		if err := repo.SaveCatalog(ctx, source, tracks); err != nil {
			return fmt.Errorf("service: failed to save catalog: %w", err)
		}
	}
	metrics.ImportedTracksTotal.WithLabelValues(sourceLabel(source)).Add(float64(len(tracks)))
	return nil
}

// sourceLabel keeps metric cardinality bounded.
func sourceLabel(source string) string {
	if strings.HasPrefix(source, "spotify:") {
		return "spotify"
	}
	return "dataset"
}
