package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/ewilliams-labs/resonance/internal/core/domain"
)

// ErrNoConfidentMatch indicates no candidate met the title/artist match threshold.
var ErrNoConfidentMatch = errors.New("no confident match")

// NoConfidentMatchError provides context for a failed track match.
type NoConfidentMatchError struct {
	Title  string
	Artist string
}

func (e NoConfidentMatchError) Error() string {
	if e.Title == "" && e.Artist == "" {
		return ErrNoConfidentMatch.Error()
	}
	return fmt.Sprintf("no confident match found for title %q artist %q", e.Title, e.Artist)
}

func (e NoConfidentMatchError) Is(target error) bool {
	return target == ErrNoConfidentMatch
}

// CatalogProvider fetches track metadata and audio descriptors from a
// remote music catalog.
type CatalogProvider interface {
	FetchPlaylist(ctx context.Context, playlistID string, market string) (domain.Playlist, error)
}
