package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ewilliams-labs/resonance/internal/core/domain"
	"github.com/ewilliams-labs/resonance/internal/logging"
)

// FetchPlaylist returns every track of a playlist with popularity and audio
// features merged in. Null items and repeated ids are skipped. Tracks the
// audio-features endpoint knows nothing about keep only popularity.
func (c *Client) FetchPlaylist(ctx context.Context, playlistID string, market string) (domain.Playlist, error) {
	if strings.TrimSpace(playlistID) == "" {
		return domain.Playlist{}, fmt.Errorf("spotify adapter: playlist id is required: %w", domain.ErrInvalidArgument)
	}

	meta, err := c.getPlaylist(ctx, playlistID)
	if err != nil {
		return domain.Playlist{}, err
	}

	playlist, err := domain.NewPlaylist(playlistID, meta.Name)
	if err != nil {
		return domain.Playlist{}, fmt.Errorf("spotify adapter: %w", err)
	}

	raw, err := c.getPlaylistTracks(ctx, playlistID, market)
	if err != nil {
		return domain.Playlist{}, err
	}

	skipped := 0
	for _, st := range raw {
		if err := playlist.AddTrack(mapTrackToDomain(st)); err != nil {
			if errors.Is(err, domain.ErrDuplicateTrack) || errors.Is(err, domain.ErrInvalidArgument) {
				skipped++
				continue
			}
			return domain.Playlist{}, fmt.Errorf("spotify adapter: %w", err)
		}
	}

	features, err := c.getAudioFeaturesBatch(ctx, playlist.TrackIDs())
	if err != nil {
		return domain.Playlist{}, err
	}
	missing := 0
	for i := range playlist.Tracks {
		f, ok := features[playlist.Tracks[i].ID]
		if !ok {
			missing++
			continue
		}
		applyAudioFeatures(&playlist.Tracks[i], &f)
	}

	logging.Info().
		Str("playlist_id", playlistID).
		Str("market", market).
		Int("tracks", len(playlist.Tracks)).
		Int("skipped", skipped).
		Int("without_features", missing).
		Msg("playlist fetched")

	return *playlist, nil
}

func (c *Client) getPlaylist(ctx context.Context, playlistID string) (spotifyPlaylist, error) {
	u := fmt.Sprintf("%s/playlists/%s?fields=id,name", c.baseURL, url.PathEscape(playlistID))
	var out spotifyPlaylist
	if err := c.getJSON(ctx, u, "playlist", &out); err != nil {
		return spotifyPlaylist{}, err
	}
	return out, nil
}

// getPlaylistTracks follows the paging "next" links until exhausted.
func (c *Client) getPlaylistTracks(ctx context.Context, playlistID string, market string) ([]spotifyTrack, error) {
	q := url.Values{}
	q.Set("additional_types", "track")
	q.Set("limit", "100")
	if market != "" {
		q.Set("market", market)
	}
	next := fmt.Sprintf("%s/playlists/%s/tracks?%s", c.baseURL, url.PathEscape(playlistID), q.Encode())

	var tracks []spotifyTrack
	for next != "" {
		if !strings.HasPrefix(next, c.baseURL+"/") {
			return nil, fmt.Errorf("spotify adapter: refusing to follow paging link outside %s", c.baseURL)
		}

		var page playlistTracksPage
		if err := c.getJSON(ctx, next, "playlist_tracks", &page); err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			if item.Track == nil || item.Track.ID == "" {
				continue
			}
			if item.Track.Type != "" && item.Track.Type != "track" {
				continue
			}
			tracks = append(tracks, *item.Track)
		}

		next = ""
		if page.Next != nil {
			next = *page.Next
		}
	}
	return tracks, nil
}

// getJSON issues a GET through the retry loop and decodes a 200 response.
func (c *Client) getJSON(ctx context.Context, rawURL string, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("spotify adapter: failed to create %s request: %w", endpoint, err)
	}

	resp, err := c.doRequestWithRetry(req, endpoint)
	if err != nil {
		return fmt.Errorf("spotify adapter: %s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("spotify adapter: %s: %w", endpoint, domain.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("spotify adapter: %s status %d", endpoint, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("spotify adapter: %s decode error: %w", endpoint, err)
	}
	return nil
}
