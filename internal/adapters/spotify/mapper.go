package spotify

import (
	"strings"

	"github.com/ewilliams-labs/resonance/internal/core/domain"
)

// mapTrackToDomain converts a raw Spotify track to a clean Domain track.
// Audio features arrive from a separate endpoint and are merged later with
// applyAudioFeatures.
func mapTrackToDomain(st spotifyTrack) domain.Track {
	// 1. Flatten Artists (List -> String)
	artistNames := make([]string, 0, len(st.Artists))
	for _, a := range st.Artists {
		artistNames = append(artistNames, a.Name)
	}

	// 2. Map Basic Metadata
	dt := domain.Track{
		ID:          st.ID,
		Name:        st.Name,
		Artist:      strings.Join(artistNames, ", "),
		Album:       st.Album.Name,
		ReleaseDate: st.Album.ReleaseDate,
	}
	if st.Popularity != nil {
		dt.SetFeature("popularity", float64(*st.Popularity))
	}

	return dt
}

func applyAudioFeatures(dt *domain.Track, f *spotifyAudioFeatures) {
	if f == nil {
		return
	}
	dt.SetFeature("danceability", f.Danceability)
	dt.SetFeature("energy", f.Energy)
	dt.SetFeature("valence", f.Valence)
	dt.SetFeature("acousticness", f.Acousticness)
	dt.SetFeature("instrumentalness", f.Instrumentalness)
	dt.SetFeature("liveness", f.Liveness)
	dt.SetFeature("speechiness", f.Speechiness)
	dt.SetFeature("tempo", f.Tempo)
	dt.SetFeature("loudness", f.Loudness)
}
