package spotify

import "testing"

func TestMapTrackToDomain(t *testing.T) {
	popularity := 71
	st := spotifyTrack{
		ID:         "t1",
		Name:       "Jai Ho",
		Popularity: &popularity,
		Artists:    []spotifyArtist{{Name: "A. R. Rahman"}, {Name: "Sukhwinder Singh"}},
		Album:      spotifyAlbum{Name: "Slumdog Millionaire", ReleaseDate: "2008-11-25"},
	}

	got := mapTrackToDomain(st)
	if got.Artist != "A. R. Rahman, Sukhwinder Singh" {
		t.Errorf("artist: got %q", got.Artist)
	}
	if got.Album != "Slumdog Millionaire" || got.ReleaseDate != "2008-11-25" {
		t.Errorf("album metadata: got %q %q", got.Album, got.ReleaseDate)
	}
	if v, ok := got.Feature("popularity"); !ok || v != 71 {
		t.Errorf("popularity: got %v, %v", v, ok)
	}
	if _, ok := got.Feature("energy"); ok {
		t.Error("audio features must not be set before they are merged")
	}

	applyAudioFeatures(&got, &spotifyAudioFeatures{Energy: 0.9, Tempo: 138})
	if v, _ := got.Feature("energy"); v != 0.9 {
		t.Errorf("energy: got %v", v)
	}
	if v, _ := got.Feature("tempo"); v != 138 {
		t.Errorf("tempo: got %v", v)
	}

	applyAudioFeatures(&got, nil)
	if v, _ := got.Feature("energy"); v != 0.9 {
		t.Errorf("nil features must leave the track unchanged, energy %v", v)
	}
}
