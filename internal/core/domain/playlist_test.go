package domain

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestPlaylist_AddTrack(t *testing.T) {
	tests := []struct {
		name          string
		initialTracks []Track
		toAdd         Track
		wantErr       error
		wantLen       int
	}{
		{
			name:          "adds new track successfully",
			initialTracks: []Track{},
			toAdd:         Track{ID: "t1", Name: "Song One", Artist: "Artist A"},
			wantErr:       nil,
			wantLen:       1,
		},
		{
			name: "fails when adding track with duplicate id",
			initialTracks: []Track{
				{ID: "t1", Name: "Existing", Artist: "Artist A"},
			},
			toAdd:   Track{ID: "t1", Name: "Song Two", Artist: "Artist B"},
			wantErr: ErrDuplicateTrack,
			wantLen: 1,
		},
		{
			name:          "rejects empty id",
			initialTracks: []Track{},
			toAdd:         Track{Name: "No ID"},
			wantErr:       ErrInvalidArgument,
			wantLen:       0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewPlaylist("pl-1", "Test Playlist")
			if err != nil {
				t.Fatalf("failed to create playlist: %v", err)
			}
			p.Tracks = append(p.Tracks, tc.initialTracks...)

			err = p.AddTrack(tc.toAdd)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got: %v", err)
				}
			} else if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected error %v, got %v", tc.wantErr, err)
			}

			if got := len(p.Tracks); got != tc.wantLen {
				t.Fatalf("expected %d tracks, got %d", tc.wantLen, got)
			}

			if tc.wantErr == nil {
				last := p.Tracks[len(p.Tracks)-1]
				if !reflect.DeepEqual(last, tc.toAdd) {
					t.Fatalf("last track mismatch: want %+v, got %+v", tc.toAdd, last)
				}
			}
		})
	}
}

func TestPlaylist_Analyze(t *testing.T) {
	tests := []struct {
		name     string
		tracks   []Track
		expected map[string]float64
	}{
		{
			name:     "returns empty map for empty playlist",
			tracks:   []Track{},
			expected: map[string]float64{},
		},
		{
			name: "averages features across tracks",
			tracks: []Track{
				{ID: "t1", Features: map[string]float64{"danceability": 0.4, "energy": 0.6, "tempo": 100}},
				{ID: "t2", Features: map[string]float64{"danceability": 0.6, "energy": 0.8, "tempo": 120}},
			},
			expected: map[string]float64{"danceability": 0.5, "energy": 0.7, "tempo": 110},
		},
		{
			name: "averages only over tracks that carry the feature",
			tracks: []Track{
				{ID: "t1", Features: map[string]float64{"popularity": 40, "energy": 0.2}},
				{ID: "t2", Features: map[string]float64{"popularity": 60}},
			},
			expected: map[string]float64{"popularity": 50, "energy": 0.2},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := Playlist{ID: "pl-1", Name: "Test", Tracks: tc.tracks}
			got := p.Analyze()

			if len(got) != len(tc.expected) {
				t.Fatalf("expected %d features, got %+v", len(tc.expected), got)
			}
			for name, want := range tc.expected {
				if !floatEquals(got[name], want, 1e-9) {
					t.Fatalf("%s: expected %v, got %v", name, want, got[name])
				}
			}
		})
	}
}

func floatEquals(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
