package domain

// TrackRef identifies a track for display.
type TrackRef struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Artist string `json:"artist" yaml:"artist"`
}

// Ref returns the display identity of t.
func (t Track) Ref() TrackRef {
	return TrackRef{ID: t.ID, Name: t.Name, Artist: t.Artist}
}

// Recommendation is one ranked neighbor of a query track.
type Recommendation struct {
	ID         string  `json:"id" yaml:"id"`
	Name       string  `json:"name" yaml:"name"`
	Artist     string  `json:"artist" yaml:"artist"`
	Similarity float64 `json:"similarity" yaml:"similarity"`
}

// SeedResult pairs a query track with its ranked neighbors.
type SeedResult struct {
	Seed            TrackRef         `json:"seed" yaml:"seed"`
	Recommendations []Recommendation `json:"recommendations" yaml:"recommendations"`
}
