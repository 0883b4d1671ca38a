package domain

// DefaultFeatures is the descriptor ordering used when no explicit feature
// list is configured. Column order in every feature matrix follows the list
// it was built from.
var DefaultFeatures = []string{
	"danceability",
	"energy",
	"valence",
	"acousticness",
	"instrumentalness",
	"liveness",
	"speechiness",
	"tempo",
	"loudness",
	"popularity",
}

// Track represents one row of the catalog.
type Track struct {
	ID          string
	Name        string
	Artist      string
	Album       string             // optional
	ReleaseDate string             // optional, as reported by the source
	Features    map[string]float64 // descriptor values keyed by column name
}

// Feature returns the named descriptor value and whether it is present.
func (t Track) Feature(name string) (float64, bool) {
	v, ok := t.Features[name]
	return v, ok
}

// HasFeatures reports whether every named descriptor is present.
func (t Track) HasFeatures(names []string) bool {
	for _, name := range names {
		if _, ok := t.Features[name]; !ok {
			return false
		}
	}
	return true
}

// SetFeature stores a descriptor value, allocating the map on first use.
func (t *Track) SetFeature(name string, value float64) {
	if t.Features == nil {
		t.Features = make(map[string]float64)
	}
	t.Features[name] = value
}

// ResolveFeatures returns names, or DefaultFeatures when names is empty.
// The returned slice is always a copy.
func ResolveFeatures(names []string) []string {
	if len(names) == 0 {
		names = DefaultFeatures
	}
	out := make([]string, len(names))
	copy(out, names)
	return out
}
