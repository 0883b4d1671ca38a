package domain

// Dataset is an ordered, read-only sequence of tracks. Position is the only
// addressing scheme the similarity engine uses.
type Dataset struct {
	// Columns are the descriptor columns the source provides.
	Columns []string
	Tracks  []Track
}

// NewDataset builds a dataset. When columns is nil it is derived from the
// union of feature names present on the tracks, in first-seen order.
func NewDataset(columns []string, tracks []Track) Dataset {
	if columns == nil {
		seen := make(map[string]struct{})
		for _, t := range tracks {
			for name := range t.Features {
				if _, ok := seen[name]; ok {
					continue
				}
				seen[name] = struct{}{}
				columns = append(columns, name)
			}
		}
	}
	return Dataset{Columns: columns, Tracks: tracks}
}

// Len returns the number of rows.
func (d Dataset) Len() int {
	return len(d.Tracks)
}

// HasColumn reports whether the dataset provides the named column.
func (d Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// MissingColumns returns the entries of required that the dataset lacks,
// preserving their order.
func (d Dataset) MissingColumns(required []string) []string {
	var missing []string
	for _, name := range required {
		if !d.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// DropIncomplete returns the tracks that carry every named feature, in
// order, and the number of tracks removed.
func DropIncomplete(tracks []Track, features []string) ([]Track, int) {
	kept := make([]Track, 0, len(tracks))
	for _, t := range tracks {
		if t.HasFeatures(features) {
			kept = append(kept, t)
		}
	}
	return kept, len(tracks) - len(kept)
}
