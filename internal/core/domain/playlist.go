package domain

// Playlist is a remote playlist snapshot used to populate the catalog.
type Playlist struct {
	ID     string
	Name   string
	Tracks []Track
}

func NewPlaylist(id, name string) (*Playlist, error) {
	if id == "" {
		return nil, ErrInvalidArgument
	}
	return &Playlist{
		ID:     id,
		Name:   name,
		Tracks: []Track{},
	}, nil
}

// AddTrack appends a track to the playlist while preventing duplicate ids.
// Tracks with an empty id are rejected with ErrInvalidArgument; a repeated
// id returns ErrDuplicateTrack and leaves the playlist unchanged.
func (p *Playlist) AddTrack(t Track) error {
	if t.ID == "" {
		return ErrInvalidArgument
	}
	for _, ex := range p.Tracks {
		if ex.ID == t.ID {
			return ErrDuplicateTrack
		}
	}
	p.Tracks = append(p.Tracks, t)
	return nil
}

// TrackIDs returns the ids of the playlist tracks in order.
func (p *Playlist) TrackIDs() []string {
	ids := make([]string, len(p.Tracks))
	for i, t := range p.Tracks {
		ids[i] = t.ID
	}
	return ids
}

// Analyze returns the mean of each descriptor across the tracks that carry
// it. An empty playlist yields an empty map.
func (p Playlist) Analyze() map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, t := range p.Tracks {
		for name, v := range t.Features {
			sums[name] += v
			counts[name]++
		}
	}
	for name, sum := range sums {
		sums[name] = sum / float64(counts[name])
	}
	return sums
}
