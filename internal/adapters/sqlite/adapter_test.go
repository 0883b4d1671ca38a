package sqlite

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/ewilliams-labs/resonance/internal/core/domain"
)

var testFeatures = []string{"energy", "valence"}

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	a, err := NewAdapter(":memory:")
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func track(id string, features map[string]float64) domain.Track {
	return domain.Track{ID: id, Name: "Song " + id, Artist: "Artist " + id, Features: features}
}

func ids(ds domain.Dataset) []string {
	out := make([]string, 0, ds.Len())
	for _, t := range ds.Tracks {
		out = append(out, t.ID)
	}
	return out
}

func TestAdapter_SaveAndLoad(t *testing.T) {
	tests := []struct {
		name    string
		tracks  []domain.Track
		wantIDs []string
		wantErr error
	}{
		{
			name: "preserves insertion order",
			tracks: []domain.Track{
				track("z", map[string]float64{"energy": 0.1, "valence": 0.2}),
				track("a", map[string]float64{"energy": 0.3, "valence": 0.4}),
				track("m", map[string]float64{"energy": 0.5, "valence": 0.6}),
			},
			wantIDs: []string{"z", "a", "m"},
		},
		{
			name: "drops rows missing a requested feature",
			tracks: []domain.Track{
				track("a", map[string]float64{"energy": 0.1, "valence": 0.2}),
				track("b", map[string]float64{"energy": 0.3}),
				track("c", map[string]float64{"energy": 0.5, "valence": 0.6, "tempo": 120}),
			},
			wantIDs: []string{"a", "c"},
		},
		{
			name: "first duplicate wins",
			tracks: []domain.Track{
				track("a", map[string]float64{"energy": 0.1, "valence": 0.2}),
				track("a", map[string]float64{"energy": 0.9, "valence": 0.9}),
				track("b", map[string]float64{"energy": 0.5, "valence": 0.6}),
			},
			wantIDs: []string{"a", "b"},
		},
		{
			name: "missing feature column",
			tracks: []domain.Track{
				track("a", map[string]float64{"energy": 0.1}),
			},
			wantErr: domain.ErrSchema,
		},
		{
			name:    "empty catalog",
			tracks:  nil,
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdapter(t)
			ctx := context.Background()

			if err := a.SaveCatalog(ctx, "test", tt.tracks); err != nil {
				t.Fatalf("save catalog: %v", err)
			}

			ds, err := a.LoadDataset(ctx, testFeatures)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("load dataset: %v", err)
			}
			if got := ids(ds); !reflect.DeepEqual(got, tt.wantIDs) {
				t.Fatalf("ids: got %v, want %v", got, tt.wantIDs)
			}
		})
	}
}

func TestAdapter_SchemaErrorListsMissing(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	if err := a.SaveCatalog(ctx, "test", []domain.Track{track("a", map[string]float64{"tempo": 90})}); err != nil {
		t.Fatalf("save catalog: %v", err)
	}

	_, err := a.LoadDataset(ctx, testFeatures)
	var schemaErr *domain.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if !reflect.DeepEqual(schemaErr.Missing, testFeatures) {
		t.Fatalf("missing: got %v, want %v", schemaErr.Missing, testFeatures)
	}
}

func TestAdapter_RoundTripsMetadata(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	in := domain.Track{
		ID:          "t1",
		Name:        "Kun Faya Kun",
		Artist:      "A. R. Rahman, Javed Ali",
		Album:       "Rockstar",
		ReleaseDate: "2011-09-30",
		Features:    map[string]float64{"energy": 0.42, "valence": 0.31},
	}
	if err := a.SaveCatalog(ctx, "playlist:abc", []domain.Track{in}); err != nil {
		t.Fatalf("save catalog: %v", err)
	}

	ds, err := a.LoadDataset(ctx, testFeatures)
	if err != nil {
		t.Fatalf("load dataset: %v", err)
	}
	if ds.Len() != 1 {
		t.Fatalf("expected 1 track, got %d", ds.Len())
	}
	if got := ds.Tracks[0]; !reflect.DeepEqual(got, in) {
		t.Fatalf("track: got %+v, want %+v", got, in)
	}
}

func TestAdapter_SaveReplacesCatalog(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	first := []domain.Track{
		track("a", map[string]float64{"energy": 0.1, "valence": 0.2}),
		track("b", map[string]float64{"energy": 0.3, "valence": 0.4}),
	}
	second := []domain.Track{
		track("c", map[string]float64{"energy": 0.5, "valence": 0.6}),
	}
	if err := a.SaveCatalog(ctx, "first", first); err != nil {
		t.Fatalf("save first: %v", err)
	}
	if err := a.SaveCatalog(ctx, "second", second); err != nil {
		t.Fatalf("save second: %v", err)
	}

	ds, err := a.LoadDataset(ctx, testFeatures)
	if err != nil {
		t.Fatalf("load dataset: %v", err)
	}
	if got := ids(ds); !reflect.DeepEqual(got, []string{"c"}) {
		t.Fatalf("ids: got %v, want [c]", got)
	}

	imp, err := a.LastImport(ctx)
	if err != nil {
		t.Fatalf("last import: %v", err)
	}
	if imp.Source != "second" || imp.TrackCount != 1 {
		t.Fatalf("import: got %+v", imp)
	}
	if _, err := uuid.Parse(imp.ID); err != nil {
		t.Fatalf("import id %q is not a uuid: %v", imp.ID, err)
	}
}

func TestAdapter_LastImportEmpty(t *testing.T) {
	a := newTestAdapter(t)
	if _, err := a.LastImport(context.Background()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
