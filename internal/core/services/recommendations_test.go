package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/resonance/internal/core/domain"
	"github.com/ewilliams-labs/resonance/internal/core/ports"
	"github.com/ewilliams-labs/resonance/internal/core/similarity"
	"github.com/ewilliams-labs/resonance/internal/worker"
)

var testFeatures = []string{"energy", "valence", "tempo"}

func newTestEngine(t *testing.T) *similarity.Engine {
	t.Helper()
	rows := []struct {
		id, name, artist string
		energy, valence  float64
		tempo            float64
	}{
		{"t1", "Kesariya", "Arijit Singh", 0.45, 0.30, 94},
		{"t2", "Tum Hi Ho", "Arijit Singh", 0.40, 0.20, 90},
		{"t3", "Jai Ho", "A. R. Rahman", 0.90, 0.85, 138},
		{"t4", "Chaiyya Chaiyya", "Sukhwinder Singh", 0.85, 0.70, 130},
		{"t5", "Kun Faya Kun", "A. R. Rahman", 0.30, 0.25, 75},
		{"t6", "Malang", "Ved Sharma", 0.80, 0.60, 120},
	}
	tracks := make([]domain.Track, len(rows))
	for i, r := range rows {
		tracks[i] = domain.Track{ID: r.id, Name: r.name, Artist: r.artist}
		tracks[i].SetFeature("energy", r.energy)
		tracks[i].SetFeature("valence", r.valence)
		tracks[i].SetFeature("tempo", r.tempo)
	}

	engine, err := similarity.NewEngine(domain.NewDataset(testFeatures, tracks), similarity.WithFeatures(testFeatures))
	require.NoError(t, err)
	return engine
}

func TestRecommendations_ByID(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewRecommendations(engine, nil)
	ctx := context.Background()

	got, err := svc.ByID(ctx, "t3", 2)
	require.NoError(t, err)
	assert.Equal(t, domain.TrackRef{ID: "t3", Name: "Jai Ho", Artist: "A. R. Rahman"}, got.Seed)

	want, err := engine.RecommendByID("t3", 2)
	require.NoError(t, err)
	assert.Equal(t, want, got.Recommendations)
	assert.Equal(t, 6, svc.CatalogSize())

	_, err = svc.ByID(ctx, "nope", 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.ByID(ctx, "t3", -1)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestRecommendations_First(t *testing.T) {
	svc := NewRecommendations(newTestEngine(t), nil)

	got, err := svc.First(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "t1", got.Seed.ID)
	assert.Len(t, got.Recommendations, 3)
}

func TestRecommendations_Random(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewRecommendations(engine, nil)
	ctx := context.Background()

	first, err := svc.Random(ctx, 3, 2)
	require.NoError(t, err)
	second, err := svc.Random(ctx, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	require.Len(t, first, 3)

	want, err := engine.RecommendRandom(3, 2)
	require.NoError(t, err)
	assert.Equal(t, want, first)

	_, err = svc.Random(ctx, -1, 2)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestRecommendations_Search(t *testing.T) {
	svc := NewRecommendations(newTestEngine(t), nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		title   string
		artist  string
		wantID  string
		wantErr error
	}{
		{name: "title and artist", title: "jai ho", artist: "AR Rahman", wantID: "t3"},
		{name: "title only", title: "Chaiyya Chaiyya (Remastered)", wantID: "t4"},
		{name: "no match", title: "Bohemian Rhapsody", artist: "Queen", wantErr: ports.ErrNoConfidentMatch},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.Search(ctx, tc.title, tc.artist, 2)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantID, got.Seed.ID)
			assert.Len(t, got.Recommendations, 2)
		})
	}
}

func TestRecommendations_Batch(t *testing.T) {
	engine := newTestEngine(t)
	pool := worker.NewPool(engine, 4)
	pool.Start(3)
	defer pool.Stop()

	ids := []string{"t6", "missing", "t1", "t6"}

	for _, tc := range []struct {
		name string
		svc  *Recommendations
	}{
		{name: "pooled", svc: NewRecommendations(engine, pool)},
		{name: "sequential", svc: NewRecommendations(engine, nil)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			items, err := tc.svc.Batch(context.Background(), ids, 2)
			require.NoError(t, err)
			require.Len(t, items, len(ids))

			for i, item := range items {
				assert.Equal(t, ids[i], item.ID, fmt.Sprintf("item %d", i))
				if ids[i] == "missing" {
					assert.True(t, errors.Is(item.Err, domain.ErrNotFound))
					continue
				}
				require.NoError(t, item.Err)
				want, err := engine.RecommendByID(ids[i], 2)
				require.NoError(t, err)
				assert.Equal(t, ids[i], item.Result.Seed.ID)
				assert.Equal(t, want, item.Result.Recommendations)
			}

			_, err = tc.svc.Batch(context.Background(), ids, -1)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{&domain.NotFoundError{ID: "x"}, "not_found"},
		{&ports.NoConfidentMatchError{Title: "x"}, "no_match"},
		{fmt.Errorf("wrapped: %w", domain.ErrInvalidArgument), "invalid"},
		{errors.New("boom"), "error"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Outcome(tc.err))
	}
}
