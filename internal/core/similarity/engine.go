// Package similarity answers nearest-track queries over a standardized
// feature matrix using cosine similarity.
//
// An Engine is built once per dataset. Construction is the only phase that
// writes engine state; every query afterwards is a pure read, so a single
// Engine may serve any number of goroutines without locking. Random seed
// selection draws from a fresh source on every call for the same reason.
package similarity

import (
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/ewilliams-labs/resonance/internal/core/domain"
	"github.com/ewilliams-labs/resonance/internal/core/features"
)

// DefaultSeed is the seed used for random seed-track selection.
const DefaultSeed int64 = 42

// SourceFunc returns a new random source for the given seed.
type SourceFunc func(seed int64) rand.Source

type options struct {
	features  []string
	seed      int64
	newSource SourceFunc
}

// Option configures an Engine.
type Option func(*options)

// WithFeatures sets the feature columns used for the matrix. An empty list
// keeps domain.DefaultFeatures.
func WithFeatures(names []string) Option {
	return func(o *options) {
		o.features = names
	}
}

// WithSeed sets the seed for RecommendRandom.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithRandSource replaces the random source factory used by
// RecommendRandom. The factory is called once per RecommendRandom call.
func WithRandSource(fn SourceFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.newSource = fn
		}
	}
}

// Engine holds a dataset, its standardized matrix and the cached row norms.
type Engine struct {
	dataset   domain.Dataset
	matrix    *features.Matrix
	norms     []float64
	index     map[string]int
	seed      int64
	newSource SourceFunc
}

// NewEngine standardizes the dataset once and caches row norms and the id
// index. It fails with a *domain.SchemaError when a feature column is
// missing and domain.ErrEmptyDataset when there are no rows.
func NewEngine(ds domain.Dataset, opts ...Option) (*Engine, error) {
	o := options{
		seed: DefaultSeed,
		newSource: func(seed int64) rand.Source {
			// #nosec G404 -- reproducible sampling, not security-sensitive
			return rand.NewSource(seed)
		},
	}
	for _, opt := range opts {
		opt(&o)
	}

	m, err := features.Standardize(ds, o.features)
	if err != nil {
		return nil, fmt.Errorf("similarity: build feature matrix: %w", err)
	}

	norms := make([]float64, m.Rows())
	for i := range norms {
		norms[i] = floats.Norm(m.RawRow(i), 2) + features.Epsilon
	}

	index := make(map[string]int, ds.Len())
	for i, t := range ds.Tracks {
		if _, dup := index[t.ID]; !dup {
			index[t.ID] = i
		}
	}

	return &Engine{
		dataset:   ds,
		matrix:    m,
		norms:     norms,
		index:     index,
		seed:      o.seed,
		newSource: o.newSource,
	}, nil
}

// Len returns the number of tracks in the engine.
func (e *Engine) Len() int {
	return e.dataset.Len()
}

// Features returns the column ordering of the feature matrix.
func (e *Engine) Features() []string {
	return e.matrix.Names()
}

// Track returns the track at position i.
func (e *Engine) Track(i int) (domain.Track, error) {
	if i < 0 || i >= e.Len() {
		return domain.Track{}, fmt.Errorf("similarity: row %d out of range [0,%d): %w", i, e.Len(), domain.ErrInvalidArgument)
	}
	return e.dataset.Tracks[i], nil
}

// Lookup resolves a track id to its first position.
func (e *Engine) Lookup(id string) (int, error) {
	i, ok := e.index[id]
	if !ok {
		return -1, &domain.NotFoundError{ID: id}
	}
	return i, nil
}

// Tracks returns the dataset rows. The slice must be treated as read-only.
func (e *Engine) Tracks() []domain.Track {
	return e.dataset.Tracks
}

// SimilarityRow returns the cosine similarity of row i against every row,
// including itself.
func (e *Engine) SimilarityRow(i int) ([]float64, error) {
	if i < 0 || i >= e.Len() {
		return nil, fmt.Errorf("similarity: row %d out of range [0,%d): %w", i, e.Len(), domain.ErrInvalidArgument)
	}
	return e.similarityRow(i), nil
}

func (e *Engine) similarityRow(i int) []float64 {
	query := e.matrix.RawRow(i)
	qnorm := e.norms[i]
	sims := make([]float64, e.Len())
	for j := range sims {
		sims[j] = floats.Dot(query, e.matrix.RawRow(j)) / (qnorm * e.norms[j])
	}
	return sims
}

// RecommendByID returns up to topK tracks most similar to id, in descending
// similarity order, never including the query track. Equal scores keep their
// dataset order.
func (e *Engine) RecommendByID(id string, topK int) ([]domain.Recommendation, error) {
	if topK < 0 {
		return nil, fmt.Errorf("similarity: top_k must be non-negative, got %d: %w", topK, domain.ErrInvalidArgument)
	}
	i, err := e.Lookup(id)
	if err != nil {
		return nil, err
	}
	return e.rank(i, e.similarityRow(i), topK), nil
}

func (e *Engine) rank(query int, sims []float64, topK int) []domain.Recommendation {
	order := make([]int, 0, len(sims))
	for j := range sims {
		if j != query {
			order = append(order, j)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return sims[order[a]] > sims[order[b]]
	})
	if topK < len(order) {
		order = order[:topK]
	}

	out := make([]domain.Recommendation, len(order))
	for k, j := range order {
		t := e.dataset.Tracks[j]
		out[k] = domain.Recommendation{
			ID:         t.ID,
			Name:       t.Name,
			Artist:     t.Artist,
			Similarity: sims[j],
		}
	}
	return out
}

// RecommendRandom draws min(n, Len()) distinct seed tracks using the
// configured seed and returns the recommendations for each, in draw order.
// Repeated calls on the same engine return identical results.
func (e *Engine) RecommendRandom(n, topK int) ([]domain.SeedResult, error) {
	if n < 0 {
		return nil, fmt.Errorf("similarity: n must be non-negative, got %d: %w", n, domain.ErrInvalidArgument)
	}
	if topK < 0 {
		return nil, fmt.Errorf("similarity: top_k must be non-negative, got %d: %w", topK, domain.ErrInvalidArgument)
	}

	seeds := e.SampleSeeds(n)
	out := make([]domain.SeedResult, 0, len(seeds))
	for _, i := range seeds {
		seed := e.dataset.Tracks[i]
		recs, err := e.RecommendByID(seed.ID, topK)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.SeedResult{Seed: seed.Ref(), Recommendations: recs})
	}
	return out, nil
}

// SampleSeeds returns min(n, Len()) distinct row positions drawn without
// replacement from a freshly seeded source.
func (e *Engine) SampleSeeds(n int) []int {
	k := min(max(n, 0), e.Len())
	// #nosec G404 -- reproducible sampling, not security-sensitive
	rng := rand.New(e.newSource(e.seed))
	return rng.Perm(e.Len())[:k]
}
