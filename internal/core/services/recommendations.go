package services

import (
	"context"
	"errors"
	"time"

	"github.com/ewilliams-labs/resonance/internal/core/domain"
	"github.com/ewilliams-labs/resonance/internal/core/matching"
	"github.com/ewilliams-labs/resonance/internal/core/ports"
	"github.com/ewilliams-labs/resonance/internal/core/similarity"
	"github.com/ewilliams-labs/resonance/internal/logging"
	"github.com/ewilliams-labs/resonance/internal/metrics"
	"github.com/ewilliams-labs/resonance/internal/worker"
)

// BatchItem is the outcome of one id in a batch query.
type BatchItem struct {
	ID     string
	Result domain.SeedResult
	Err    error
}

// Recommendations is the query facade over a similarity engine. It adds
// logging, metrics, fuzzy seed resolution and batched queries.
type Recommendations struct {
	engine *similarity.Engine
	pool   *worker.Pool
}

// NewRecommendations wires the facade. pool may be nil, in which case Batch
// runs queries sequentially.
func NewRecommendations(engine *similarity.Engine, pool *worker.Pool) *Recommendations {
	metrics.CatalogTracks.Set(float64(engine.Len()))
	return &Recommendations{engine: engine, pool: pool}
}

// CatalogSize returns the number of tracks available to queries.
func (s *Recommendations) CatalogSize() int {
	return s.engine.Len()
}

// ByID returns the topK neighbours of the track with id.
func (s *Recommendations) ByID(ctx context.Context, id string, topK int) (domain.SeedResult, error) {
	start := time.Now()
	result, err := s.byID(id, topK)
	s.observe(ctx, "by_id", start, err)
	return result, err
}

func (s *Recommendations) byID(id string, topK int) (domain.SeedResult, error) {
	i, err := s.engine.Lookup(id)
	if err != nil {
		return domain.SeedResult{}, err
	}
	recs, err := s.engine.RecommendByID(id, topK)
	if err != nil {
		return domain.SeedResult{}, err
	}
	seed, _ := s.engine.Track(i)
	return domain.SeedResult{Seed: seed.Ref(), Recommendations: recs}, nil
}

// First answers the query for the first catalog row.
func (s *Recommendations) First(ctx context.Context, topK int) (domain.SeedResult, error) {
	seed, err := s.engine.Track(0)
	if err != nil {
		return domain.SeedResult{}, err
	}
	return s.ByID(ctx, seed.ID, topK)
}

// Random answers the query for n reproducibly sampled seeds.
func (s *Recommendations) Random(ctx context.Context, n, topK int) ([]domain.SeedResult, error) {
	start := time.Now()
	results, err := s.engine.RecommendRandom(n, topK)
	s.observe(ctx, "random", start, err)
	return results, err
}

// Search resolves a free-text title (and optional artist) to the best
// matching catalog track and answers the query for it.
func (s *Recommendations) Search(ctx context.Context, title, artist string, topK int) (domain.SeedResult, error) {
	start := time.Now()
	result, err := s.search(title, artist, topK)
	s.observe(ctx, "search", start, err)
	return result, err
}

func (s *Recommendations) search(title, artist string, topK int) (domain.SeedResult, error) {
	if topK < 0 {
		return domain.SeedResult{}, domain.ErrInvalidArgument
	}
	track, _, err := matching.Resolve(s.engine.Tracks(), title, artist)
	if err != nil {
		return domain.SeedResult{}, err
	}
	return s.byID(track.ID, topK)
}

// Batch answers one query per id, concurrently when a pool is configured,
// and returns the items in the order of ids.
func (s *Recommendations) Batch(ctx context.Context, ids []string, topK int) ([]BatchItem, error) {
	start := time.Now()
	items, err := s.batch(ctx, ids, topK)
	s.observe(ctx, "batch", start, err)
	return items, err
}

func (s *Recommendations) batch(ctx context.Context, ids []string, topK int) ([]BatchItem, error) {
	if topK < 0 {
		return nil, domain.ErrInvalidArgument
	}

	items := make([]BatchItem, len(ids))
	if s.pool == nil {
		for i, id := range ids {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			result, err := s.byID(id, topK)
			items[i] = BatchItem{ID: id, Result: result, Err: err}
		}
		return items, nil
	}

	results, err := s.pool.Run(ctx, ids, topK)
	if err != nil {
		return nil, err
	}
	for i, r := range results {
		items[i] = BatchItem{ID: r.TrackID, Err: r.Err}
		if r.Err != nil {
			continue
		}
		idx, _ := s.engine.Lookup(r.TrackID)
		seed, _ := s.engine.Track(idx)
		items[i].Result = domain.SeedResult{Seed: seed.Ref(), Recommendations: r.Recommendations}
	}
	return items, nil
}

func (s *Recommendations) observe(ctx context.Context, operation string, start time.Time, err error) {
	elapsed := time.Since(start)
	outcome := Outcome(err)
	metrics.RecordQuery(operation, outcome, elapsed)

	event := logging.Ctx(ctx).Debug()
	if err != nil && outcome == "error" {
		event = logging.Ctx(ctx).Error().Err(err)
	}
	event.Str("operation", operation).
		Str("outcome", outcome).
		Dur("elapsed", elapsed).
		Msg("recommendation query")
}

// Outcome classifies err into a metrics label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, ports.ErrNoConfidentMatch):
		return "no_match"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid"
	default:
		return "error"
	}
}
