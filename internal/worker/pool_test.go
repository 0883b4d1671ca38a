package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ewilliams-labs/resonance/internal/core/domain"
)

type fakeQuerier struct {
	delay func(id string) time.Duration
	calls int32
}

func (f *fakeQuerier) RecommendByID(id string, topK int) ([]domain.Recommendation, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.delay != nil {
		time.Sleep(f.delay(id))
	}
	if id == "missing" {
		return nil, &domain.NotFoundError{ID: id}
	}
	recs := make([]domain.Recommendation, topK)
	for i := range recs {
		recs[i] = domain.Recommendation{ID: id + "-rec", Similarity: 1}
	}
	return recs, nil
}

func TestPoolRunPreservesOrder(t *testing.T) {
	q := &fakeQuerier{delay: func(id string) time.Duration {
		if id == "a" {
			return 20 * time.Millisecond
		}
		return 0
	}}
	pool := NewPool(q, 2)
	pool.Start(3)
	defer pool.Stop()

	ids := []string{"a", "b", "missing", "c"}
	results, err := pool.Run(context.Background(), ids, 2)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != len(ids) {
		t.Fatalf("results: got %d, want %d", len(results), len(ids))
	}
	for i, r := range results {
		if r.TrackID != ids[i] || r.Index != i {
			t.Fatalf("result %d: got %s/%d, want %s", i, r.TrackID, r.Index, ids[i])
		}
	}
	if !errors.Is(results[2].Err, domain.ErrNotFound) {
		t.Fatalf("expected not found for missing id, got %v", results[2].Err)
	}
	if len(results[0].Recommendations) != 2 || results[0].Err != nil {
		t.Fatalf("unexpected result for a: %+v", results[0])
	}
}

func TestPoolRunEmpty(t *testing.T) {
	pool := NewPool(&fakeQuerier{}, 1)
	results, err := pool.Run(context.Background(), nil, 5)
	if err != nil || len(results) != 0 {
		t.Fatalf("expected empty results, got %v, %v", results, err)
	}
}

func TestPoolRunAfterStop(t *testing.T) {
	pool := NewPool(&fakeQuerier{}, 1)
	pool.Start(1)
	pool.Stop()
	pool.Stop()

	if _, err := pool.Run(context.Background(), []string{"a"}, 1); !errors.Is(err, ErrPoolStopped) {
		t.Fatalf("expected ErrPoolStopped, got %v", err)
	}
}

func TestPoolRunContextCanceled(t *testing.T) {
	// Never started: the queue fills and Run must give up on ctx.
	pool := NewPool(&fakeQuerier{}, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := pool.Run(ctx, []string{"a", "b", "c"}, 1)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
