// Package worker fans similarity queries out over a fixed set of goroutines.
package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/ewilliams-labs/resonance/internal/core/domain"
	"github.com/ewilliams-labs/resonance/internal/core/ports"
	"github.com/ewilliams-labs/resonance/internal/logging"
)

// ErrPoolStopped is returned by Run after Stop.
var ErrPoolStopped = errors.New("worker: pool stopped")

// Job is one seed query. Done receives exactly one Result.
type Job struct {
	Index   int
	TrackID string
	TopK    int
	Done    chan<- Result
}

// Result is the outcome of one Job.
type Result struct {
	Index           int
	TrackID         string
	Recommendations []domain.Recommendation
	Err             error
}

// Pool runs similarity queries on background workers.
type Pool struct {
	querier ports.SimilarityQuerier
	jobs    chan Job
	wg      sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// NewPool creates a worker pool with the given queue size.
func NewPool(querier ports.SimilarityQuerier, queueSize int) *Pool {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{querier: querier, jobs: make(chan Job, queueSize)}
}

// Start launches the worker goroutines.
func (p *Pool) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.processJob(job)
			}
		}()
	}
}

// Stop closes the queue and waits for queued jobs to finish. It is safe to
// call more than once.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}

// Run answers one query per id and returns the results in the order of ids.
// Per-id failures are reported in Result.Err; the returned error is only
// set when the pool is stopped or ctx ends before every job is queued or
// answered.
func (p *Pool) Run(ctx context.Context, ids []string, topK int) ([]Result, error) {
	results := make([]Result, len(ids))
	if len(ids) == 0 {
		return results, nil
	}
	done := make(chan Result, len(ids))

	queued, err := p.enqueue(ctx, ids, topK, done)
	if err != nil && queued == 0 {
		return nil, err
	}

	for received := 0; received < queued; received++ {
		select {
		case r := <-done:
			results[r.Index] = r
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (p *Pool) enqueue(ctx context.Context, ids []string, topK int, done chan<- Result) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return 0, ErrPoolStopped
	}

	for i, id := range ids {
		job := Job{Index: i, TrackID: id, TopK: topK, Done: done}
		select {
		case p.jobs <- job:
		case <-ctx.Done():
			return i, ctx.Err()
		}
	}
	return len(ids), nil
}

func (p *Pool) processJob(job Job) {
	recs, err := p.querier.RecommendByID(job.TrackID, job.TopK)
	if err != nil {
		logging.Debug().Err(err).Str("track_id", job.TrackID).Msg("worker: query failed")
	}
	if job.Done != nil {
		job.Done <- Result{Index: job.Index, TrackID: job.TrackID, Recommendations: recs, Err: err}
	}
}
