package scout

import (
	"context"
	"fmt"
	"time"

	"github.com/luminastro/influence-engine/internal/logging"
	"github.com/luminastro/influence-engine/model"
	"golang.org/x/sync/errgroup"
)

// strategy is one way of executing the scoring loop. Both implementations
// honour the same contract: identical inputs produce identical rankings.
type strategy interface {
	name() string
	run(ctx context.Context, job *scanJob) ([]model.CandidateResult, error)
}

// selectStrategy prefers the parallel strategy for large candidate sets
// when the pool probe succeeds; everything else runs sequentially. A
// failed probe is not a scan failure, only a logged fallback.
func (s *Scanner) selectStrategy(ctx context.Context, candidates int) strategy {
	if s.cfg.Workers <= 1 || candidates < s.cfg.ParallelThreshold {
		return sequentialStrategy{}
	}
	par := &parallelStrategy{workers: s.cfg.Workers}
	if err := par.probe(ctx); err != nil {
		s.log.Warn(ctx, "worker pool unavailable, falling back to sequential",
			logging.Err(err), logging.Int("workers", s.cfg.Workers))
		return sequentialStrategy{}
	}
	return par
}

// sequentialStrategy scores candidates one at a time on the caller's
// goroutine. Always available; the correctness baseline.
type sequentialStrategy struct{}

func (sequentialStrategy) name() string { return "sequential" }

func (sequentialStrategy) run(ctx context.Context, job *scanJob) ([]model.CandidateResult, error) {
	results := make([]model.CandidateResult, len(job.candidates))
	for i, cand := range job.candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results[i] = scoreCandidate(job, cand)
		job.progress.add(1)
	}
	return results, nil
}

// parallelStrategy partitions the candidate set into chunks scored by a
// bounded worker pool. Each worker writes into its own slice region, so no
// locks guard the results; the global sort afterwards erases any effect of
// chunk completion order.
type parallelStrategy struct {
	workers int
}

func (*parallelStrategy) name() string { return "parallel" }

// probe verifies the pool can actually run a task before a scan commits to
// it. A pool that cannot turn a no-op around quickly is treated as
// unavailable.
func (p *parallelStrategy) probe(ctx context.Context) error {
	done := make(chan struct{})
	go func() { close(done) }()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Second):
		return fmt.Errorf("pool probe timed out")
	}
}

func (p *parallelStrategy) run(ctx context.Context, job *scanJob) ([]model.CandidateResult, error) {
	total := len(job.candidates)
	results := make([]model.CandidateResult, total)

	// Several chunks per worker keeps the pool busy when chunk costs are
	// uneven (pre-filtered regions score much faster than dense ones).
	chunkSize := total / (p.workers * 4)
	if chunkSize < 1 {
		chunkSize = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for start := 0; start < total; start += chunkSize {
		// Cancellation is checked between chunk dispatches; chunks already
		// running finish, but their results are discarded with the scan.
		if err := ctx.Err(); err != nil {
			break
		}
		end := start + chunkSize
		if end > total {
			end = total
		}
		start, end := start, end
		g.Go(func() error {
			for i := start; i < end; i++ {
				results[i] = scoreCandidate(job, job.candidates[i])
			}
			job.progress.add(end - start)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
