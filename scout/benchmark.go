package scout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/luminastro/influence-engine/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// BenchmarkResult reports the wall-clock comparison of the two strategies
// over identical inputs. Neither run's ranking is "the" result; callers
// decide what to display.
type BenchmarkResult struct {
	SequentialMs   float64 `json:"sequentialMs"`
	ParallelMs     float64 `json:"parallelMs"`
	CandidateCount int     `json:"candidateCount"`
	LineCount      int     `json:"lineCount"`
	WorkerCount    int     `json:"workerCount"`
}

// Benchmark runs the sequential and parallel strategies back-to-back over
// the same inputs and times each. Divergent rankings are a correctness bug
// and fail the benchmark.
func (s *Scanner) Benchmark(ctx context.Context, req Request) (BenchmarkResult, error) {
	ctx, span := s.tracer.Start(ctx, "scout.benchmark", trace.WithAttributes(
		attribute.Int("scout.candidates", len(req.Candidates)),
		attribute.Int("scout.lines", len(req.Lines)),
		attribute.Int("scout.workers", s.cfg.Workers),
	))
	defer span.End()

	result := BenchmarkResult{
		CandidateCount: len(req.Candidates),
		LineCount:      len(req.Lines),
		WorkerCount:    s.cfg.Workers,
	}

	seqResults, elapsed, err := s.timedRun(ctx, req, sequentialStrategy{})
	if err != nil {
		return result, fmt.Errorf("sequential run: %w", err)
	}
	result.SequentialMs = elapsed

	parResults, elapsed, err := s.timedRun(ctx, req, &parallelStrategy{workers: s.cfg.Workers})
	if err != nil {
		return result, fmt.Errorf("parallel run: %w", err)
	}
	result.ParallelMs = elapsed

	if err := rankingsEqual(seqResults, parResults); err != nil {
		return result, fmt.Errorf("strategy rankings diverged: %w", err)
	}
	return result, nil
}

func (s *Scanner) timedRun(ctx context.Context, req Request, strat strategy) ([]model.CandidateResult, float64, error) {
	tracker := newProgressTracker(req.Progress, len(req.Candidates))
	start := time.Now()
	results, err := s.runScan(ctx, req, strat, tracker)
	elapsed := time.Since(start)
	s.observe(strat.name(), outcomeOf(err), len(req.Candidates), elapsed)

	// Every run delivers exactly one terminal event, failed or not, the
	// same way Scan does.
	switch {
	case errors.Is(err, ErrScanCancelled):
		tracker.phase(PhaseIdle)
		return nil, 0, err
	case err != nil:
		tracker.phase(PhaseError)
		return nil, 0, err
	}
	tracker.phase(PhaseComplete)
	return results, float64(elapsed.Microseconds()) / 1000, nil
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrScanCancelled):
		return "cancelled"
	case err != nil:
		return "error"
	default:
		return "complete"
	}
}

func rankingsEqual(a, b []model.CandidateResult) error {
	if len(a) != len(b) {
		return fmt.Errorf("result counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Candidate.ID != b[i].Candidate.ID {
			return fmt.Errorf("rank %d: candidate %s vs %s", i, a[i].Candidate.ID, b[i].Candidate.ID)
		}
		if math.Abs(a[i].TotalScore-b[i].TotalScore) > 1e-9 {
			return fmt.Errorf("rank %d (%s): score %f vs %f", i, a[i].Candidate.ID, a[i].TotalScore, b[i].TotalScore)
		}
	}
	return nil
}
