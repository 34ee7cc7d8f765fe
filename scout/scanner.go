package scout

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/luminastro/influence-engine/core"
	"github.com/luminastro/influence-engine/internal/logging"
	"github.com/luminastro/influence-engine/internal/observability"
	"github.com/luminastro/influence-engine/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrScanCancelled is returned when a scan is cancelled before completion.
// Cancellation is a distinct terminal state: no partial ranking is ever
// returned, and callers should not present it as a failure.
var ErrScanCancelled = errors.New("scan cancelled")

// Request carries one scan invocation's inputs. All fields are treated as
// immutable for the duration of the scan.
type Request struct {
	Candidates []model.Candidate
	Lines      []model.Line
	Rules      *RuleSet
	// Progress receives phase and percent events; nil disables reporting.
	Progress ProgressFunc
}

// Scanner runs candidate scans. Safe for concurrent use; each Scan call is
// independent.
type Scanner struct {
	cfg     Config
	log     logging.Logger
	metrics *observability.ScoutCollector
	tracer  trace.Tracer
}

// NewScanner builds a scanner. log and metrics may be nil.
func NewScanner(cfg Config, log logging.Logger, metrics *observability.ScoutCollector) *Scanner {
	if log == nil {
		log = logging.Noop()
	}
	return &Scanner{
		cfg:     cfg.normalized(),
		log:     log,
		metrics: metrics,
		tracer:  otel.Tracer("scout"),
	}
}

// scanJob is the per-scan immutable state shared by both strategies.
type scanJob struct {
	candidates []model.Candidate
	lines      []model.Line
	rules      *RuleSet
	filter     *prefilter
	progress   *progressTracker
}

// Scan scores every candidate against the line set and returns the ranked
// results. The contract is all-or-nothing: cancellation or any worker
// failure yields no results at all.
func (s *Scanner) Scan(ctx context.Context, req Request) ([]model.CandidateResult, error) {
	scanID := uuid.NewString()
	ctx, log := logging.WithScanLogger(ctx, s.log, scanID)

	ctx, span := s.tracer.Start(ctx, "scout.scan", trace.WithAttributes(
		attribute.Int("scout.candidates", len(req.Candidates)),
		attribute.Int("scout.lines", len(req.Lines)),
	))
	defer span.End()

	tracker := newProgressTracker(req.Progress, len(req.Candidates))
	strat := s.selectStrategy(ctx, len(req.Candidates))
	span.SetAttributes(attribute.String("scout.strategy", strat.name()))
	if s.metrics != nil {
		s.metrics.SetActiveLines(len(req.Lines))
	}

	start := time.Now()
	results, err := s.runScan(ctx, req, strat, tracker)
	elapsed := time.Since(start)

	switch {
	case errors.Is(err, ErrScanCancelled):
		tracker.phase(PhaseIdle)
		span.SetStatus(codes.Ok, "cancelled")
		s.observe(strat.name(), "cancelled", 0, elapsed)
		log.Info(ctx, "scan cancelled",
			logging.String("strategy", strat.name()),
			logging.Int("candidates", len(req.Candidates)))
		return nil, err
	case err != nil:
		tracker.phase(PhaseError)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.observe(strat.name(), "error", 0, elapsed)
		log.Error(ctx, "scan failed", logging.Err(err))
		return nil, err
	}

	tracker.phase(PhaseComplete)
	s.observe(strat.name(), "complete", len(req.Candidates), elapsed)
	log.Info(ctx, "scan complete",
		logging.String("strategy", strat.name()),
		logging.Int("candidates", len(req.Candidates)),
		logging.Int("lines", len(req.Lines)),
		logging.Float64("duration_ms", float64(elapsed.Milliseconds())))
	return results, nil
}

func (s *Scanner) runScan(ctx context.Context, req Request, strat strategy, tracker *progressTracker) ([]model.CandidateResult, error) {
	tracker.phase(PhaseInitializing)
	job, err := s.prepare(ctx, req, tracker)
	if err != nil {
		return nil, err
	}

	tracker.phase(PhaseComputing)
	ctx, span := s.tracer.Start(ctx, "scout.strategy",
		trace.WithAttributes(attribute.String("scout.strategy", strat.name())))
	results, err := strat.run(ctx, job)
	span.End()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrScanCancelled
		}
		return nil, err
	}

	sortResults(results)
	return results, nil
}

// prepare validates the line set and builds the shared job. Cancellation
// during initialization aborts before any scoring work.
func (s *Scanner) prepare(ctx context.Context, req Request, tracker *progressTracker) (*scanJob, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrScanCancelled
	}
	if err := model.ValidateLines(req.Lines); err != nil {
		return nil, fmt.Errorf("invalid line set: %w", err)
	}

	var filter *prefilter
	if s.cfg.Prefilter {
		filter = newPrefilter(req.Lines, s.cfg.SimplifyToleranceDeg)
	}
	return &scanJob{
		candidates: req.Candidates,
		lines:      req.Lines,
		rules:      req.Rules,
		filter:     filter,
		progress:   tracker,
	}, nil
}

func (s *Scanner) observe(strategy, outcome string, candidates int, elapsed time.Duration) {
	if s.metrics != nil {
		s.metrics.ObserveScan(strategy, outcome, candidates, elapsed)
	}
}

// scoreCandidate folds one candidate's line influences into category
// scores. Zero-score influences contribute nothing and zero-score
// categories are dropped entirely, so a pre-filtered candidate and a fully
// scored irrelevant one produce identical results.
func scoreCandidate(job *scanJob, cand model.Candidate) model.CandidateResult {
	result := model.CandidateResult{Candidate: cand}
	if job.filter != nil && !job.filter.relevant(cand.Coordinate) {
		return result
	}

	analysis := core.Analyze(cand.Coordinate, job.lines)

	type catKey struct {
		category string
		nature   model.Nature
	}
	totals := make(map[catKey]float64)
	for _, inf := range analysis.Influences {
		if inf.Score <= 0 {
			continue
		}
		contribution := inf.Score * inf.Level.Weight()
		for _, rule := range job.rules.For(inf.Line) {
			totals[catKey{category: rule.Category, nature: rule.Nature}] += contribution
		}
	}
	if len(totals) == 0 {
		return result
	}

	result.Categories = make([]model.CategoryScore, 0, len(totals))
	for key, score := range totals {
		result.Categories = append(result.Categories, model.CategoryScore{
			Category: key.category,
			Nature:   key.nature,
			Score:    score,
		})
	}
	sort.Slice(result.Categories, func(i, j int) bool {
		a, b := result.Categories[i], result.Categories[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Nature < b.Nature
	})

	// The total is summed in sorted category order: float addition is not
	// associative, and map iteration order must never leak into scores.
	for _, cs := range result.Categories {
		switch cs.Nature {
		case model.NatureBeneficial:
			result.TotalScore += cs.Score
			result.BeneficialCategories++
		case model.NatureChallenging:
			result.TotalScore -= cs.Score
			result.ChallengingCategories++
		}
	}
	return result
}
