package scout

import (
	"context"
	"testing"

	"github.com/luminastro/influence-engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBenchmark_RunsBothStrategies(t *testing.T) {
	s := NewScanner(Config{Workers: 4, ParallelThreshold: 1, Prefilter: true, SimplifyToleranceDeg: 0.1}, nil, nil)

	result, err := s.Benchmark(context.Background(), Request{
		Candidates: genCandidates(600, 21),
		Lines:      testLines(),
		Rules:      testRules(t),
	})
	require.NoError(t, err)

	assert.Equal(t, 600, result.CandidateCount)
	assert.Equal(t, len(testLines()), result.LineCount)
	assert.Equal(t, 4, result.WorkerCount)
	assert.GreaterOrEqual(t, result.SequentialMs, 0.0)
	assert.GreaterOrEqual(t, result.ParallelMs, 0.0)
}

func TestBenchmark_CancelledPropagates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var events []ScanProgress
	s := NewScanner(Config{Workers: 2, ParallelThreshold: 1}, nil, nil)
	_, err := s.Benchmark(ctx, Request{
		Candidates: genCandidates(100, 1),
		Lines:      testLines(),
		Rules:      testRules(t),
		Progress:   func(p ScanProgress) { events = append(events, p) },
	})
	require.ErrorIs(t, err, ErrScanCancelled)

	// A failing run still delivers exactly one terminal event; a cancel
	// terminates in idle, never error.
	terminals := 0
	for _, e := range events {
		switch e.Phase {
		case PhaseComplete, PhaseError, PhaseIdle:
			terminals++
		}
	}
	require.NotEmpty(t, events)
	assert.Equal(t, 1, terminals)
	assert.Equal(t, PhaseIdle, events[len(events)-1].Phase)
}

func TestBenchmark_InvalidLinesFail(t *testing.T) {
	var events []ScanProgress
	s := NewScanner(Config{Workers: 2}, nil, nil)
	_, err := s.Benchmark(context.Background(), Request{
		Candidates: genCandidates(10, 1),
		Lines:      []model.Line{model.DirectionalLine{}},
		Progress:   func(p ScanProgress) { events = append(events, p) },
	})
	require.Error(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, PhaseError, events[len(events)-1].Phase)
}

func TestRankingsEqual(t *testing.T) {
	a := []model.CandidateResult{
		{Candidate: model.Candidate{ID: "x"}, TotalScore: 10},
		{Candidate: model.Candidate{ID: "y"}, TotalScore: 5},
	}
	b := []model.CandidateResult{
		{Candidate: model.Candidate{ID: "x"}, TotalScore: 10},
		{Candidate: model.Candidate{ID: "y"}, TotalScore: 5},
	}
	require.NoError(t, rankingsEqual(a, b))

	b[1].TotalScore = 6
	require.Error(t, rankingsEqual(a, b))

	b = b[:1]
	require.Error(t, rankingsEqual(a, b))
}
