package scout

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/luminastro/influence-engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRules(t *testing.T) *RuleSet {
	t.Helper()
	rs, err := NewRuleSet([]Rule{
		{Planet: "Sun", Angle: "MC", Category: "career", Nature: model.NatureBeneficial},
		{Planet: "Jupiter", Angle: "MC", Category: "wealth", Nature: model.NatureBeneficial},
		{Planet: "Venus", Angle: "DSC", Category: "love", Nature: model.NatureBeneficial},
		{Planet: "Saturn", Angle: "PARAN", Category: "career", Nature: model.NatureChallenging},
		{Planet: "Mars", Angle: "LS", Category: "health", Nature: model.NatureChallenging},
		{Planet: "Neptune", Angle: "IC", Category: "home", Nature: model.NatureNeutral},
	})
	require.NoError(t, err)
	return rs
}

func testLines() []model.Line {
	anchor := model.Coordinate{Lat: 35, Lng: 139}
	return []model.Line{
		model.DirectionalLine{Planet: model.BodySun, Angle: model.AngleMC, Anchor: &anchor},
		model.DirectionalLine{Planet: model.BodyJupiter, Angle: model.AngleMC, Path: []model.Coordinate{
			{Lat: -60, Lng: 10}, {Lat: 0, Lng: 10}, {Lat: 60, Lng: 10},
		}},
		model.AspectLine{Planet: model.BodyVenus, Angle: model.AngleDSC, Aspect: "trine", Harmonious: true,
			Path: []model.Coordinate{{Lat: -60, Lng: -75}, {Lat: 0, Lng: -74}, {Lat: 60, Lng: -73}}},
		model.ParanLine{Primary: model.BodySaturn, Secondary: model.BodyMars,
			PrimaryAngle: model.AngleMC, SecondaryAngle: model.AngleDSC, LatitudeDeg: 51.5},
		model.LocalSpaceLine{Planet: model.BodyMars, Origin: model.Coordinate{Lat: 48.8, Lng: 2.3}, AzimuthDeg: 45},
	}
}

func genCandidates(n int, seed int64) []model.Candidate {
	rng := rand.New(rand.NewSource(seed))
	candidates := make([]model.Candidate, 0, n)
	for i := 0; i < n; i++ {
		candidates = append(candidates, model.Candidate{
			ID:      fmt.Sprintf("c%04d", i),
			Name:    fmt.Sprintf("City %d", i),
			Country: fmt.Sprintf("Country %d", i%7),
			Coordinate: model.Coordinate{
				Lat: rng.Float64()*130 - 60,
				Lng: rng.Float64()*360 - 180,
			},
		})
	}
	return candidates
}

func TestScan_EmptyCandidates(t *testing.T) {
	s := NewScanner(DefaultConfig(), nil, nil)
	results, err := s.Scan(context.Background(), Request{Lines: testLines(), Rules: testRules(t)})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestScan_EmptyLines(t *testing.T) {
	s := NewScanner(DefaultConfig(), nil, nil)
	results, err := s.Scan(context.Background(), Request{
		Candidates: genCandidates(10, 1),
		Rules:      testRules(t),
	})
	require.NoError(t, err)
	require.Len(t, results, 10)
	for _, r := range results {
		assert.Zero(t, r.TotalScore)
		assert.Empty(t, r.Categories)
	}
}

func TestScan_RejectsMalformedLines(t *testing.T) {
	s := NewScanner(DefaultConfig(), nil, nil)
	_, err := s.Scan(context.Background(), Request{
		Candidates: genCandidates(5, 1),
		Lines: []model.Line{
			model.DirectionalLine{Planet: model.BodySun, Angle: model.AngleMC},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid line set")
}

func TestScan_CategoryFolding(t *testing.T) {
	s := NewScanner(DefaultConfig(), nil, nil)

	// One candidate sitting on the Saturn/Mars paran latitude, far from
	// everything else.
	results, err := s.Scan(context.Background(), Request{
		Candidates: []model.Candidate{
			{ID: "london", Name: "London", Country: "UK", Coordinate: model.Coordinate{Lat: 51.5, Lng: -0.1}},
		},
		Lines: testLines(),
		Rules: testRules(t),
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	require.NotEmpty(t, r.Categories)
	var career *model.CategoryScore
	for i := range r.Categories {
		if r.Categories[i].Category == "career" && r.Categories[i].Nature == model.NatureChallenging {
			career = &r.Categories[i]
		}
	}
	require.NotNil(t, career, "paran rule should produce a challenging career category")
	// Gold-level paran influence: score 85 × gold weight 0.85.
	assert.InDelta(t, 85*0.85, career.Score, 1.0)
	assert.Negative(t, r.TotalScore-floatSum(r, model.NatureBeneficial))
	assert.Equal(t, 1, r.ChallengingCategories)
}

func floatSum(r model.CandidateResult, nature model.Nature) float64 {
	var sum float64
	for _, c := range r.Categories {
		if c.Nature == nature {
			sum += c.Score
		}
	}
	return sum
}

func TestScan_NeutralCategoriesExcludedFromTotal(t *testing.T) {
	rs, err := NewRuleSet([]Rule{
		{Planet: "Sun", Angle: "MC", Category: "identity", Nature: model.NatureNeutral},
	})
	require.NoError(t, err)

	anchor := model.Coordinate{Lat: 10, Lng: 10}
	s := NewScanner(DefaultConfig(), nil, nil)
	results, err := s.Scan(context.Background(), Request{
		Candidates: []model.Candidate{{ID: "x", Coordinate: anchor}},
		Lines: []model.Line{
			model.DirectionalLine{Planet: model.BodySun, Angle: model.AngleMC, Anchor: &anchor},
		},
		Rules: rs,
	})
	require.NoError(t, err)
	require.Len(t, results[0].Categories, 1)
	assert.Equal(t, model.NatureNeutral, results[0].Categories[0].Nature)
	assert.Zero(t, results[0].TotalScore)
	assert.Zero(t, results[0].BeneficialCategories)
}

func TestScan_AspectPolarityFlipsNature(t *testing.T) {
	rs, err := NewRuleSet([]Rule{
		{Planet: "Venus", Angle: "DSC", Category: "love", Nature: model.NatureBeneficial},
	})
	require.NoError(t, err)

	path := []model.Coordinate{{Lat: -60, Lng: 5}, {Lat: 60, Lng: 5}}
	candidate := model.Candidate{ID: "x", Coordinate: model.Coordinate{Lat: 0, Lng: 5}}
	s := NewScanner(DefaultConfig(), nil, nil)

	harmonious, err := s.Scan(context.Background(), Request{
		Candidates: []model.Candidate{candidate},
		Lines: []model.Line{model.AspectLine{Planet: model.BodyVenus, Angle: model.AngleDSC,
			Aspect: "trine", Harmonious: true, Path: path}},
		Rules: rs,
	})
	require.NoError(t, err)

	hard, err := s.Scan(context.Background(), Request{
		Candidates: []model.Candidate{candidate},
		Lines: []model.Line{model.AspectLine{Planet: model.BodyVenus, Angle: model.AngleDSC,
			Aspect: "square", Harmonious: false, Path: path}},
		Rules: rs,
	})
	require.NoError(t, err)

	assert.Positive(t, harmonious[0].TotalScore)
	assert.Negative(t, hard[0].TotalScore)
	assert.InDelta(t, harmonious[0].TotalScore, -hard[0].TotalScore, 1e-9)
}

func TestScan_DeterminismAcrossStrategies(t *testing.T) {
	lines := testLines()
	rules := testRules(t)

	for trial := int64(0); trial < 5; trial++ {
		candidates := genCandidates(800, trial)

		seq := NewScanner(Config{Workers: 1, Prefilter: true, SimplifyToleranceDeg: 0.1}, nil, nil)
		par := NewScanner(Config{Workers: 4, ParallelThreshold: 1, Prefilter: true, SimplifyToleranceDeg: 0.1}, nil, nil)

		seqResults, err := seq.Scan(context.Background(), Request{Candidates: candidates, Lines: lines, Rules: rules})
		require.NoError(t, err)
		parResults, err := par.Scan(context.Background(), Request{Candidates: candidates, Lines: lines, Rules: rules})
		require.NoError(t, err)

		require.Equal(t, seqResults, parResults, "trial %d: strategies diverged", trial)
	}
}

func TestScan_PrefilterDoesNotChangeRanking(t *testing.T) {
	candidates := genCandidates(500, 99)
	lines := testLines()
	rules := testRules(t)

	filtered := NewScanner(Config{Workers: 1, Prefilter: true, SimplifyToleranceDeg: 0.1}, nil, nil)
	unfiltered := NewScanner(Config{Workers: 1, Prefilter: false}, nil, nil)

	a, err := filtered.Scan(context.Background(), Request{Candidates: candidates, Lines: lines, Rules: rules})
	require.NoError(t, err)
	b, err := unfiltered.Scan(context.Background(), Request{Candidates: candidates, Lines: lines, Rules: rules})
	require.NoError(t, err)

	require.Equal(t, a, b)
}

func TestScan_CancellationYieldsNoResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var events []ScanProgress
	s := NewScanner(Config{Workers: 4, ParallelThreshold: 1}, nil, nil)
	results, err := s.Scan(ctx, Request{
		Candidates: genCandidates(2000, 3),
		Lines:      testLines(),
		Rules:      testRules(t),
		Progress:   func(p ScanProgress) { events = append(events, p) },
	})

	require.ErrorIs(t, err, ErrScanCancelled)
	assert.Nil(t, results)
	require.NotEmpty(t, events)
	assert.Equal(t, PhaseIdle, events[len(events)-1].Phase, "cancel must end in idle, not error")
}

func TestScan_CancellationMidScan(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	candidates := genCandidates(5000, 4)

	fired := false
	s := NewScanner(Config{Workers: 1}, nil, nil)
	results, err := s.Scan(ctx, Request{
		Candidates: candidates,
		Lines:      testLines(),
		Rules:      testRules(t),
		Progress: func(p ScanProgress) {
			if p.Phase == PhaseComputing && !fired {
				fired = true
				cancel()
			}
		},
	})

	require.ErrorIs(t, err, ErrScanCancelled)
	assert.Nil(t, results)
}

func TestScan_ProgressMonotonicWithTerminal(t *testing.T) {
	var events []ScanProgress
	s := NewScanner(Config{Workers: 4, ParallelThreshold: 1, Prefilter: true, SimplifyToleranceDeg: 0.1}, nil, nil)
	_, err := s.Scan(context.Background(), Request{
		Candidates: genCandidates(1000, 5),
		Lines:      testLines(),
		Rules:      testRules(t),
		Progress:   func(p ScanProgress) { events = append(events, p) },
	})
	require.NoError(t, err)
	require.NotEmpty(t, events)

	terminals := 0
	prev := -1
	for _, e := range events {
		require.GreaterOrEqual(t, e.Processed, prev, "processed counts must be non-decreasing")
		prev = e.Processed
		if e.Phase == PhaseComplete || e.Phase == PhaseError || e.Phase == PhaseIdle {
			terminals++
		}
	}
	assert.Equal(t, 1, terminals, "exactly one terminal event")
	last := events[len(events)-1]
	assert.Equal(t, PhaseComplete, last.Phase)
	assert.Equal(t, float64(100), last.PercentComplete)
}

func TestScan_ResultsOrdered(t *testing.T) {
	s := NewScanner(Config{Workers: 1}, nil, nil)
	results, err := s.Scan(context.Background(), Request{
		Candidates: genCandidates(300, 11),
		Lines:      testLines(),
		Rules:      testRules(t),
	})
	require.NoError(t, err)

	for i := 1; i < len(results); i++ {
		a, b := results[i-1], results[i]
		if a.TotalScore != b.TotalScore {
			assert.Greater(t, a.TotalScore, b.TotalScore)
			continue
		}
		if a.BeneficialCategories != b.BeneficialCategories {
			assert.Greater(t, a.BeneficialCategories, b.BeneficialCategories)
			continue
		}
		assert.Less(t, a.Candidate.ID, b.Candidate.ID)
	}
}
