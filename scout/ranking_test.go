package scout

import (
	"testing"

	"github.com/luminastro/influence-engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortResults_TieBreaks(t *testing.T) {
	results := []model.CandidateResult{
		{Candidate: model.Candidate{ID: "b"}, TotalScore: 50, BeneficialCategories: 1},
		{Candidate: model.Candidate{ID: "a"}, TotalScore: 50, BeneficialCategories: 1},
		{Candidate: model.Candidate{ID: "c"}, TotalScore: 50, BeneficialCategories: 3},
		{Candidate: model.Candidate{ID: "d"}, TotalScore: 80},
		{Candidate: model.Candidate{ID: "e"}, TotalScore: -10},
	}

	sortResults(results)

	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.Candidate.ID
	}
	assert.Equal(t, []string{"d", "c", "a", "b", "e"}, ids)
}

func TestGroupByCountry(t *testing.T) {
	results := []model.CandidateResult{
		{Candidate: model.Candidate{ID: "1", Country: "Japan"}, TotalScore: 90},
		{Candidate: model.Candidate{ID: "2", Country: "Portugal"}, TotalScore: 70},
		{Candidate: model.Candidate{ID: "3", Country: "Japan"}, TotalScore: 60},
		{Candidate: model.Candidate{ID: "4", Country: "Portugal"}, TotalScore: -20},
		{Candidate: model.Candidate{ID: "5", Country: "Chile"}, TotalScore: 0},
	}

	grouped := GroupByCountry(results)
	require.Len(t, grouped, 3)

	assert.Equal(t, "Japan", grouped[0].Country)
	assert.Equal(t, "Portugal", grouped[1].Country)
	assert.Equal(t, "Chile", grouped[2].Country)

	assert.Equal(t, 2, grouped[0].BeneficialCount)
	assert.Equal(t, 0, grouped[0].ChallengingCount)
	assert.Equal(t, 1, grouped[1].BeneficialCount)
	assert.Equal(t, 1, grouped[1].ChallengingCount)
	assert.Equal(t, 0, grouped[2].BeneficialCount)
	assert.Equal(t, 0, grouped[2].ChallengingCount)

	// Candidates keep their ranked order inside each group.
	assert.Equal(t, "1", grouped[0].Candidates[0].Candidate.ID)
	assert.Equal(t, "3", grouped[0].Candidates[1].Candidate.ID)
}

func TestGroupByCountry_Empty(t *testing.T) {
	assert.Nil(t, GroupByCountry(nil))
}
