package scout

import (
	"sort"

	"github.com/luminastro/influence-engine/model"
)

// sortResults applies the final ranking: total score descending, then
// beneficial category count descending, then candidate ID ascending. The
// ID tie-break makes the order a total one, so both strategies emit
// byte-identical rankings.
func sortResults(results []model.CandidateResult) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.TotalScore != b.TotalScore {
			return a.TotalScore > b.TotalScore
		}
		if a.BeneficialCategories != b.BeneficialCategories {
			return a.BeneficialCategories > b.BeneficialCategories
		}
		return a.Candidate.ID < b.Candidate.ID
	})
}

// GroupByCountry folds ranked results into per-country groups. Candidates
// keep their ranked order inside each group, and countries are ordered by
// their best candidate. Counts classify candidates by the sign of their
// total score.
func GroupByCountry(results []model.CandidateResult) []model.RankedCountry {
	if len(results) == 0 {
		return nil
	}

	index := make(map[string]int)
	grouped := make([]model.RankedCountry, 0)
	for _, r := range results {
		i, ok := index[r.Candidate.Country]
		if !ok {
			i = len(grouped)
			index[r.Candidate.Country] = i
			grouped = append(grouped, model.RankedCountry{Country: r.Candidate.Country})
		}
		grouped[i].Candidates = append(grouped[i].Candidates, r)
		switch {
		case r.TotalScore > 0:
			grouped[i].BeneficialCount++
		case r.TotalScore < 0:
			grouped[i].ChallengingCount++
		}
	}

	// Input is already ranked, so each group's first candidate is its
	// best; ordering groups by first appearance orders them by best
	// candidate automatically.
	return grouped
}
