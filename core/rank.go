package core

import (
	"github.com/huangsam/fragility/core/algo"
	"github.com/huangsam/fragility/schema"
)

// RankAssessments orders assessments by risk score, highest first, and
// returns the top 'limit' rows. Ties are broken by region id. A limit <= 0
// keeps every region.
func RankAssessments(assessments []schema.Assessment, limit int) []schema.RegionRanking {
	sorted := make([]schema.Assessment, len(assessments))
	copy(sorted, assessments)
	sorted = algo.RankAssessments(sorted, limit)

	rankings := make([]schema.RegionRanking, 0, len(sorted))
	for i, a := range sorted {
		deltas := make(map[string]float64, len(a.Scenarios))
		for _, s := range a.Scenarios {
			deltas[s.ScenarioName] = s.Delta
		}
		rankings = append(rankings, schema.RegionRanking{
			Rank:            i + 1,
			Region:          a.Region,
			Name:            a.Name,
			RiskScore:       a.Risk.RiskScore,
			RiskClass:       a.Risk.RiskClass,
			ScenarioDeltas:  deltas,
			TopPriority:     a.TopPriority(),
			Recommendations: len(a.Recommendations),
		})
	}
	return rankings
}
