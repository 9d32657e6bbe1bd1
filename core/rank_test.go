package core

import (
	"testing"

	"github.com/huangsam/fragility/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rankedAssessment(region string, score float64, deltas [3]float64, priorities ...schema.Priority) schema.Assessment {
	a := schema.Assessment{
		Region: region,
		Risk:   schema.RiskPrediction{RiskScore: score, RiskClass: schema.ClassifyRisk(score)},
		Scenarios: []schema.ScenarioResult{
			{ScenarioName: ExtremeWeatherScenario, Delta: deltas[0]},
			{ScenarioName: LoadSurgeScenario, Delta: deltas[1]},
			{ScenarioName: RelayFailureScenario, Delta: deltas[2]},
		},
	}
	for _, p := range priorities {
		a.Recommendations = append(a.Recommendations, schema.Recommendation{Action: "act", Priority: p})
	}
	return a
}

func TestRankAssessments(t *testing.T) {
	input := []schema.Assessment{
		rankedAssessment("region_1", 21.5, [3]float64{1, 2, 3}, schema.LowPriority),
		rankedAssessment("region_3", 74.25, [3]float64{12, 4, 18}, schema.HighPriority, schema.MediumPriority),
		rankedAssessment("region_2", 43, [3]float64{6, 2.5, 9}, schema.MediumPriority),
		rankedAssessment("region_0", 43, [3]float64{0, 0, 0}, schema.LowPriority),
	}

	tests := []struct {
		name    string
		limit   int
		regions []string
	}{
		{"all regions", 0, []string{"region_3", "region_0", "region_2", "region_1"}},
		{"negative limit keeps all", -1, []string{"region_3", "region_0", "region_2", "region_1"}},
		{"top two", 2, []string{"region_3", "region_0"}},
		{"limit above size", 10, []string{"region_3", "region_0", "region_2", "region_1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RankAssessments(input, tt.limit)
			require.Len(t, got, len(tt.regions))
			for i, r := range got {
				assert.Equal(t, i+1, r.Rank)
				assert.Equal(t, tt.regions[i], r.Region)
			}
		})
	}

	top := RankAssessments(input, 1)[0]
	assert.Equal(t, schema.AtRiskClass, top.RiskClass)
	assert.Equal(t, schema.HighPriority, top.TopPriority)
	assert.Equal(t, 2, top.Recommendations)

	// input order is untouched
	assert.Equal(t, "region_1", input[0].Region)
	assert.Equal(t, "region_0", input[3].Region)
	assert.Equal(t, map[string]float64{
		ExtremeWeatherScenario: 12,
		LoadSurgeScenario:      4,
		RelayFailureScenario:   18,
	}, top.ScenarioDeltas)

	// The input order is left alone.
	assert.Equal(t, "region_1", input[0].Region)
}

func TestRankAssessmentsEmpty(t *testing.T) {
	assert.Empty(t, RankAssessments(nil, 5))
}
