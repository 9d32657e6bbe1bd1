package outwriter

import (
	"testing"
	"time"

	"github.com/huangsam/fragility/internal/contract"
	"github.com/huangsam/fragility/schema"
	"github.com/stretchr/testify/require"
)

func sampleAssessment(t *testing.T, region string, score float64) schema.Assessment {
	t.Helper()
	features, err := schema.FeatureVectorFromValues([]float64{640, 0.52, 16, 85, 0.9, 1020, 3, 8, 2.2, 0.91, 0.35, 10})
	require.NoError(t, err)
	return schema.Assessment{
		ID:       "a-" + region,
		Region:   region,
		Geometry: schema.Geometry{Kind: schema.PointGeometry, Lat: 20.1, Lon: 79.8, AreaSqKm: 10},
		Features: features,
		Risk:     schema.RiskPrediction{RiskScore: score, RiskClass: schema.ClassifyRisk(score)},
		Scenarios: []schema.ScenarioResult{
			{ScenarioName: schema.ExtremeWeatherScenario, AdjustedRiskScore: score + 10.5, Delta: 10.5, ContributingFactors: map[string]float64{"avg_rainfall": 1.5, "storm_frequency": 2}},
			{ScenarioName: schema.LoadSurgeScenario, AdjustedRiskScore: score + 2.5, Delta: 2.5, ContributingFactors: map[string]float64{"pop_density": 1.3}},
			{ScenarioName: schema.RelayFailureScenario, AdjustedRiskScore: score - 1, Delta: -1, ContributingFactors: map[string]float64{"backhaul_redundancy": 0.5}},
		},
		Recommendations: []schema.Recommendation{
			{Action: "Deploy satellite backup links", Rationale: "Risk score exceeds the satellite threshold", Priority: schema.HighPriority},
			{Action: "Plan additional relay placement", Rationale: "Tower density is below the floor", Priority: schema.MediumPriority},
		},
		AssessedAt: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
	}
}

func plainConfig(output schema.OutputMode) *contract.Config {
	return &contract.Config{
		Output:       output,
		Precision:    2,
		Width:        120,
		Workers:      4,
		CacheBackend: schema.SQLiteBackend,
		DataSource:   schema.CSVSource,
		AreaMethod:   schema.FlatArea,
	}
}
