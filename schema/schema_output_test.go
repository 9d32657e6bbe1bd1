package schema_test

import (
	"testing"

	"github.com/huangsam/fragility/schema"
	"github.com/stretchr/testify/assert"
)

func TestGetPlainLabel(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		expected string
	}{
		{"Critical Score Upper", 100.0, "Critical"},
		{"Critical Score Lower", 80.0, "Critical"},
		{"High Score Upper", 79.9, "High"},
		{"High Score Lower", 60.0, "High"},
		{"Moderate Score Upper", 59.9, "Moderate"},
		{"Moderate Score Lower", 40.0, "Moderate"},
		{"Low Score Upper", 39.9, "Low"},
		{"Low Score Lower", 0.0, "Low"},
		{"Negative Score", -10.0, "Low"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, schema.GetPlainLabel(tt.score))
		})
	}
}

func TestEnrichAssessments(t *testing.T) {
	assessments := []schema.Assessment{
		{Region: "region_1", Risk: schema.RiskPrediction{RiskScore: 85.0}},
		{Region: "region_2", Risk: schema.RiskPrediction{RiskScore: 65.0}},
		{Region: "region_3", Risk: schema.RiskPrediction{RiskScore: 20.0}},
	}

	enriched := schema.EnrichAssessments(assessments)

	assert.Len(t, enriched, 3)
	assert.Equal(t, 1, enriched[0].Rank)
	assert.Equal(t, "Critical", enriched[0].Label)
	assert.Equal(t, "region_1", enriched[0].Region)

	assert.Equal(t, 2, enriched[1].Rank)
	assert.Equal(t, "High", enriched[1].Label)

	assert.Equal(t, 3, enriched[2].Rank)
	assert.Equal(t, "Low", enriched[2].Label)
	assert.Equal(t, "region_3", enriched[2].Region)
}

func TestClassifyRisk(t *testing.T) {
	tests := []struct {
		score    float64
		expected schema.RiskClass
	}{
		{0, schema.StableClass},
		{49.99, schema.StableClass},
		{50, schema.AtRiskClass},
		{50.01, schema.AtRiskClass},
		{100, schema.AtRiskClass},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, schema.ClassifyRisk(tt.score), "score %v", tt.score)
	}
}

func TestAssessmentHelpers(t *testing.T) {
	a := schema.Assessment{
		Scenarios: []schema.ScenarioResult{
			{ScenarioName: "Extreme Weather Spike", Delta: 12.5},
			{ScenarioName: "Load Surge", Delta: -1},
		},
		Recommendations: []schema.Recommendation{
			{Priority: schema.MediumPriority},
			{Priority: schema.HighPriority},
		},
	}

	d, ok := a.ScenarioDelta("Extreme Weather Spike")
	assert.True(t, ok)
	assert.Equal(t, 12.5, d)

	_, ok = a.ScenarioDelta("Relay Failure")
	assert.False(t, ok)

	assert.Equal(t, schema.HighPriority, a.TopPriority())
	assert.Equal(t, schema.LowPriority, schema.Assessment{}.TopPriority())
}
