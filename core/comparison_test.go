package core

import (
	"context"
	"testing"

	"github.com/huangsam/fragility/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vectorFrom(t *testing.T, values map[string]float64) schema.FeatureVector {
	t.Helper()
	full := make(map[string]float64, schema.NumFeatures)
	for _, name := range schema.FeatureOrder() {
		full[string(name)] = 1
	}
	for k, v := range values {
		full[k] = v
	}
	vec, err := schema.NewFeatureVector(full)
	require.NoError(t, err)
	return vec
}

func TestCompareVectors(t *testing.T) {
	base := vectorFrom(t, map[string]float64{"avg_elevation": 210, "tower_density": 5.5, "backhaul_redundancy": 0.85})
	target := vectorFrom(t, map[string]float64{"avg_elevation": 1150, "tower_density": 1.1, "backhaul_redundancy": 0.15})

	deltas := CompareVectors(base, target)
	require.Len(t, deltas, schema.NumFeatures)

	assert.Equal(t, schema.FeatureDelta{Feature: schema.AvgElevation, Base: 210, Target: 1150, Delta: 940}, deltas[0])
	assert.Equal(t, schema.TowerDensity, deltas[1].Feature)
	assert.Equal(t, -4.4, deltas[1].Delta)
	assert.Equal(t, schema.BackhaulRedundancy, deltas[2].Feature)
	assert.Equal(t, -0.7, deltas[2].Delta)

	// Unchanged features follow in name order.
	for _, d := range deltas[3:] {
		assert.Zero(t, d.Delta)
	}
	assert.Equal(t, schema.AvgRainfall, deltas[3].Feature)
}

func TestBuildComparison(t *testing.T) {
	a := rankedAssessment("region_1", 21.5, [3]float64{1, 2, 3}, schema.LowPriority)
	a.Features = vectorFrom(t, map[string]float64{"avg_elevation": 210})
	b := rankedAssessment("region_3", 74.25, [3]float64{12, 4, 18}, schema.HighPriority)
	b.Features = vectorFrom(t, map[string]float64{"avg_elevation": 1150})

	pair := BuildComparison([]schema.Assessment{a, b}, 0)
	require.Len(t, pair.Rankings, 2)
	assert.Equal(t, "region_3", pair.Rankings[0].Region)
	require.NotNil(t, pair.Summary)
	assert.Equal(t, schema.ComparisonSummary{
		BaseRegion:   "region_1",
		TargetRegion: "region_3",
		BaseScore:    21.5,
		TargetScore:  74.25,
		RiskDelta:    52.75,
		BaseClass:    schema.StableClass,
		TargetClass:  schema.AtRiskClass,
	}, *pair.Summary)
	assert.Equal(t, 940.0, pair.FeatureDeltas[0].Delta)

	c := rankedAssessment("region_2", 43, [3]float64{6, 2.5, 9}, schema.MediumPriority)
	three := BuildComparison([]schema.Assessment{a, b, c}, 2)
	assert.Len(t, three.Rankings, 2)
	assert.Nil(t, three.Summary)
	assert.Nil(t, three.FeatureDeltas)
}

func TestCompareRegions(t *testing.T) {
	a := newTestAssessor(t, AssessorDeps{Workers: 2})

	result, err := a.CompareRegions(context.Background(), []string{"region_1", "region_3"}, 0, nil)
	require.NoError(t, err)
	require.Len(t, result.Rankings, 2)
	assert.Equal(t, "region_3", result.Rankings[0].Region)
	assert.Equal(t, 57.5, result.Rankings[0].RiskScore)
	require.NotNil(t, result.Summary)
	assert.Equal(t, 47.0, result.Summary.RiskDelta)

	_, err = a.CompareRegions(context.Background(), []string{"region_1"}, 0, nil)
	assert.EqualError(t, err, "compare requires at least two region ids, got 1")

	_, err = a.CompareRegions(context.Background(), []string{"region_1", "nowhere"}, 0, nil)
	require.Error(t, err)
	assert.True(t, schema.IsInputError(err))
}
