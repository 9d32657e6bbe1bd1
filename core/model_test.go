package core

import (
	"sync"
	"testing"

	"github.com/huangsam/fragility/core/algo"
	"github.com/huangsam/fragility/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t testing.TB) *RiskModel {
	t.Helper()
	m, err := NewRiskModel(DefaultModelOptions())
	require.NoError(t, err)
	return m
}

func TestNewRiskModel(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, DefaultModelOptions(), m.Options())
	assert.Equal(t, schema.ModelParams{Trees: 50, MaxDepth: 6, Seed: 42}, m.Options().Params())

	_, err := NewRiskModel(ModelOptions{Trees: 0, MaxDepth: 6, Seed: 42})
	assert.Error(t, err)
}

func TestRiskModelCorpusClasses(t *testing.T) {
	m := newTestModel(t)

	maxStable, minHigh := 0.0, 100.0
	var moderate float64
	for _, ex := range BootstrapCorpus() {
		pred, err := m.Predict(ex.Vector())
		require.NoError(t, err)

		switch ex.Label {
		case StableLabel:
			assert.Equal(t, schema.StableClass, pred.RiskClass, "stable example scored %.2f", pred.RiskScore)
			maxStable = max(maxStable, pred.RiskScore)
		case HighLabel:
			assert.Equal(t, schema.AtRiskClass, pred.RiskClass, "high example scored %.2f", pred.RiskScore)
			minHigh = min(minHigh, pred.RiskScore)
		case ModerateLabel:
			moderate = pred.RiskScore
		}
	}
	// The moderate tier sits between the others; its class is not asserted.
	assert.Greater(t, moderate, maxStable)
	assert.Less(t, moderate, minHigh)
}

func TestRiskModelPredictProperties(t *testing.T) {
	m := newTestModel(t)

	extremes := [][]float64{
		{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		{1e6, 1e6, 1e6, 1e6, 1e6, 1e6, 1e6, 1e6, 1e6, 1e6, 1e6, 1e6},
		{-1e6, -5, -5, -5, -5, -5, -5, -5, -5, -5, -5, -5},
		{200, 0.2, 5, 200, 1.5, 700, 1, 5, 5, 0.98, 0.8, 12},
	}
	for _, values := range extremes {
		vec, err := schema.FeatureVectorFromValues(values)
		require.NoError(t, err)

		pred, err := m.Predict(vec)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, pred.RiskScore, 0.0)
		assert.LessOrEqual(t, pred.RiskScore, 100.0)
		assert.Equal(t, schema.ClassifyRisk(pred.RiskScore), pred.RiskClass)

		require.Len(t, pred.FeatureImportance, schema.NumFeatures)
		for _, name := range schema.FeatureOrder() {
			v, ok := pred.FeatureImportance[string(name)]
			require.True(t, ok, "missing importance for %s", name)
			assert.GreaterOrEqual(t, v, 0.0)
		}
	}
}

func TestRiskModelDeterminism(t *testing.T) {
	a := newTestModel(t)
	b := newTestModel(t)

	for _, ex := range BootstrapCorpus() {
		pa, err := a.Predict(ex.Vector())
		require.NoError(t, err)
		pb, err := b.Predict(ex.Vector())
		require.NoError(t, err)
		assert.Equal(t, pa, pb)

		again, err := a.Predict(ex.Vector())
		require.NoError(t, err)
		assert.Equal(t, pa, again)
	}
}

func TestRiskModelImportance(t *testing.T) {
	m := newTestModel(t)
	imp := m.FeatureImportance()

	var sum float64
	for _, v := range imp {
		sum += v
		assert.Equal(t, v, algo.RoundTo(v, 4))
	}
	assert.InDelta(t, 1.0, sum, 0.001)

	// Callers get a copy
	imp["avg_elevation"] = 99
	assert.NotEqual(t, 99.0, m.FeatureImportance()["avg_elevation"])
}

func TestRiskModelErrors(t *testing.T) {
	t.Run("not trained", func(t *testing.T) {
		var m *RiskModel
		_, err := m.Predict(BootstrapCorpus()[0].Vector())
		assert.ErrorIs(t, err, schema.ErrModelNotTrained)

		_, err = (&RiskModel{}).Predict(BootstrapCorpus()[0].Vector())
		assert.ErrorIs(t, err, schema.ErrModelNotTrained)
	})

	t.Run("zero vector", func(t *testing.T) {
		m := newTestModel(t)
		_, err := m.Predict(schema.FeatureVector{})
		var mismatch *schema.SchemaMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Len(t, mismatch.Missing, schema.NumFeatures)
	})

	t.Run("map with extra key", func(t *testing.T) {
		m := newTestModel(t)
		fields := BootstrapCorpus()[0].Vector().Map()
		fields["humidity"] = 0.4
		_, err := m.PredictMap(fields)
		var mismatch *schema.SchemaMismatchError
		assert.ErrorAs(t, err, &mismatch)
	})
}

func TestRiskModelConcurrentPredict(t *testing.T) {
	m := newTestModel(t)
	want, err := m.Predict(BootstrapCorpus()[3].Vector())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 16 {
		wg.Go(func() {
			got, err := m.Predict(BootstrapCorpus()[3].Vector())
			assert.NoError(t, err)
			assert.Equal(t, want.RiskScore, got.RiskScore)
		})
	}
	wg.Wait()
}

func BenchmarkRiskModelPredict(b *testing.B) {
	m := newTestModel(b)
	vec := BootstrapCorpus()[2].Vector()
	for b.Loop() {
		_, _ = m.Predict(vec)
	}
}
