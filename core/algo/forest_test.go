package algo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func separableSet() ([][]float64, []float64) {
	X := [][]float64{{1, 0}, {2, 0}, {3, 0}, {4, 1}, {5, 1}, {6, 1}}
	y := []float64{0, 0, 0, 100, 100, 100}
	return X, y
}

func TestFitForest(t *testing.T) {
	X, y := separableSet()
	forest, err := FitForest(X, y, ForestOptions{Trees: 25, MaxDepth: 4, Seed: 42})
	require.NoError(t, err)

	assert.Equal(t, 25, forest.Size())
	assert.LessOrEqual(t, forest.MaxTreeDepth(), 4)

	low, err := forest.Predict([]float64{1, 0})
	require.NoError(t, err)
	high, err := forest.Predict([]float64{6, 1})
	require.NoError(t, err)
	assert.Less(t, low, high)
	assert.GreaterOrEqual(t, low, 0.0)
	assert.LessOrEqual(t, high, 100.0)

	imp := forest.Importances()
	require.Len(t, imp, 2)
	assert.InDelta(t, 1.0, imp[0]+imp[1], 1e-9)
	for _, v := range imp {
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

func TestFitForestDeterminism(t *testing.T) {
	X, y := separableSet()
	opts := ForestOptions{Trees: 10, MaxDepth: 3, Seed: 7}

	a, err := FitForest(X, y, opts)
	require.NoError(t, err)
	b, err := FitForest(X, y, opts)
	require.NoError(t, err)

	for _, row := range [][]float64{{1, 0}, {3.5, 1}, {10, 0}} {
		pa, err := a.Predict(row)
		require.NoError(t, err)
		pb, err := b.Predict(row)
		require.NoError(t, err)
		assert.Equal(t, pa, pb)
	}
	assert.Equal(t, a.Importances(), b.Importances())
}

func TestFitForestConstantTarget(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}}
	y := []float64{4, 4, 4}

	forest, err := FitForest(X, y, ForestOptions{Trees: 5, MaxDepth: 3, Seed: 1})
	require.NoError(t, err)

	assert.Equal(t, []float64{0}, forest.Importances())
	got, err := forest.Predict([]float64{9})
	require.NoError(t, err)
	assert.Equal(t, 4.0, got)
}

func TestFitForestErrors(t *testing.T) {
	X, y := separableSet()

	_, err := FitForest(X, y, ForestOptions{Trees: 0, MaxDepth: 3})
	assert.Error(t, err)

	_, err = FitForest(X, y, ForestOptions{Trees: 3, MaxDepth: 0})
	assert.Error(t, err)

	_, err = FitForest(nil, nil, ForestOptions{Trees: 3, MaxDepth: 3})
	assert.Error(t, err)

	forest, err := FitForest(X, y, ForestOptions{Trees: 3, MaxDepth: 3})
	require.NoError(t, err)
	_, err = forest.Predict([]float64{1})
	assert.Error(t, err)
}

func TestImportancesReturnsCopy(t *testing.T) {
	X, y := separableSet()
	forest, err := FitForest(X, y, ForestOptions{Trees: 3, MaxDepth: 3, Seed: 3})
	require.NoError(t, err)

	imp := forest.Importances()
	imp[0] = -1
	assert.NotEqual(t, -1.0, forest.Importances()[0])
}

func BenchmarkFitForest(b *testing.B) {
	X, y := separableSet()
	opts := ForestOptions{Trees: 50, MaxDepth: 6, Seed: 42}
	for b.Loop() {
		_, _ = FitForest(X, y, opts)
	}
}
