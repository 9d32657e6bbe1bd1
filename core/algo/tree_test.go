package algo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitTree(t *testing.T) {
	t.Run("single clean split", func(t *testing.T) {
		X := [][]float64{{1, 7}, {2, 7}, {3, 7}, {4, 7}}
		y := []float64{0, 0, 10, 10}

		tree, err := FitTree(X, y, TreeOptions{MaxDepth: 3, Seed: 1})
		require.NoError(t, err)

		assert.Equal(t, 1, tree.Depth())
		assert.Equal(t, 2, tree.Leaves())
		assert.Equal(t, 0.0, tree.Predict([]float64{1, 7}))
		assert.Equal(t, 10.0, tree.Predict([]float64{4, 7}))
		assert.Equal(t, 0.0, tree.Predict([]float64{2.5, 0}))  // threshold goes left
		assert.Equal(t, 10.0, tree.Predict([]float64{2.6, 0})) // beyond the midpoint
		assert.Equal(t, []float64{1, 0}, tree.Importances())
	})

	t.Run("depth limit", func(t *testing.T) {
		X := [][]float64{{0}, {1}, {2}, {3}}
		y := []float64{0, 1, 2, 3}

		tree, err := FitTree(X, y, TreeOptions{MaxDepth: 1})
		require.NoError(t, err)

		assert.Equal(t, 1, tree.Depth())
		assert.InDelta(t, 0.5, tree.Predict([]float64{0}), 1e-9)
		assert.InDelta(t, 2.5, tree.Predict([]float64{3}), 1e-9)
	})

	t.Run("grows until pure", func(t *testing.T) {
		X := [][]float64{{0}, {1}, {2}, {3}}
		y := []float64{0, 1, 2, 3}

		tree, err := FitTree(X, y, TreeOptions{MaxDepth: 6})
		require.NoError(t, err)

		assert.Equal(t, 4, tree.Leaves())
		for i, row := range X {
			assert.InDelta(t, y[i], tree.Predict(row), 1e-9)
		}
	})

	t.Run("constant target never splits", func(t *testing.T) {
		X := [][]float64{{1, 2}, {3, 4}, {5, 6}}
		y := []float64{5, 5, 5}

		tree, err := FitTree(X, y, TreeOptions{MaxDepth: 6})
		require.NoError(t, err)

		assert.Equal(t, 0, tree.Depth())
		assert.Equal(t, 5.0, tree.Predict([]float64{100, 100}))
		assert.Equal(t, []float64{0, 0}, tree.Importances())
	})
}

func TestFitTreeInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		X    [][]float64
		y    []float64
	}{
		{name: "empty", X: nil, y: nil},
		{name: "length mismatch", X: [][]float64{{1}, {2}}, y: []float64{1}},
		{name: "ragged rows", X: [][]float64{{1, 2}, {3}}, y: []float64{1, 2}},
		{name: "no features", X: [][]float64{{}, {}}, y: []float64{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FitTree(tt.X, tt.y, TreeOptions{MaxDepth: 2})
			assert.Error(t, err)
		})
	}
}

func TestNormalize(t *testing.T) {
	values := []float64{1, 3}
	assert.True(t, normalize(values))
	assert.Equal(t, []float64{0.25, 0.75}, values)

	zeros := []float64{0, 0}
	assert.False(t, normalize(zeros))
	assert.Equal(t, []float64{0, 0}, zeros)
}
