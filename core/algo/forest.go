package algo

import (
	"errors"
	"fmt"
	"math/rand"
)

// ForestOptions are the ensemble hyperparameters.
type ForestOptions struct {
	Trees    int
	MaxDepth int
	Seed     int64
}

// Forest is a bagged ensemble of regression trees. It is read-only after
// FitForest returns and safe for concurrent Predict calls.
type Forest struct {
	trees       []*Tree
	nFeatures   int
	importances []float64
}

// FitForest trains a random forest regressor. Each tree sees a bootstrap sample
// drawn with replacement from a single source seeded by opts.Seed, so the same
// inputs always yield the same forest.
func FitForest(X [][]float64, y []float64, opts ForestOptions) (*Forest, error) {
	if opts.Trees < 1 {
		return nil, errors.New("forest needs at least one tree")
	}
	if opts.MaxDepth < 1 {
		return nil, errors.New("max depth must be at least 1")
	}
	if err := checkTrainingSet(X, y); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	n := len(X)
	f := &Forest{
		trees:     make([]*Tree, 0, opts.Trees),
		nFeatures: len(X[0]),
	}
	for range opts.Trees {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.Intn(n)
		}
		f.trees = append(f.trees, growTree(X, y, sample, opts.MaxDepth, rng))
	}
	f.importances = f.averageImportances()
	return f, nil
}

// averageImportances averages per-tree importances over the trees that split
// at least once, then renormalizes.
func (f *Forest) averageImportances() []float64 {
	out := make([]float64, f.nFeatures)
	used := 0
	for _, t := range f.trees {
		if len(t.nodes) == 1 {
			continue
		}
		imp := t.Importances()
		for i, v := range imp {
			out[i] += v
		}
		used++
	}
	if used == 0 {
		return out
	}
	for i := range out {
		out[i] /= float64(used)
	}
	normalize(out)
	return out
}

// Predict returns the mean of the per-tree outputs.
func (f *Forest) Predict(x []float64) (float64, error) {
	if len(x) != f.nFeatures {
		return 0, fmt.Errorf("expected %d features, got %d", f.nFeatures, len(x))
	}
	var sum float64
	for _, t := range f.trees {
		sum += t.Predict(x)
	}
	return sum / float64(len(f.trees)), nil
}

// Importances returns a copy of the normalized feature importances.
func (f *Forest) Importances() []float64 {
	out := make([]float64, len(f.importances))
	copy(out, f.importances)
	return out
}

// Size returns the number of trees.
func (f *Forest) Size() int {
	return len(f.trees)
}

// MaxTreeDepth returns the depth of the deepest tree.
func (f *Forest) MaxTreeDepth() int {
	deepest := 0
	for _, t := range f.trees {
		deepest = max(deepest, t.Depth())
	}
	return deepest
}
