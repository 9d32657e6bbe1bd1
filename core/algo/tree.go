// Package algo has the pure numeric pieces behind the risk model.
package algo

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
)

// minImprovement is the smallest impurity decrease that still counts as a split.
const minImprovement = 1e-12

// leaf marks a node without children.
const leaf = -1

type node struct {
	feature   int // leaf for terminal nodes
	threshold float64
	left      int
	right     int
	value     float64 // mean target of the samples reaching this node
	samples   int
	impurity  float64 // mean squared error around value
}

// Tree is a fitted CART regression tree.
type Tree struct {
	nodes     []node
	nFeatures int
	total     int
}

// TreeOptions controls tree growth.
type TreeOptions struct {
	MaxDepth int
	Seed     int64
}

// FitTree grows a regression tree on every row of X.
func FitTree(X [][]float64, y []float64, opts TreeOptions) (*Tree, error) {
	if err := checkTrainingSet(X, y); err != nil {
		return nil, err
	}
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	rng := rand.New(rand.NewSource(opts.Seed))
	return growTree(X, y, idx, opts.MaxDepth, rng), nil
}

func checkTrainingSet(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return errors.New("empty training set")
	}
	if len(X) != len(y) {
		return fmt.Errorf("got %d rows but %d targets", len(X), len(y))
	}
	width := len(X[0])
	if width == 0 {
		return errors.New("training rows have no features")
	}
	for i, row := range X {
		if len(row) != width {
			return fmt.Errorf("row %d has %d features, expected %d", i, len(row), width)
		}
	}
	return nil
}

// growTree fits a tree on the rows listed in idx. Repeated indices act as
// sample weights, which is how bootstrap draws reach the tree.
func growTree(X [][]float64, y []float64, idx []int, maxDepth int, rng *rand.Rand) *Tree {
	t := &Tree{nFeatures: len(X[0]), total: len(idx)}
	t.build(X, y, idx, 0, maxDepth, rng)
	return t
}

func (t *Tree) build(X [][]float64, y []float64, idx []int, depth, maxDepth int, rng *rand.Rand) int {
	mean, mse := meanAndMSE(y, idx)
	id := len(t.nodes)
	t.nodes = append(t.nodes, node{
		feature:  leaf,
		left:     leaf,
		right:    leaf,
		value:    mean,
		samples:  len(idx),
		impurity: mse,
	})

	if depth >= maxDepth || len(idx) < 2 || mse <= 0 {
		return id
	}

	feature, threshold, ok := bestSplit(X, y, idx, t.nFeatures, rng)
	if !ok {
		return id
	}

	var leftIdx, rightIdx []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}

	left := t.build(X, y, leftIdx, depth+1, maxDepth, rng)
	right := t.build(X, y, rightIdx, depth+1, maxDepth, rng)

	n := &t.nodes[id]
	n.feature = feature
	n.threshold = threshold
	n.left = left
	n.right = right
	return id
}

// bestSplit scans every feature, visited in a seeded random order, and returns
// the threshold with the largest decrease in summed squared error. Ties keep
// the first candidate found.
func bestSplit(X [][]float64, y []float64, idx []int, nFeatures int, rng *rand.Rand) (int, float64, bool) {
	parentSSE := sse(y, idx)
	bestGain := minImprovement
	bestFeature, bestThreshold := leaf, 0.0

	for _, f := range rng.Perm(nFeatures) {
		values := distinctSorted(X, idx, f)
		for k := 0; k+1 < len(values); k++ {
			threshold := (values[k] + values[k+1]) / 2
			var left, right []int
			for _, i := range idx {
				if X[i][f] <= threshold {
					left = append(left, i)
				} else {
					right = append(right, i)
				}
			}
			gain := parentSSE - sse(y, left) - sse(y, right)
			if gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = threshold
			}
		}
	}
	return bestFeature, bestThreshold, bestFeature != leaf
}

func distinctSorted(X [][]float64, idx []int, f int) []float64 {
	seen := make(map[float64]struct{}, len(idx))
	values := make([]float64, 0, len(idx))
	for _, i := range idx {
		v := X[i][f]
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Float64s(values)
	return values
}

func meanAndMSE(y []float64, idx []int) (float64, float64) {
	if len(idx) == 0 {
		return 0, 0
	}
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	mean := sum / float64(len(idx))
	var sq float64
	for _, i := range idx {
		d := y[i] - mean
		sq += d * d
	}
	return mean, sq / float64(len(idx))
}

func sse(y []float64, idx []int) float64 {
	_, mse := meanAndMSE(y, idx)
	return mse * float64(len(idx))
}

// Predict walks the tree for one row.
func (t *Tree) Predict(x []float64) float64 {
	i := 0
	for t.nodes[i].feature != leaf {
		n := t.nodes[i]
		if x[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
	return t.nodes[i].value
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (t *Tree) Depth() int {
	var walk func(i int) int
	walk = func(i int) int {
		n := t.nodes[i]
		if n.feature == leaf {
			return 0
		}
		return 1 + max(walk(n.left), walk(n.right))
	}
	return walk(0)
}

// Leaves returns the number of terminal nodes.
func (t *Tree) Leaves() int {
	count := 0
	for _, n := range t.nodes {
		if n.feature == leaf {
			count++
		}
	}
	return count
}

// Importances returns the weighted impurity decrease per feature, normalized to
// sum to 1. A tree that never split returns all zeros.
func (t *Tree) Importances() []float64 {
	out := make([]float64, t.nFeatures)
	total := float64(t.total)
	for _, n := range t.nodes {
		if n.feature == leaf {
			continue
		}
		l, r := t.nodes[n.left], t.nodes[n.right]
		out[n.feature] += float64(n.samples)/total*n.impurity -
			float64(l.samples)/total*l.impurity -
			float64(r.samples)/total*r.impurity
	}
	normalize(out)
	return out
}

// normalize scales values in place so they sum to 1. A zero sum is left alone.
func normalize(values []float64) bool {
	var sum float64
	for _, v := range values {
		sum += v
	}
	if sum <= 0 {
		return false
	}
	for i := range values {
		values[i] /= sum
	}
	return true
}
