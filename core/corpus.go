package core

import "github.com/huangsam/fragility/schema"

// TrainingExample is one labeled row of the bootstrap corpus.
type TrainingExample struct {
	Label  string
	Values [schema.NumFeatures]float64 // schema order
	Target float64
}

// Corpus labels.
const (
	StableLabel   = "stable"
	ModerateLabel = "moderate"
	HighLabel     = "high"
)

// bootstrapCorpus is the fixed synthetic training set. Values follow
// schema.FeatureOrder.
var bootstrapCorpus = []TrainingExample{
	{StableLabel, [schema.NumFeatures]float64{200, 0.2, 5, 200, 1.5, 700, 1, 5, 5, 0.98, 0.8, 12}, 10},
	{StableLabel, [schema.NumFeatures]float64{100, 0.1, 3, 300, 2.0, 500, 1, 4, 6, 0.99, 0.9, 8}, 8},
	{ModerateLabel, [schema.NumFeatures]float64{600, 0.5, 15, 80, 0.8, 1000, 3, 8, 2, 0.90, 0.3, 15}, 45},
	{HighLabel, [schema.NumFeatures]float64{1200, 0.8, 30, 30, 0.2, 1500, 6, 12, 1, 0.80, 0.1, 20}, 85},
	{HighLabel, [schema.NumFeatures]float64{900, 0.7, 25, 40, 0.3, 1400, 5, 10, 1, 0.82, 0.2, 18}, 78},
}

// BootstrapCorpus returns a copy of the training set.
func BootstrapCorpus() []TrainingExample {
	out := make([]TrainingExample, len(bootstrapCorpus))
	copy(out, bootstrapCorpus)
	return out
}

// Vector returns the example as a feature vector.
func (e TrainingExample) Vector() schema.FeatureVector {
	v, _ := schema.FeatureVectorFromValues(e.Values[:])
	return v
}

func corpusMatrix(corpus []TrainingExample) ([][]float64, []float64) {
	X := make([][]float64, len(corpus))
	y := make([]float64, len(corpus))
	for i, e := range corpus {
		row := make([]float64, schema.NumFeatures)
		copy(row, e.Values[:])
		X[i] = row
		y[i] = e.Target
	}
	return X, y
}
