package core

import (
	"fmt"
	"maps"

	"github.com/huangsam/fragility/core/algo"
	"github.com/huangsam/fragility/schema"
)

// Scorer turns a feature vector into a risk prediction.
type Scorer interface {
	Predict(vec schema.FeatureVector) (schema.RiskPrediction, error)
}

// Decimal places applied to model outputs.
const (
	scorePrecision      = 2
	importancePrecision = 4
)

// ModelOptions are the RiskModel hyperparameters.
type ModelOptions struct {
	Trees    int
	MaxDepth int
	Seed     int64
}

// DefaultModelOptions returns the production hyperparameters.
func DefaultModelOptions() ModelOptions {
	return ModelOptions{Trees: 50, MaxDepth: 6, Seed: 42}
}

// Params converts the options to their schema form.
func (o ModelOptions) Params() schema.ModelParams {
	return schema.ModelParams{Trees: o.Trees, MaxDepth: o.MaxDepth, Seed: o.Seed}
}

// RiskModel is a random forest regressor trained once, at construction, on the
// bootstrap corpus. After NewRiskModel returns it is read-only and safe to share.
type RiskModel struct {
	opts       ModelOptions
	forest     *algo.Forest
	importance map[string]float64
}

// NewRiskModel trains a model on the bootstrap corpus.
func NewRiskModel(opts ModelOptions) (*RiskModel, error) {
	return newRiskModel(opts, bootstrapCorpus)
}

func newRiskModel(opts ModelOptions, corpus []TrainingExample) (*RiskModel, error) {
	m := &RiskModel{opts: opts}
	if err := m.train(corpus); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *RiskModel) train(corpus []TrainingExample) error {
	X, y := corpusMatrix(corpus)
	forest, err := algo.FitForest(X, y, algo.ForestOptions{
		Trees:    m.opts.Trees,
		MaxDepth: m.opts.MaxDepth,
		Seed:     m.opts.Seed,
	})
	if err != nil {
		return fmt.Errorf("train risk model: %w", err)
	}

	importance := make(map[string]float64, schema.NumFeatures)
	weights := forest.Importances()
	for i, name := range schema.FeatureOrder() {
		importance[string(name)] = algo.RoundTo(weights[i], importancePrecision)
	}

	m.forest = forest
	m.importance = importance
	return nil
}

// Predict scores a feature vector. The score is clamped to [0,100] and rounded
// to two decimals before classification.
func (m *RiskModel) Predict(vec schema.FeatureVector) (schema.RiskPrediction, error) {
	if m == nil || m.forest == nil {
		return schema.RiskPrediction{}, schema.ErrModelNotTrained
	}
	if !vec.Valid() {
		return schema.RiskPrediction{}, schema.CheckFeatureKeys(vec.Map())
	}

	raw, err := m.forest.Predict(vec.Values())
	if err != nil {
		return schema.RiskPrediction{}, err
	}
	score := algo.RoundTo(algo.Clamp(raw, schema.MinRiskScore, schema.MaxRiskScore), scorePrecision)

	return schema.RiskPrediction{
		RiskScore:         score,
		RiskClass:         schema.ClassifyRisk(score),
		FeatureImportance: m.FeatureImportance(),
	}, nil
}

// PredictMap validates a field map against the schema and scores it.
func (m *RiskModel) PredictMap(fields map[string]float64) (schema.RiskPrediction, error) {
	vec, err := schema.NewFeatureVector(fields)
	if err != nil {
		return schema.RiskPrediction{}, err
	}
	return m.Predict(vec)
}

// FeatureImportance returns a fresh copy of the per-feature importances.
func (m *RiskModel) FeatureImportance() map[string]float64 {
	if m == nil || m.importance == nil {
		return map[string]float64{}
	}
	out := make(map[string]float64, len(m.importance))
	maps.Copy(out, m.importance)
	return out
}

// Options returns the hyperparameters the model was trained with.
func (m *RiskModel) Options() ModelOptions {
	return m.opts
}
