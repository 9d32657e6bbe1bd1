package core

import (
	"maps"
	"slices"

	"github.com/huangsam/fragility/core/algo"
	"github.com/huangsam/fragility/schema"
)

// Scenario names. Rules look results up by these.
const (
	ExtremeWeatherScenario = schema.ExtremeWeatherScenario
	LoadSurgeScenario      = schema.LoadSurgeScenario
	RelayFailureScenario   = schema.RelayFailureScenario
)

// DefaultScenarios returns the what-if catalog in evaluation order.
func DefaultScenarios() []schema.ScenarioDefinition {
	return []schema.ScenarioDefinition{
		{
			Name:        ExtremeWeatherScenario,
			Description: "Heavier rainfall and more frequent storms",
			Modifiers:   map[string]float64{"avg_rainfall": 1.3, "storm_frequency": 1.5},
		},
		{
			Name:        LoadSurgeScenario,
			Description: "Population surge with degraded uptime",
			Modifiers:   map[string]float64{"pop_density": 1.4, "avg_uptime": 0.85},
		},
		{
			Name:        RelayFailureScenario,
			Description: "Loss of relay towers and backhaul links",
			Modifiers:   map[string]float64{"tower_density": 0.6, "backhaul_redundancy": 0.5},
		},
	}
}

// Simulator re-scores perturbed copies of a base vector.
type Simulator struct {
	scorer  Scorer
	catalog []schema.ScenarioDefinition
}

// NewSimulator returns a simulator over the given catalog. A nil catalog means
// DefaultScenarios.
func NewSimulator(scorer Scorer, catalog []schema.ScenarioDefinition) *Simulator {
	if catalog == nil {
		catalog = DefaultScenarios()
	}
	return &Simulator{scorer: scorer, catalog: cloneCatalog(catalog)}
}

// Catalog returns a copy of the scenario definitions.
func (s *Simulator) Catalog() []schema.ScenarioDefinition {
	return cloneCatalog(s.catalog)
}

// Simulate returns one result per catalog entry, in catalog order. The base
// vector is never modified; each scenario works on its own copy.
func (s *Simulator) Simulate(base schema.FeatureVector, baseScore float64) ([]schema.ScenarioResult, error) {
	results := make([]schema.ScenarioResult, 0, len(s.catalog))
	for _, sc := range s.catalog {
		adjusted, err := applyModifiers(base, sc)
		if err != nil {
			return nil, err
		}
		pred, err := s.scorer.Predict(adjusted)
		if err != nil {
			return nil, err
		}
		results = append(results, schema.ScenarioResult{
			ScenarioName:        sc.Name,
			AdjustedRiskScore:   pred.RiskScore,
			Delta:               algo.RoundTo(pred.RiskScore-baseScore, scorePrecision),
			ContributingFactors: maps.Clone(sc.Modifiers),
		})
	}
	return results, nil
}

// applyModifiers multiplies every field named by the scenario. When several
// names are unknown, the first in sorted order is reported.
func applyModifiers(base schema.FeatureVector, sc schema.ScenarioDefinition) (schema.FeatureVector, error) {
	out := base
	for _, name := range slices.Sorted(maps.Keys(sc.Modifiers)) {
		next, err := out.Scale(name, sc.Modifiers[name])
		if err != nil {
			return schema.FeatureVector{}, &schema.UnknownFeatureError{Scenario: sc.Name, Field: name}
		}
		out = next
	}
	return out, nil
}

func cloneCatalog(catalog []schema.ScenarioDefinition) []schema.ScenarioDefinition {
	out := make([]schema.ScenarioDefinition, len(catalog))
	for i, sc := range catalog {
		out[i] = schema.ScenarioDefinition{
			Name:        sc.Name,
			Description: sc.Description,
			Modifiers:   maps.Clone(sc.Modifiers),
		}
	}
	return out
}
