package core

import (
	"github.com/huangsam/fragility/schema"
)

// RuleInput is everything a rule may inspect.
type RuleInput struct {
	Risk      schema.RiskPrediction
	Scenarios []schema.ScenarioResult
	Features  schema.FeatureVector
}

// ScenarioDelta returns the delta of the first scenario with the given name.
func (in RuleInput) ScenarioDelta(name string) (float64, bool) {
	for _, s := range in.Scenarios {
		if s.ScenarioName == name {
			return s.Delta, true
		}
	}
	return 0, false
}

// Rule pairs a predicate with the recommendation it emits.
type Rule struct {
	Name           string
	Applies        func(in RuleInput) bool
	Recommendation schema.Recommendation
}

// DefaultThresholds returns the production rule cutoffs.
func DefaultThresholds() schema.RuleThresholds {
	return schema.RuleThresholds{
		SatelliteRisk: 60,
		WeatherDelta:  10,
		SurgeDelta:    8,
		BackhaulMin:   0.3,
		TowerMin:      2,
	}
}

// FallbackRecommendation is emitted when no rule fires.
var FallbackRecommendation = schema.Recommendation{
	Action:    "Maintain current infrastructure",
	Rationale: "Region classified as stable across all tested scenarios",
	Priority:  schema.LowPriority,
}

// DefaultRules returns the ordered rule set for the given thresholds.
func DefaultRules(th schema.RuleThresholds) []Rule {
	return []Rule{
		{
			Name: "satellite-backup",
			Applies: func(in RuleInput) bool {
				return in.Risk.RiskScore >= th.SatelliteRisk
			},
			Recommendation: schema.Recommendation{
				Action:    "Deploy satellite backup links",
				Rationale: "High predicted connectivity failure risk under baseline conditions",
				Priority:  schema.HighPriority,
			},
		},
		{
			Name: "weather-redundancy",
			Applies: func(in RuleInput) bool {
				d, ok := in.ScenarioDelta(ExtremeWeatherScenario)
				return ok && d >= th.WeatherDelta
			},
			Recommendation: schema.Recommendation{
				Action:    "Add weather-resilient redundancy",
				Rationale: "Risk increases significantly during extreme weather scenarios",
				Priority:  schema.HighPriority,
			},
		},
		{
			Name: "surge-densification",
			Applies: func(in RuleInput) bool {
				d, ok := in.ScenarioDelta(LoadSurgeScenario)
				return ok && d >= th.SurgeDelta
			},
			Recommendation: schema.Recommendation{
				Action:    "Increase relay/tower density",
				Rationale: "Network degrades sharply under population or traffic surge",
				Priority:  schema.MediumPriority,
			},
		},
		{
			Name: "backhaul-redundancy",
			Applies: func(in RuleInput) bool {
				return in.Features.Value(schema.BackhaulRedundancy) < th.BackhaulMin
			},
			Recommendation: schema.Recommendation{
				Action:    "Improve backhaul redundancy",
				Rationale: "Single-point backhaul failure risk detected",
				Priority:  schema.HighPriority,
			},
		},
		{
			Name: "relay-placement",
			Applies: func(in RuleInput) bool {
				return in.Features.Value(schema.TowerDensity) < th.TowerMin
			},
			Recommendation: schema.Recommendation{
				Action:    "Plan additional relay placement",
				Rationale: "Low tower density relative to region area",
				Priority:  schema.MediumPriority,
			},
		},
	}
}

// RecommendationEngine evaluates an ordered rule set.
type RecommendationEngine struct {
	rules    []Rule
	fallback schema.Recommendation
}

// NewRecommendationEngine returns an engine over rules. A nil slice means
// DefaultRules(DefaultThresholds()).
func NewRecommendationEngine(rules []Rule) *RecommendationEngine {
	if rules == nil {
		rules = DefaultRules(DefaultThresholds())
	}
	out := make([]Rule, len(rules))
	copy(out, rules)
	return &RecommendationEngine{rules: out, fallback: FallbackRecommendation}
}

// Rules returns a copy of the rule set.
func (e *RecommendationEngine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Recommend runs every rule once, in order, and keeps the firing order in the
// output. When nothing fires the result is the single fallback entry, so the
// output is never empty.
func (e *RecommendationEngine) Recommend(risk schema.RiskPrediction, scenarios []schema.ScenarioResult, features schema.FeatureVector) []schema.Recommendation {
	in := RuleInput{Risk: risk, Scenarios: scenarios, Features: features}
	var out []schema.Recommendation
	for _, r := range e.rules {
		if r.Applies(in) {
			out = append(out, r.Recommendation)
		}
	}
	if len(out) == 0 {
		out = append(out, e.fallback)
	}
	return out
}
