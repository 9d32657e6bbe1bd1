package schema

// RegionRanking is one row of a multi-region comparison.
type RegionRanking struct {
	Rank            int                `json:"rank"`
	Region          string             `json:"region"`
	Name            string             `json:"name,omitempty"`
	RiskScore       float64            `json:"risk_score"`
	RiskClass       RiskClass          `json:"risk_class"`
	ScenarioDeltas  map[string]float64 `json:"scenario_deltas"`
	TopPriority     Priority           `json:"top_priority"`
	Recommendations int                `json:"recommendations"`
}

// FeatureDelta describes how one feature differs between two regions.
type FeatureDelta struct {
	Feature Feature `json:"feature"`
	Base    float64 `json:"base"`
	Target  float64 `json:"target"`
	Delta   float64 `json:"delta"`
}

// ComparisonSummary aggregates a pairwise comparison.
type ComparisonSummary struct {
	BaseRegion   string    `json:"base_region"`
	TargetRegion string    `json:"target_region"`
	BaseScore    float64   `json:"base_score"`
	TargetScore  float64   `json:"target_score"`
	RiskDelta    float64   `json:"risk_delta"`
	BaseClass    RiskClass `json:"base_class"`
	TargetClass  RiskClass `json:"target_class"`
}

// ComparisonResult holds a ranking of regions and, for exactly two regions,
// the per-feature differences between them.
type ComparisonResult struct {
	Rankings      []RegionRanking    `json:"rankings"`
	FeatureDeltas []FeatureDelta     `json:"feature_deltas,omitempty"`
	Summary       *ComparisonSummary `json:"summary,omitempty"`
}
