package schema

import (
	"maps"
	"time"
)

// RiskPrediction is the scored output of the risk model for one feature vector.
type RiskPrediction struct {
	RiskScore         float64            `json:"risk_score"`
	RiskClass         RiskClass          `json:"risk_class"`
	FeatureImportance map[string]float64 `json:"feature_importance"`
}

// ScenarioDefinition is a named set of multiplicative perturbations.
type ScenarioDefinition struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Modifiers   map[string]float64 `json:"modifiers"`
}

// ScenarioResult is the outcome of re-scoring one perturbed vector.
type ScenarioResult struct {
	ScenarioName        string             `json:"scenario_name"`
	AdjustedRiskScore   float64            `json:"adjusted_risk_score"`
	Delta               float64            `json:"delta"`
	ContributingFactors map[string]float64 `json:"contributing_factors"`
}

// Recommendation is one prioritized mitigation.
type Recommendation struct {
	Action    string   `json:"action"`
	Rationale string   `json:"rationale"`
	Priority  Priority `json:"priority"`
}

// RuleThresholds holds the cutoffs the recommendation rules compare against.
type RuleThresholds struct {
	SatelliteRisk float64 `json:"satellite_risk"` // risk score that triggers satellite backup
	WeatherDelta  float64 `json:"weather_delta"`  // extreme weather delta that triggers redundancy
	SurgeDelta    float64 `json:"surge_delta"`    // load surge delta that triggers densification
	BackhaulMin   float64 `json:"backhaul_min"`   // backhaul redundancy floor
	TowerMin      float64 `json:"tower_min"`      // tower density floor
}

// ModelParams holds the ensemble hyperparameters.
type ModelParams struct {
	Trees    int   `json:"trees"`
	MaxDepth int   `json:"max_depth"`
	Seed     int64 `json:"seed"`
}

// Record is one raw per-domain attribute map.
type Record map[string]float64

// Clone returns a copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	maps.Copy(out, r)
	return out
}

// RegionData bundles the four raw records for one region.
type RegionData struct {
	RegionID   string `json:"region_id"`
	Terrain    Record `json:"terrain"`
	Population Record `json:"population"`
	Weather    Record `json:"weather"`
	Network    Record `json:"network"`
}

// Clone returns a deep copy of the region data.
func (d RegionData) Clone() RegionData {
	return RegionData{
		RegionID:   d.RegionID,
		Terrain:    d.Terrain.Clone(),
		Population: d.Population.Clone(),
		Weather:    d.Weather.Clone(),
		Network:    d.Network.Clone(),
	}
}

// BoundingBox is a lat/lon rectangle.
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// RegionRequest identifies a region by id, by bounding box, or both.
type RegionRequest struct {
	RegionID    string       `json:"region_id,omitempty"`
	BoundingBox *BoundingBox `json:"bounding_box,omitempty"`
}

// Geometry is the resolved spatial descriptor of a region.
type Geometry struct {
	Kind        GeometryKind `json:"geometry_type"`
	Lat         float64      `json:"lat"`
	Lon         float64      `json:"lon"`
	BoundingBox *BoundingBox `json:"bounding_box,omitempty"`
	AreaSqKm    float64      `json:"area_sq_km"`
}

// Record returns the geo descriptor consumed by the feature builder.
func (g Geometry) Record() Record {
	return Record{"area_sq_km": g.AreaSqKm}
}

// Assessment is the complete pipeline output for one region.
type Assessment struct {
	ID              string           `json:"id"`
	Region          string           `json:"region"`
	Name            string           `json:"name,omitempty"`
	Geometry        Geometry         `json:"geometry"`
	Features        FeatureVector    `json:"features"`
	Risk            RiskPrediction   `json:"risk"`
	Scenarios       []ScenarioResult `json:"scenarios"`
	Recommendations []Recommendation `json:"recommendations"`
	Enrichments     []string         `json:"enrichments,omitempty"`
	AssessedAt      time.Time        `json:"assessed_at"`
	Duration        time.Duration    `json:"-"`
}

// ScenarioDelta returns the delta of the named scenario, if present.
func (a Assessment) ScenarioDelta(name string) (float64, bool) {
	for _, s := range a.Scenarios {
		if s.ScenarioName == name {
			return s.Delta, true
		}
	}
	return 0, false
}

// TopPriority returns the highest priority among the recommendations.
func (a Assessment) TopPriority() Priority {
	top := LowPriority
	for _, r := range a.Recommendations {
		if PriorityRank(r.Priority) > PriorityRank(top) {
			top = r.Priority
		}
	}
	return top
}

// PriorityRank orders priorities from Low (1) to High (3).
func PriorityRank(p Priority) int {
	switch p {
	case HighPriority:
		return 3
	case MediumPriority:
		return 2
	case LowPriority:
		return 1
	default:
		return 0
	}
}
