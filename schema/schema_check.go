package schema

// CheckResult holds the results of a risk gate check.
type CheckResult struct {
	Passed          bool
	MaxRisk         float64
	TotalRegions    int
	FailedRegions   []CheckFailedRegion
	HighestRegion   string
	HighestScore    float64
	AverageScore    float64
	AtRiskCount     int
	Recommendations map[Priority]int // Count of recommendations per priority across regions
}

// CheckFailedRegion represents a region whose risk score exceeded the gate.
type CheckFailedRegion struct {
	Region    string
	Score     float64
	Class     RiskClass
	Threshold float64
}
