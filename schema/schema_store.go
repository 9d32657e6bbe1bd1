package schema

import "time"

// RunRecord represents a row from the fragility_runs table.
type RunRecord struct {
	RunID            int64
	StartTime        time.Time
	EndTime          *time.Time
	RunDurationMs    *int32
	TotalAssessments int32
	ConfigParams     *string
}

// AssessmentRecord represents a row from the fragility_assessments table.
type AssessmentRecord struct {
	RunID               int64
	AssessmentID        string
	RegionID            string
	RegionName          *string
	AssessedAt          time.Time
	AreaSqKm            float64
	RiskScore           float64
	RiskClass           string
	WeatherDelta        float64
	SurgeDelta          float64
	RelayDelta          float64
	RecommendationCount int32
	TopPriority         string
	FeaturesJSON        string
}
