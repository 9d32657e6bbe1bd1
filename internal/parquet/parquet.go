// Package parquet exports assessment history and assessment results to Parquet
// files using github.com/parquet-go/parquet-go.
package parquet

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/huangsam/fragility/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents one assessment run with metadata.
// This struct maps to the fragility_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the run began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	TotalAssessments int32 `parquet:"total_assessments,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// Assessment is one flattened assessment row.
// This struct maps to the fragility_assessments database table.
type Assessment struct {
	RunID               int64     `parquet:"run_id,snappy"`
	AssessmentID        string    `parquet:"assessment_id,snappy"`
	RegionID            string    `parquet:"region_id,snappy"`
	RegionName          *string   `parquet:"region_name,optional,snappy"`
	AssessedAt          time.Time `parquet:"assessed_at,snappy"`
	AreaSqKm            float64   `parquet:"area_sq_km,snappy"`
	RiskScore           float64   `parquet:"risk_score,snappy"`
	RiskClass           string    `parquet:"risk_class,snappy"`
	WeatherDelta        float64   `parquet:"weather_delta,snappy"`
	SurgeDelta          float64   `parquet:"surge_delta,snappy"`
	RelayDelta          float64   `parquet:"relay_delta,snappy"`
	RecommendationCount int32     `parquet:"recommendation_count,snappy"`
	TopPriority         string    `parquet:"top_priority,snappy"`

	// Actions joins the recommended actions with "; " (empty for history rows)
	Actions string `parquet:"actions,snappy"`

	// FeaturesJSON is the feature vector as a JSON object
	FeaturesJSON string `parquet:"features_json,snappy"`
}

// write encodes rows of any struct type with schema inference from struct tags.
func write[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

func writeFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return write(file, data)
}

// WriteRunsParquet writes runs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteAssessmentsParquet writes assessment rows to a Parquet file.
func WriteAssessmentsParquet(data []Assessment, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteAssessments writes assessment rows to w.
func WriteAssessments(w io.Writer, data []Assessment) error {
	return write(w, data)
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:            record.RunID,
			StartTime:        record.StartTime,
			EndTime:          record.EndTime,
			RunDurationMs:    record.RunDurationMs,
			TotalAssessments: record.TotalAssessments,
			ConfigParams:     record.ConfigParams,
		}
	}
	return result
}

// ConvertAssessmentRecords converts stored history rows for Parquet export.
func ConvertAssessmentRecords(records []schema.AssessmentRecord) []Assessment {
	result := make([]Assessment, len(records))
	for i, r := range records {
		result[i] = Assessment{
			RunID:               r.RunID,
			AssessmentID:        r.AssessmentID,
			RegionID:            r.RegionID,
			RegionName:          r.RegionName,
			AssessedAt:          r.AssessedAt,
			AreaSqKm:            r.AreaSqKm,
			RiskScore:           r.RiskScore,
			RiskClass:           r.RiskClass,
			WeatherDelta:        r.WeatherDelta,
			SurgeDelta:          r.SurgeDelta,
			RelayDelta:          r.RelayDelta,
			RecommendationCount: r.RecommendationCount,
			TopPriority:         r.TopPriority,
			FeaturesJSON:        r.FeaturesJSON,
		}
	}
	return result
}

// ConvertAssessments flattens live assessment results. RunID is left at 0.
func ConvertAssessments(assessments []schema.Assessment) ([]Assessment, error) {
	result := make([]Assessment, len(assessments))
	for i, a := range assessments {
		features, err := json.Marshal(a.Features)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal features of %s: %w", a.Region, err)
		}

		var name *string
		if a.Name != "" {
			n := a.Name
			name = &n
		}

		actions := make([]string, len(a.Recommendations))
		for j, r := range a.Recommendations {
			actions[j] = r.Action
		}

		weather, _ := a.ScenarioDelta(schema.ExtremeWeatherScenario)
		surge, _ := a.ScenarioDelta(schema.LoadSurgeScenario)
		relay, _ := a.ScenarioDelta(schema.RelayFailureScenario)

		result[i] = Assessment{
			AssessmentID:        a.ID,
			RegionID:            a.Region,
			RegionName:          name,
			AssessedAt:          a.AssessedAt,
			AreaSqKm:            a.Geometry.AreaSqKm,
			RiskScore:           a.Risk.RiskScore,
			RiskClass:           string(a.Risk.RiskClass),
			WeatherDelta:        weather,
			SurgeDelta:          surge,
			RelayDelta:          relay,
			RecommendationCount: int32(len(a.Recommendations)),
			TopPriority:         string(a.TopPriority()),
			Actions:             strings.Join(actions, "; "),
			FeaturesJSON:        string(features),
		}
	}
	return result, nil
}
