// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/huangsam/fragility/internal/contract"
	"github.com/huangsam/fragility/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteAssessments prints assessments using the configured output format.
func (ow *OutWriter) WriteAssessments(assessments []schema.Assessment, cfg *contract.Config, duration time.Duration) error {
	return PrintAssessments(assessments, cfg, duration)
}

// WriteComparison prints a region comparison using the configured output format.
func (ow *OutWriter) WriteComparison(result schema.ComparisonResult, cfg *contract.Config, duration time.Duration) error {
	return PrintComparison(result, cfg, duration)
}

// WriteScenarios prints the scenario catalog using the configured output format.
func (ow *OutWriter) WriteScenarios(catalog []schema.ScenarioDefinition, cfg *contract.Config) error {
	return PrintScenarios(catalog, cfg)
}

// WriteSchema prints the feature schema using the configured output format.
func (ow *OutWriter) WriteSchema(specs []schema.FeatureSpec, importance map[string]float64, cfg *contract.Config) error {
	return PrintSchema(specs, importance, cfg)
}

// WriteRegions prints region ids using the configured output format.
func (ow *OutWriter) WriteRegions(ids []string, cfg *contract.Config) error {
	return PrintRegions(ids, cfg)
}

// WriteRuns prints history runs using the configured output format.
func (ow *OutWriter) WriteRuns(runs []schema.RunRecord, cfg *contract.Config) error {
	return PrintRuns(runs, cfg)
}

// LogAssessHeader prints a concise, 2-line header for an assessment.
func LogAssessHeader(w io.Writer, cfg *contract.Config, count int) {
	target := strings.Join(cfg.RegionIDs, ", ")
	if target == "" && cfg.BoundingBox != nil {
		b := cfg.BoundingBox
		target = fmt.Sprintf("bbox %.4f,%.4f,%.4f,%.4f", b.MinLat, b.MinLon, b.MaxLat, b.MaxLon)
	}

	// Line 1: What is assessed
	_, _ = fmt.Fprintf(w, "🔎 Regions: %s (%d)\n", target, count)

	// Line 2: Where the data comes from
	_, _ = fmt.Fprintf(w, "🗂️  Data: %s (area: %s, live: %s)\n", cfg.DataSource, cfg.AreaMethod, liveSources(cfg))
}

// LogCompareHeader prints a header for a region comparison.
func LogCompareHeader(w io.Writer, cfg *contract.Config) {
	_, _ = fmt.Fprintf(w, "📊 Comparing: %s\n", strings.Join(cfg.RegionIDs, " ↔ "))
	_, _ = fmt.Fprintf(w, "🗂️  Data: %s (area: %s, live: %s)\n", cfg.DataSource, cfg.AreaMethod, liveSources(cfg))
}

// liveSources names the enabled live services, or "off".
func liveSources(cfg *contract.Config) string {
	var sources []string
	if cfg.LiveWeather {
		sources = append(sources, "weather")
	}
	if cfg.LiveTowers {
		sources = append(sources, "towers")
	}
	if cfg.Geocode {
		sources = append(sources, "geocode")
	}
	if len(sources) == 0 {
		return "off"
	}
	return strings.Join(sources, "+")
}
