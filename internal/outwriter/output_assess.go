package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/fragility/internal/contract"
	"github.com/huangsam/fragility/internal/parquet"
	"github.com/huangsam/fragility/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Column headers of the assessment CSV sections.
var (
	scenarioCSVHeader = []string{
		"region",
		"risk_score",
		"risk_class",
		"scenario",
		"adjusted_risk_score",
		"delta",
		"factors",
	}
	recommendationCSVHeader = []string{
		"region",
		"priority",
		"action",
		"rationale",
	}
)

// PrintAssessments outputs the assessments, dispatching based on the output format configured.
func PrintAssessments(assessments []schema.Assessment, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAssessmentsJSON(w, assessments)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAssessmentsCSV(w, assessments, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		rows, err := parquet.ConvertAssessments(assessments)
		if err != nil {
			return err
		}
		if err := parquet.WriteAssessmentsParquet(rows, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
	default:
		// Default to human-readable tables
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAssessmentsText(w, assessments, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
	return nil
}

// writeAssessmentsJSON writes a single assessment as an object and several as an array.
func writeAssessmentsJSON(w io.Writer, assessments []schema.Assessment) error {
	if len(assessments) == 1 {
		return writeJSON(w, assessments[0])
	}
	return writeJSON(w, assessments)
}

// writeAssessmentsCSV writes one row per scenario, then one row per recommendation
// in a second section separated by an empty line.
func writeAssessmentsCSV(w io.Writer, assessments []schema.Assessment, fmtFloat func(float64) string) error {
	if err := writeCSVWithHeader(w, scenarioCSVHeader, func(cw *csv.Writer) error {
		for _, a := range assessments {
			for _, s := range a.Scenarios {
				rec := []string{
					a.Region,
					fmtFloat(a.Risk.RiskScore),
					string(a.Risk.RiskClass),
					s.ScenarioName,
					fmtFloat(s.AdjustedRiskScore),
					fmtFloat(s.Delta),
					formatFactors(s.ContributingFactors),
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	return writeCSVWithHeader(w, recommendationCSVHeader, func(cw *csv.Writer) error {
		for _, a := range assessments {
			for _, r := range a.Recommendations {
				if err := cw.Write([]string{a.Region, string(r.Priority), r.Action, r.Rationale}); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// writeAssessmentsText renders each assessment as a summary line followed by
// a scenario table and a recommendation table.
func writeAssessmentsText(w io.Writer, assessments []schema.Assessment, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	classLabel, priorityLabel, severityLabel := labelFuncs(cfg.UseColors)

	for i, a := range assessments {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := writeAssessmentSummary(w, a, fmtFloat, classLabel, severityLabel); err != nil {
			return err
		}
		if err := writeScenarioTable(w, a, fmtFloat); err != nil {
			return err
		}
		if err := writeRecommendationTable(w, a, cfg, priorityLabel); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "Assessed %d region(s) in %v with %d workers. Cache backend: %s\n",
		len(assessments), duration.Round(time.Millisecond), cfg.Workers, cfg.CacheBackend)
	return err
}

func writeAssessmentSummary(w io.Writer, a schema.Assessment, fmtFloat func(float64) string, classLabel func(schema.RiskClass) string, severityLabel func(float64) string) error {
	title := a.Region
	if a.Name != "" {
		title = fmt.Sprintf("%s (%s)", a.Region, a.Name)
	}
	if _, err := fmt.Fprintf(w, "📍 %s: %s at %.4f,%.4f, %s km²\n",
		title, a.Geometry.Kind, a.Geometry.Lat, a.Geometry.Lon, fmtFloat(a.Geometry.AreaSqKm)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "⚠️  Risk: %s %s (%s)\n",
		fmtFloat(a.Risk.RiskScore), classLabel(a.Risk.RiskClass), severityLabel(a.Risk.RiskScore)); err != nil {
		return err
	}
	if len(a.Enrichments) > 0 {
		if _, err := fmt.Fprintf(w, "🛰️  Live data: %v\n", a.Enrichments); err != nil {
			return err
		}
	}
	return nil
}

func writeScenarioTable(w io.Writer, a schema.Assessment, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Scenario", "Adjusted", "Delta", "Factors"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(a.Scenarios))
	for _, s := range a.Scenarios {
		data = append(data, []string{
			s.ScenarioName,
			fmtFloat(s.AdjustedRiskScore),
			formatDelta(s.Delta, fmtFloat),
			formatFactors(s.ContributingFactors),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeRecommendationTable(w io.Writer, a schema.Assessment, cfg *contract.Config, priorityLabel func(schema.Priority) string) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Priority", "Action", "Rationale"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	// Priority and action columns with borders
	textWidth := GetMaxTableTextWidth(cfg, 50)
	data := make([][]string, 0, len(a.Recommendations))
	for _, r := range a.Recommendations {
		data = append(data, []string{
			priorityLabel(r.Priority),
			r.Action,
			contract.TruncateText(r.Rationale, textWidth),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// formatDelta prefixes positive deltas with a plus sign.
func formatDelta(delta float64, fmtFloat func(float64) string) string {
	if delta > 0 {
		return "+" + fmtFloat(delta)
	}
	return fmtFloat(delta)
}
