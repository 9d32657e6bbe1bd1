package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/fragility/internal/contract"
	"github.com/huangsam/fragility/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintComparison outputs the comparison, dispatching based on the output format configured.
func PrintComparison(result schema.ComparisonResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeComparisonCSV(w, result, fmtFloat, intFmt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for comparisons")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeComparisonTable(w, result, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
	return nil
}

// writeComparisonCSV writes the ranking rows, then the feature deltas when present.
func writeComparisonCSV(w io.Writer, result schema.ComparisonResult, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"rank",
		"region",
		"name",
		"risk_score",
		"risk_class",
		"weather_delta",
		"surge_delta",
		"relay_delta",
		"top_priority",
		"recommendations",
	}
	if err := writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range result.Rankings {
			rec := []string{
				strconv.Itoa(r.Rank),
				r.Region,
				r.Name,
				fmtFloat(r.RiskScore),
				string(r.RiskClass),
				fmtFloat(r.ScenarioDeltas[schema.ExtremeWeatherScenario]),
				fmtFloat(r.ScenarioDeltas[schema.LoadSurgeScenario]),
				fmtFloat(r.ScenarioDeltas[schema.RelayFailureScenario]),
				string(r.TopPriority),
				fmt.Sprintf(intFmt, r.Recommendations),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if len(result.FeatureDeltas) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return writeCSVWithHeader(w, []string{"feature", "base", "target", "delta"}, func(cw *csv.Writer) error {
		for _, d := range result.FeatureDeltas {
			rec := []string{
				string(d.Feature),
				strconv.FormatFloat(d.Base, 'f', -1, 64),
				strconv.FormatFloat(d.Target, 'f', -1, 64),
				strconv.FormatFloat(d.Delta, 'f', -1, 64),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeComparisonTable writes the ranking table and, for a pair, the feature deltas.
func writeComparisonTable(w io.Writer, result schema.ComparisonResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	classLabel, priorityLabel, severityLabel := labelFuncs(cfg.UseColors)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Region", "Score", "Class", "Label", "Weather Δ", "Surge Δ", "Relay Δ", "Top", "Recs"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(result.Rankings))
	for _, r := range result.Rankings {
		data = append(data, []string{
			strconv.Itoa(r.Rank),
			r.Region,
			fmtFloat(r.RiskScore),
			classLabel(r.RiskClass),
			severityLabel(r.RiskScore),
			formatDelta(r.ScenarioDeltas[schema.ExtremeWeatherScenario], fmtFloat),
			formatDelta(r.ScenarioDeltas[schema.LoadSurgeScenario], fmtFloat),
			formatDelta(r.ScenarioDeltas[schema.RelayFailureScenario], fmtFloat),
			priorityLabel(r.TopPriority),
			strconv.Itoa(r.Recommendations),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if result.Summary != nil {
		if err := writeFeatureDeltaTable(w, result, cfg, fmtFloat); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "Compared %d regions in %v with %d workers\n", len(result.Rankings), duration.Round(time.Millisecond), cfg.Workers)
	return err
}

func writeFeatureDeltaTable(w io.Writer, result schema.ComparisonResult, cfg *contract.Config, fmtFloat func(float64) string) error {
	s := result.Summary

	var red, green func(...any) string
	if cfg.UseColors {
		red = color.New(color.FgRed).SprintFunc()
		green = color.New(color.FgGreen).SprintFunc()
	} else {
		red = fmt.Sprint
		green = fmt.Sprint
	}
	deltaStr := formatDelta(s.RiskDelta, fmtFloat)
	switch {
	case s.RiskDelta > 0:
		deltaStr = red(deltaStr)
	case s.RiskDelta < 0:
		deltaStr = green(deltaStr)
	}
	if _, err := fmt.Fprintf(w, "📊 %s → %s: risk %s → %s (%s)\n",
		s.BaseRegion, s.TargetRegion, fmtFloat(s.BaseScore), fmtFloat(s.TargetScore), deltaStr); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Feature", s.BaseRegion, s.TargetRegion, "Delta"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, d := range result.FeatureDeltas {
		if d.Delta == 0 {
			continue
		}
		data = append(data, []string{
			string(d.Feature),
			strconv.FormatFloat(d.Base, 'f', -1, 64),
			strconv.FormatFloat(d.Target, 'f', -1, 64),
			formatDelta(d.Delta, func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }),
		})
	}
	if len(data) == 0 {
		_, err := fmt.Fprintln(w, "No feature differences")
		return err
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
