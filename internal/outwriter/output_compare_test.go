package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/fragility/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleComparison() schema.ComparisonResult {
	return schema.ComparisonResult{
		Rankings: []schema.RegionRanking{
			{
				Rank: 1, Region: "region_3", RiskScore: 71.5, RiskClass: schema.AtRiskClass,
				ScenarioDeltas:  map[string]float64{schema.ExtremeWeatherScenario: 12.25, schema.LoadSurgeScenario: 3, schema.RelayFailureScenario: -0.5},
				TopPriority:     schema.HighPriority,
				Recommendations: 3,
			},
			{
				Rank: 2, Region: "region_1", Name: "Nagpur", RiskScore: 18.75, RiskClass: schema.StableClass,
				ScenarioDeltas:  map[string]float64{schema.ExtremeWeatherScenario: 1.5},
				TopPriority:     schema.LowPriority,
				Recommendations: 1,
			},
		},
		FeatureDeltas: []schema.FeatureDelta{
			{Feature: schema.AvgElevation, Base: 210, Target: 1150, Delta: 940},
			{Feature: schema.TowerDensity, Base: 5.5, Target: 1.1, Delta: -4.4},
			{Feature: schema.AvgRainfall, Base: 1, Target: 1, Delta: 0},
		},
		Summary: &schema.ComparisonSummary{
			BaseRegion: "region_1", TargetRegion: "region_3",
			BaseScore: 18.75, TargetScore: 71.5, RiskDelta: 52.75,
			BaseClass: schema.StableClass, TargetClass: schema.AtRiskClass,
		},
	}
}

func TestWriteComparisonCSV(t *testing.T) {
	fmtFloat, intFmt := createFormatters(2)

	t.Run("rankings and feature deltas", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeComparisonCSV(&buf, sampleComparison(), fmtFloat, intFmt))

		sections := strings.Split(buf.String(), "\n\n")
		require.Len(t, sections, 2)

		rankings, err := csv.NewReader(strings.NewReader(sections[0])).ReadAll()
		require.NoError(t, err)
		require.Len(t, rankings, 3)
		assert.Equal(t, []string{"1", "region_3", "", "71.50", "At-risk", "12.25", "3.00", "-0.50", "High", "3"}, rankings[1])
		assert.Equal(t, []string{"2", "region_1", "Nagpur", "18.75", "Stable", "1.50", "0.00", "0.00", "Low", "1"}, rankings[2])

		deltas, err := csv.NewReader(strings.NewReader(sections[1])).ReadAll()
		require.NoError(t, err)
		require.Len(t, deltas, 4)
		assert.Equal(t, []string{"feature", "base", "target", "delta"}, deltas[0])
		assert.Equal(t, []string{"tower_density", "5.5", "1.1", "-4.4"}, deltas[2])
	})

	t.Run("rankings only", func(t *testing.T) {
		result := sampleComparison()
		result.FeatureDeltas = nil
		result.Summary = nil

		var buf bytes.Buffer
		require.NoError(t, writeComparisonCSV(&buf, result, fmtFloat, intFmt))
		assert.NotContains(t, buf.String(), "\n\n")
		assert.NotContains(t, buf.String(), "feature,base")
	})
}

func TestWriteComparisonTable(t *testing.T) {
	cfg := plainConfig(schema.TextOut)
	fmtFloat, _ := createFormatters(cfg.Precision)

	t.Run("pair shows feature deltas", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeComparisonTable(&buf, sampleComparison(), cfg, fmtFloat, 250*time.Millisecond))
		out := buf.String()

		assert.Contains(t, out, "region_3")
		assert.Contains(t, out, "+12.25")
		assert.Contains(t, out, "📊 region_1 → region_3: risk 18.75 → 71.50 (+52.75)")
		assert.Contains(t, out, "avg_elevation")
		assert.Contains(t, out, "+940")
		assert.NotContains(t, out, "avg_rainfall")
		assert.Contains(t, out, "Compared 2 regions in 250ms with 4 workers")
	})

	t.Run("identical pair", func(t *testing.T) {
		result := sampleComparison()
		result.FeatureDeltas = []schema.FeatureDelta{{Feature: schema.AvgRainfall, Base: 1, Target: 1}}

		var buf bytes.Buffer
		require.NoError(t, writeComparisonTable(&buf, result, cfg, fmtFloat, time.Second))
		assert.Contains(t, buf.String(), "No feature differences")
	})

	t.Run("ranking only", func(t *testing.T) {
		result := sampleComparison()
		result.Summary = nil

		var buf bytes.Buffer
		require.NoError(t, writeComparisonTable(&buf, result, cfg, fmtFloat, time.Second))
		assert.NotContains(t, buf.String(), "📊")
	})
}

func TestPrintComparison(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		cfg := plainConfig(schema.JSONOut)
		cfg.OutputFile = filepath.Join(t.TempDir(), "compare.json")
		require.NoError(t, PrintComparison(sampleComparison(), cfg, time.Second))

		var got schema.ComparisonResult
		require.NoError(t, json.Unmarshal(readFile(t, cfg.OutputFile), &got))
		assert.Len(t, got.Rankings, 2)
		require.NotNil(t, got.Summary)
		assert.Equal(t, 52.75, got.Summary.RiskDelta)
	})

	t.Run("parquet unsupported", func(t *testing.T) {
		cfg := plainConfig(schema.ParquetOut)
		cfg.OutputFile = filepath.Join(t.TempDir(), "compare.parquet")
		err := PrintComparison(sampleComparison(), cfg, time.Second)
		assert.EqualError(t, err, "parquet output is not supported for comparisons")
	})
}
