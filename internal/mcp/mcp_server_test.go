package mcp_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/huangsam/fragility/internal/contract"
	mcp_internal "github.com/huangsam/fragility/internal/mcp"
	"github.com/huangsam/fragility/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig() *contract.Config {
	return &contract.Config{
		Output:     schema.JSONOut,
		Precision:  2,
		DataSource: schema.CSVSource,
		AreaMethod: schema.FlatArea,
		Workers:    2,
		AppName:    contract.DefaultAppName,
		Model:      contract.DefaultModelParams(),
		Thresholds: contract.DefaultRuleThresholds(),
	}
}

func callTool(t *testing.T, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	return callToolWith(t, baseConfig(), name, args)
}

func callToolWith(t *testing.T, cfg *contract.Config, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	// A nil manager keeps the tools away from history and cache stores
	s := mcp_internal.NewMCPServer(cfg, nil)
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotNil(t, res)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		tool     string
		args     map[string]any
		contains string
	}{
		{"assess_region without target", "assess_region", map[string]any{}, "either region_id or bbox must be provided"},
		{"assess_region bad bbox", "assess_region", map[string]any{"bbox": "1,2,3"}, "invalid bbox"},
		{"assess_region unknown region", "assess_region", map[string]any{"region_id": "region_9"}, "unknown region_id: region_9"},
		{"compare_regions single id", "compare_regions", map[string]any{"region_ids": "region_1"}, "compare requires at least two region ids, got 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, tt.tool, tt.args)
			assert.True(t, res.IsError, "The response should indicate an error state")
			assert.Contains(t, resultText(t, res), tt.contains)
		})
	}
}

func TestMCPServerHandlers_AssessRegion(t *testing.T) {
	res := callTool(t, "assess_region", map[string]any{"region_id": "region_2"})
	require.False(t, res.IsError, resultText(t, res))

	var got schema.Assessment
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &got))
	assert.Equal(t, "region_2", got.Region)
	assert.Equal(t, 640.0, got.Features.Value(schema.AvgElevation))
	assert.GreaterOrEqual(t, got.Risk.RiskScore, schema.MinRiskScore)
	assert.LessOrEqual(t, got.Risk.RiskScore, schema.MaxRiskScore)
	assert.Len(t, got.Scenarios, 3)
	assert.NotEmpty(t, got.Recommendations)
}

func TestMCPServerHandlers_CompareRegions(t *testing.T) {
	res := callTool(t, "compare_regions", map[string]any{"region_ids": "region_1, region_3"})
	require.False(t, res.IsError, resultText(t, res))

	var got schema.ComparisonResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &got))
	require.Len(t, got.Rankings, 2)
	assert.Len(t, got.FeatureDeltas, schema.NumFeatures)
	require.NotNil(t, got.Summary)
	assert.Equal(t, "region_1", got.Summary.BaseRegion)
	assert.Equal(t, "region_3", got.Summary.TargetRegion)
}

func TestMCPServerHandlers_Catalog(t *testing.T) {
	t.Run("list_scenarios", func(t *testing.T) {
		res := callTool(t, "list_scenarios", nil)
		require.False(t, res.IsError)

		var catalog []schema.ScenarioDefinition
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &catalog))
		names := make([]string, len(catalog))
		for i, sc := range catalog {
			names[i] = sc.Name
		}
		assert.Equal(t, []string{schema.ExtremeWeatherScenario, schema.LoadSurgeScenario, schema.RelayFailureScenario}, names)
	})

	t.Run("feature_schema", func(t *testing.T) {
		res := callTool(t, "feature_schema", nil)
		require.False(t, res.IsError)

		var rows []map[string]any
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &rows))
		require.Len(t, rows, schema.NumFeatures)
		assert.Equal(t, "avg_elevation", rows[0]["name"])
		assert.Equal(t, "region_area_sq_km", rows[schema.NumFeatures-1]["name"])
	})
}

func TestFeatureSchemaIgnoresRegionSource(t *testing.T) {
	cfg := baseConfig()
	cfg.DataSource = schema.SQLSource
	cfg.DataBackend = "oracle"

	res := callToolWith(t, cfg, "feature_schema", nil)
	require.False(t, res.IsError, resultText(t, res))

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &rows))
	assert.Len(t, rows, schema.NumFeatures)

	// Tools that load region data still report the broken source
	res = callToolWith(t, cfg, "assess_region", map[string]any{"region_id": "region_1"})
	assert.True(t, res.IsError)
}
