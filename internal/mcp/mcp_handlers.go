package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/huangsam/fragility/core"
	"github.com/huangsam/fragility/internal/contract"
	"github.com/huangsam/fragility/internal/outwriter"
	"github.com/huangsam/fragility/internal/regions"
	"github.com/huangsam/fragility/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

func (h *toolHandler) handleAssessRegion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.RegionIDs = nil
	cfg.BoundingBox = nil
	if id := strings.TrimSpace(request.GetString("region_id", "")); id != "" {
		cfg.RegionIDs = []string{id}
	}
	if s := request.GetString("bbox", ""); s != "" {
		bbox, err := regions.ParseBBox(s)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid bbox: %v", err)), nil
		}
		cfg.BoundingBox = &bbox
	}
	if len(cfg.RegionIDs) == 0 && cfg.BoundingBox == nil {
		return mcp.NewToolResultError("either region_id or bbox must be provided"), nil
	}
	cfg.LiveWeather = request.GetBool("live_weather", cfg.LiveWeather)
	cfg.LiveTowers = request.GetBool("live_towers", cfg.LiveTowers)

	assessor, cleanup, err := core.NewAssessorFromConfig(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("setup failed: %v", err)), nil
	}
	defer func() { _ = cleanup() }()

	assessments, err := assessor.AssessRegions(ctx, []schema.RegionRequest{cfg.RegionRequest()}, toolParams(cfg, "assess_region"))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("assessment failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(assessments[0], "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleCompareRegions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.BoundingBox = nil
	cfg.RegionIDs = nil
	for id := range strings.SplitSeq(request.GetString("region_ids", ""), ",") {
		if id = strings.TrimSpace(id); id != "" {
			cfg.RegionIDs = append(cfg.RegionIDs, id)
		}
	}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	}

	assessor, cleanup, err := core.NewAssessorFromConfig(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("setup failed: %v", err)), nil
	}
	defer func() { _ = cleanup() }()

	result, err := assessor.CompareRegions(ctx, cfg.RegionIDs, cfg.ResultLimit, toolParams(cfg, "compare_regions"))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("comparison failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListScenarios(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jsonData, _ := json.MarshalIndent(core.DefaultScenarios(), "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleFeatureSchema(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	model, err := core.ModelFromConfig(h.baseCfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("setup failed: %v", err)), nil
	}

	rows := outwriter.BuildFeatureRows(schema.FeatureSpecs(), model.FeatureImportance())
	jsonData, _ := json.MarshalIndent(rows, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

// toolParams is the run configuration stored alongside history runs started from MCP.
func toolParams(cfg *contract.Config, tool string) map[string]any {
	return map[string]any{
		"command":      "mcp",
		"tool":         tool,
		"regions":      cfg.RegionIDs,
		"data_source":  string(cfg.DataSource),
		"live_weather": cfg.LiveWeather,
		"live_towers":  cfg.LiveTowers,
	}
}
