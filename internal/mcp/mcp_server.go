// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/fragility/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the Fragility MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Fragility Assessment Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: assess_region ---
	s.AddTool(mcp.NewTool("assess_region",
		mcp.WithDescription("Assess connectivity fragility of a region: risk score, what-if scenarios and recommendations."),
		mcp.WithString("region_id", mcp.Description("Known region id such as region_1. Takes precedence over bbox.")),
		mcp.WithString("bbox", mcp.Description("Bounding box as 'minLat,minLon,maxLat,maxLon'.")),
		mcp.WithBoolean("live_weather", mcp.Description("Replace table weather with the Open-Meteo archive.")),
		mcp.WithBoolean("live_towers", mcp.Description("Replace table tower density with an Overpass count.")),
	), h.handleAssessRegion)

	// --- 2. Tool: compare_regions ---
	s.AddTool(mcp.NewTool("compare_regions",
		mcp.WithDescription("Rank several regions by risk. For exactly two regions, include per-feature differences."),
		mcp.WithString("region_ids", mcp.Description("Comma-separated region ids (at least two)."), mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Limit the number of ranked regions returned.")),
	), h.handleCompareRegions)

	// --- 3. Tool: list_scenarios ---
	s.AddTool(mcp.NewTool("list_scenarios",
		mcp.WithDescription("List the what-if scenario catalog with its feature modifiers."),
	), h.handleListScenarios)

	// --- 4. Tool: feature_schema ---
	s.AddTool(mcp.NewTool("feature_schema",
		mcp.WithDescription("List the ordered feature schema with the risk model's feature importances."),
	), h.handleFeatureSchema)

	return s
}

// StartMCPServer starts the Fragility MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
