// Package core has core logic for assessment, simulation, recommendation and ranking.
package core

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/huangsam/fragility/internal/contract"
	"github.com/huangsam/fragility/internal/outwriter"
	"github.com/huangsam/fragility/schema"
)

// ExecutorFunc defines the function signature for executing the CLI commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteAssess runs the full pipeline for the configured region ids, or for
// the bounding box when no id is given, and prints the assessments.
func ExecuteAssess(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	reqs := assessRequests(cfg)
	if len(reqs) == 0 {
		return errors.New("assess requires a region id or --bbox")
	}

	assessor, cleanup, err := NewAssessorFromConfig(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	defer func() { _ = cleanup() }()

	if cfg.Output == schema.TextOut {
		outwriter.LogAssessHeader(os.Stderr, cfg, len(reqs))
	}

	assessments, err := assessor.AssessRegions(ctx, reqs, assessParams(cfg, "assess"))
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.NewOutWriter().WriteAssessments(assessments, cfg, duration)
}

// ExecuteCompare assesses several regions and prints their ranking. For two
// regions the per-feature deltas are printed as well.
func ExecuteCompare(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()

	assessor, cleanup, err := NewAssessorFromConfig(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	defer func() { _ = cleanup() }()

	// Print single header for the comparison
	if cfg.Output == schema.TextOut {
		outwriter.LogCompareHeader(os.Stderr, cfg)
	}

	result, err := assessor.CompareRegions(ctx, cfg.RegionIDs, cfg.ResultLimit, assessParams(cfg, "compare"))
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.NewOutWriter().WriteComparison(result, cfg, duration)
}

// ExecuteScenarios prints the what-if scenario catalog.
// This is a static display that does not load any region.
func ExecuteScenarios(_ context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	return outwriter.NewOutWriter().WriteScenarios(DefaultScenarios(), cfg)
}

// ExecuteSchema prints the feature schema together with the model's importances.
func ExecuteSchema(_ context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	model, err := ModelFromConfig(cfg)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteSchema(schema.FeatureSpecs(), model.FeatureImportance(), cfg)
}

// ExecuteRegions prints the region ids the configured source knows.
func ExecuteRegions(ctx context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	source, cleanup, err := NewSourceFromConfig(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = cleanup() }()

	ids, err := source.List(ctx)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteRegions(ids, cfg)
}

// assessRequests turns positional ids, or else the bounding box, into requests.
func assessRequests(cfg *contract.Config) []schema.RegionRequest {
	if len(cfg.RegionIDs) == 0 {
		if cfg.BoundingBox == nil {
			return nil
		}
		return []schema.RegionRequest{cfg.RegionRequest()}
	}
	reqs := make([]schema.RegionRequest, 0, len(cfg.RegionIDs))
	for _, id := range cfg.RegionIDs {
		reqs = append(reqs, schema.RegionRequest{RegionID: id, BoundingBox: cfg.BoundingBox})
	}
	return reqs
}

// assessParams is the run configuration stored alongside history runs.
func assessParams(cfg *contract.Config, command string) map[string]any {
	return map[string]any{
		"command":      command,
		"regions":      cfg.RegionIDs,
		"data_source":  string(cfg.DataSource),
		"area_method":  string(cfg.AreaMethod),
		"live_weather": cfg.LiveWeather,
		"live_towers":  cfg.LiveTowers,
		"workers":      cfg.Workers,
		"result_limit": cfg.ResultLimit,
		"model":        cfg.Model,
	}
}
