package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/huangsam/fragility/internal/contract"
	"github.com/huangsam/fragility/internal/logging"
	"github.com/huangsam/fragility/internal/regions"
	"github.com/huangsam/fragility/schema"
	"golang.org/x/sync/errgroup"
)

// AssessorDeps are the collaborators of an Assessor. Model and Source are required.
type AssessorDeps struct {
	Model        Scorer
	Scenarios    []schema.ScenarioDefinition // nil means DefaultScenarios
	Rules        []Rule                      // nil means DefaultRules(DefaultThresholds())
	Source       contract.RegionSource
	AreaMethod   schema.AreaMethod
	Enrichers    []contract.Enricher
	Namer        contract.RegionNamer
	History      contract.HistoryStore
	Workers      int
	LiveFallback bool
}

// Assessor runs resolve, load, enrich, build, predict, simulate and recommend
// for region requests. It is safe for concurrent use once constructed.
type Assessor struct {
	model     Scorer
	simulator *Simulator
	engine    *RecommendationEngine
	resolver  *regions.Resolver
	source    contract.RegionSource
	enrichers []contract.Enricher
	namer     contract.RegionNamer
	history   contract.HistoryStore
	workers   int
	fallback  bool
	log       *slog.Logger
}

// NewAssessor validates the dependencies and returns an Assessor.
func NewAssessor(deps AssessorDeps) (*Assessor, error) {
	if deps.Model == nil {
		return nil, errors.New("assessor requires a model")
	}
	if deps.Source == nil {
		return nil, errors.New("assessor requires a region source")
	}
	workers := deps.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Assessor{
		model:     deps.Model,
		simulator: NewSimulator(deps.Model, deps.Scenarios),
		engine:    NewRecommendationEngine(deps.Rules),
		resolver:  regions.NewResolver(deps.AreaMethod),
		source:    deps.Source,
		enrichers: deps.Enrichers,
		namer:     deps.Namer,
		history:   deps.History,
		workers:   workers,
		fallback:  deps.LiveFallback,
		log:       logging.New("pipeline"),
	}, nil
}

// Catalog returns the scenario catalog the assessor simulates.
func (a *Assessor) Catalog() []schema.ScenarioDefinition {
	return a.simulator.Catalog()
}

// Regions lists the region ids of the table source.
func (a *Assessor) Regions(ctx context.Context) ([]string, error) {
	return a.source.List(ctx)
}

// FeatureImportance returns the model importances, or nil when the model does not report them.
func (a *Assessor) FeatureImportance() map[string]float64 {
	if m, ok := a.model.(interface{ FeatureImportance() map[string]float64 }); ok {
		return m.FeatureImportance()
	}
	return nil
}

// Assess runs the full pipeline for one request. When the context carries a
// history run, the assessment is recorded under it.
func (a *Assessor) Assess(ctx context.Context, req schema.RegionRequest) (schema.Assessment, error) {
	assessment, err := NewAssessmentBuilder(ctx, a, req).
		ResolveGeometry().
		LoadRegion().
		ApplyEnrichers().
		BuildFeatures().
		Predict().
		Simulate().
		Recommend().
		ResolveName().
		Build()
	if err != nil {
		return schema.Assessment{}, err
	}

	a.log.Debug("assessed",
		"region", assessment.Region,
		"risk_score", assessment.Risk.RiskScore,
		"risk_class", assessment.Risk.RiskClass,
		"duration", assessment.Duration)

	if runID := runIDFromContext(ctx); runID > 0 && a.history != nil {
		if err := a.history.RecordAssessment(runID, assessment); err != nil {
			logTrackingError("RecordAssessment", assessment.Region, err)
		}
	}
	return assessment, nil
}

// AssessRegions assesses every request concurrently, bounded by the worker
// count. Results keep the request order. The whole batch is tracked as one
// history run when a history store is configured.
func (a *Assessor) AssessRegions(ctx context.Context, reqs []schema.RegionRequest, configParams map[string]any) ([]schema.Assessment, error) {
	if len(reqs) == 0 {
		return nil, errors.New("no regions to assess")
	}

	ctx, runID := a.beginRun(ctx, configParams)

	results := make([]schema.Assessment, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, req := range reqs {
		g.Go(func() error {
			res, err := a.Assess(gctx, req)
			if err != nil {
				return fmt.Errorf("region %s: %w", requestLabel(req), err)
			}
			results[i] = res
			return nil
		})
	}
	err := g.Wait()

	completed := 0
	for _, r := range results {
		if r.ID != "" {
			completed++
		}
	}
	a.endRun(runID, completed)

	if err != nil {
		return nil, err
	}
	return results, nil
}

// beginRun opens a history run and stores its id in the context.
func (a *Assessor) beginRun(ctx context.Context, configParams map[string]any) (context.Context, int64) {
	if a.history == nil {
		return ctx, 0
	}
	runID, err := a.history.BeginRun(time.Now(), configParams)
	if err != nil {
		contract.LogWarn("Assessment tracking initialization failed", err)
		return ctx, 0
	}
	if runID <= 0 {
		return ctx, 0
	}
	return withRunID(ctx, runID), runID
}

func (a *Assessor) endRun(runID int64, total int) {
	if a.history == nil || runID <= 0 {
		return
	}
	if err := a.history.EndRun(runID, time.Now(), total); err != nil {
		contract.LogWarn("Failed to finalize assessment tracking", err)
	}
}

// requestLabel names a request in error messages.
func requestLabel(req schema.RegionRequest) string {
	if req.RegionID != "" {
		return req.RegionID
	}
	if req.BoundingBox != nil {
		return "bbox(" + regions.OverpassBBox(*req.BoundingBox) + ")"
	}
	return "<empty>"
}

// logTrackingError logs history tracking errors to stderr without disrupting the assessment.
func logTrackingError(operation, region string, err error) {
	contract.LogWarn(fmt.Sprintf("Assessment tracking failed for %s on %s", operation, region), err)
}
