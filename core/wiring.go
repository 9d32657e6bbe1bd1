package core

import (
	"context"
	"fmt"

	"github.com/huangsam/fragility/internal/contract"
	"github.com/huangsam/fragility/internal/geocode"
	"github.com/huangsam/fragility/internal/iocache"
	"github.com/huangsam/fragility/internal/regions"
	"github.com/huangsam/fragility/internal/towers"
	"github.com/huangsam/fragility/internal/weather"
	"github.com/huangsam/fragility/schema"
)

// ModelOptionsFromConfig maps validated hyperparameters to model options.
// Values pass through unchanged, so a seed of 0 trains with seed 0.
func ModelOptionsFromConfig(params schema.ModelParams) ModelOptions {
	return ModelOptions{Trees: params.Trees, MaxDepth: params.MaxDepth, Seed: params.Seed}
}

// ModelFromConfig returns the trained model for the configured
// hyperparameters. Models are trained once per process and shared.
func ModelFromConfig(cfg *contract.Config) (*RiskModel, error) {
	model, err := sharedModel(ModelOptionsFromConfig(cfg.Model))
	if err != nil {
		return nil, fmt.Errorf("failed to train risk model: %w", err)
	}
	return model, nil
}

// NewSourceFromConfig opens the configured region source. The returned
// function releases the underlying database, if any.
func NewSourceFromConfig(ctx context.Context, cfg *contract.Config) (contract.RegionSource, func() error, error) {
	noop := func() error { return nil }
	switch cfg.DataSource {
	case schema.SQLSource:
		db, err := iocache.OpenDatabase(cfg.DataBackend, cfg.DataDBConnect, contract.GetRegionsDBFilePath())
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open region database: %w", err)
		}
		src, err := regions.NewSQLSource(ctx, db, cfg.DataBackend)
		if err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		return src, db.Close, nil
	default:
		return regions.NewCSVSource(cfg.DataDir), noop, nil
	}
}

// NewEnrichersFromConfig returns the live enrichers that are switched on, in
// the order weather then towers.
func NewEnrichersFromConfig(cfg *contract.Config, mgr contract.CacheManager) []contract.Enricher {
	var enrichers []contract.Enricher
	if cfg.LiveWeather {
		var opts []weather.Option
		if mgr != nil {
			if store := mgr.GetCacheStore(); store != nil {
				opts = append(opts, weather.WithCache(store))
			}
		}
		client := weather.NewClient(cfg.WeatherURL, cfg.HTTPTimeout, opts...)
		enrichers = append(enrichers, weather.NewEnricher(client))
	}
	if cfg.LiveTowers {
		enrichers = append(enrichers, towers.NewEnricher(towers.NewClient(cfg.OverpassURL, cfg.HTTPTimeout)))
	}
	return enrichers
}

// NewAssessorFromConfig wires the model, region source, live enrichers and
// history store from the runtime configuration.
func NewAssessorFromConfig(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*Assessor, func() error, error) {
	model, err := ModelFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	source, cleanup, err := NewSourceFromConfig(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	var namer contract.RegionNamer
	if cfg.Geocode {
		namer = geocode.NewClient(cfg.NominatimURL, cfg.AppName, cfg.HTTPTimeout)
	}

	var history contract.HistoryStore
	if mgr != nil {
		history = mgr.GetHistoryStore()
	}

	assessor, err := NewAssessor(AssessorDeps{
		Model:        model,
		Rules:        DefaultRules(cfg.Thresholds),
		Source:       source,
		AreaMethod:   cfg.AreaMethod,
		Enrichers:    NewEnrichersFromConfig(cfg, mgr),
		Namer:        namer,
		History:      history,
		Workers:      cfg.Workers,
		LiveFallback: cfg.LiveFallback,
	})
	if err != nil {
		_ = cleanup()
		return nil, nil, err
	}
	return assessor, cleanup, nil
}
