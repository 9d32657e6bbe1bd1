package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/fragility/internal/contract"
	"github.com/huangsam/fragility/schema"
)

// AssessmentBuilder runs the pipeline stages for one region request.
// The first failing stage short-circuits every later one.
type AssessmentBuilder struct {
	ctx     context.Context
	a       *Assessor
	req     schema.RegionRequest
	started time.Time
	err     error

	data     schema.RegionData
	result   schema.Assessment
	enriched []string
}

// NewAssessmentBuilder is the starting point for building an assessment.
func NewAssessmentBuilder(ctx context.Context, a *Assessor, req schema.RegionRequest) *AssessmentBuilder {
	return &AssessmentBuilder{
		ctx:     ctx,
		a:       a,
		req:     req,
		started: time.Now(),
	}
}

// ResolveGeometry maps the request to a point or polygon geometry.
func (b *AssessmentBuilder) ResolveGeometry() *AssessmentBuilder {
	if b.err != nil {
		return b
	}
	geo, err := b.a.resolver.Resolve(b.req)
	if err != nil {
		b.err = err
		return b
	}
	b.result.Geometry = geo
	return b
}

// LoadRegion reads the raw records of the region from the table source.
func (b *AssessmentBuilder) LoadRegion() *AssessmentBuilder {
	if b.err != nil {
		return b
	}
	if b.req.RegionID == "" {
		b.err = &schema.GeometryError{Reason: "region_id required for table data"}
		return b
	}
	data, err := b.a.source.Load(b.ctx, b.req.RegionID)
	if err != nil {
		b.err = err
		return b
	}
	b.data = data
	b.result.Region = b.req.RegionID
	return b
}

// ApplyEnrichers overrides table values with live data, in enricher order.
// With fallback enabled a failing enricher is skipped and the table values stay.
func (b *AssessmentBuilder) ApplyEnrichers() *AssessmentBuilder {
	if b.err != nil {
		return b
	}
	for _, e := range b.a.enrichers {
		data, err := e.Enrich(b.ctx, b.result.Geometry, b.data)
		if err != nil {
			if b.a.fallback && b.ctx.Err() == nil {
				contract.LogWarn(fmt.Sprintf("%s enrichment failed for %s, keeping table values", e.Name(), b.req.RegionID), err)
				continue
			}
			b.err = fmt.Errorf("%s enrichment: %w", e.Name(), err)
			return b
		}
		b.data = data
		b.enriched = append(b.enriched, e.Name())
	}
	return b
}

// BuildFeatures assembles the ordered feature vector.
func (b *AssessmentBuilder) BuildFeatures() *AssessmentBuilder {
	if b.err != nil {
		return b
	}
	vec, err := BuildFromRegion(b.data, b.result.Geometry)
	if err != nil {
		b.err = err
		return b
	}
	b.result.Features = vec
	return b
}

// Predict scores the feature vector.
func (b *AssessmentBuilder) Predict() *AssessmentBuilder {
	if b.err != nil {
		return b
	}
	risk, err := b.a.model.Predict(b.result.Features)
	if err != nil {
		b.err = err
		return b
	}
	b.result.Risk = risk
	return b
}

// Simulate runs the scenario catalog against the base vector.
func (b *AssessmentBuilder) Simulate() *AssessmentBuilder {
	if b.err != nil {
		return b
	}
	scenarios, err := b.a.simulator.Simulate(b.result.Features, b.result.Risk.RiskScore)
	if err != nil {
		b.err = err
		return b
	}
	b.result.Scenarios = scenarios
	return b
}

// Recommend evaluates the rule set.
func (b *AssessmentBuilder) Recommend() *AssessmentBuilder {
	if b.err != nil {
		return b
	}
	b.result.Recommendations = b.a.engine.Recommend(b.result.Risk, b.result.Scenarios, b.result.Features)
	return b
}

// ResolveName attaches a human readable name. Naming never fails an assessment.
func (b *AssessmentBuilder) ResolveName() *AssessmentBuilder {
	if b.err != nil || b.a.namer == nil {
		return b
	}
	name, err := b.a.namer.RegionName(b.ctx, b.result.Geometry.Lat, b.result.Geometry.Lon)
	if err != nil {
		contract.LogWarn(fmt.Sprintf("Region naming failed for %s", b.req.RegionID), err)
		return b
	}
	b.result.Name = name
	return b
}

// Build returns the finished assessment or the first stage error.
func (b *AssessmentBuilder) Build() (schema.Assessment, error) {
	if b.err != nil {
		return schema.Assessment{}, b.err
	}
	b.result.ID = uuid.NewString()
	b.result.Enrichments = b.enriched
	b.result.AssessedAt = b.started.UTC()
	b.result.Duration = time.Since(b.started)
	return b.result, nil
}
