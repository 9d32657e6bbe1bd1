package core

import (
	"context"
	"fmt"

	"github.com/huangsam/fragility/core/algo"
	"github.com/huangsam/fragility/schema"
)

// featureDeltaPrecision is the rounding applied to per-feature differences.
const featureDeltaPrecision = 4

// CompareVectors reports target minus base for every feature, sorted by
// absolute delta descending. Unchanged features are kept at the end.
func CompareVectors(base, target schema.FeatureVector) []schema.FeatureDelta {
	deltas := make([]schema.FeatureDelta, 0, schema.NumFeatures)
	for _, name := range schema.FeatureOrder() {
		b, t := base.Value(name), target.Value(name)
		deltas = append(deltas, schema.FeatureDelta{
			Feature: name,
			Base:    b,
			Target:  t,
			Delta:   algo.RoundTo(t-b, featureDeltaPrecision),
		})
	}
	return algo.RankFeatureDeltas(deltas)
}

// SummarizePair describes how the target region's risk differs from the base region's.
func SummarizePair(base, target schema.Assessment) schema.ComparisonSummary {
	return schema.ComparisonSummary{
		BaseRegion:   base.Region,
		TargetRegion: target.Region,
		BaseScore:    base.Risk.RiskScore,
		TargetScore:  target.Risk.RiskScore,
		RiskDelta:    algo.RoundTo(target.Risk.RiskScore-base.Risk.RiskScore, scorePrecision),
		BaseClass:    base.Risk.RiskClass,
		TargetClass:  target.Risk.RiskClass,
	}
}

// BuildComparison ranks the assessments. For exactly two assessments it also
// reports the per-feature deltas of the second relative to the first.
func BuildComparison(assessments []schema.Assessment, limit int) schema.ComparisonResult {
	result := schema.ComparisonResult{Rankings: RankAssessments(assessments, limit)}
	if len(assessments) == 2 {
		base, target := assessments[0], assessments[1]
		result.FeatureDeltas = CompareVectors(base.Features, target.Features)
		summary := SummarizePair(base, target)
		result.Summary = &summary
	}
	return result
}

// CompareRegions assesses at least two regions concurrently and compares them.
func (a *Assessor) CompareRegions(ctx context.Context, regionIDs []string, limit int, configParams map[string]any) (schema.ComparisonResult, error) {
	if len(regionIDs) < 2 {
		return schema.ComparisonResult{}, fmt.Errorf("compare requires at least two region ids, got %d", len(regionIDs))
	}
	reqs := make([]schema.RegionRequest, 0, len(regionIDs))
	for _, id := range regionIDs {
		reqs = append(reqs, schema.RegionRequest{RegionID: id})
	}
	assessments, err := a.AssessRegions(ctx, reqs, configParams)
	if err != nil {
		return schema.ComparisonResult{}, err
	}
	return BuildComparison(assessments, limit), nil
}
