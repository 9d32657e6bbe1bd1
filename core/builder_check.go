package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/huangsam/fragility/core/algo"
	"github.com/huangsam/fragility/internal/contract"
	"github.com/huangsam/fragility/schema"
)

// CheckResultBuilder builds the check result using a builder pattern.
type CheckResultBuilder struct {
	ctx         context.Context
	cfg         *contract.Config
	assessor    *Assessor
	assessments []schema.Assessment
	failed      []schema.CheckFailedRegion
	highest     schema.Assessment
	average     float64
	atRisk      int
	priorities  map[schema.Priority]int
	result      *schema.CheckResult
}

// NewCheckResultBuilder creates a new builder for check results.
func NewCheckResultBuilder(ctx context.Context, cfg *contract.Config, assessor *Assessor) *CheckResultBuilder {
	return &CheckResultBuilder{
		ctx:      ctx,
		cfg:      cfg,
		assessor: assessor,
	}
}

// ValidatePrerequisites validates the region list and the risk gate.
func (b *CheckResultBuilder) ValidatePrerequisites() (*CheckResultBuilder, error) {
	if len(b.cfg.RegionIDs) == 0 {
		return nil, fmt.Errorf("check command requires at least one region id. Example: fragility check region_1 region_2 --max-risk 50")
	}
	if b.cfg.MaxRisk < schema.MinRiskScore || b.cfg.MaxRisk > schema.MaxRiskScore {
		return nil, fmt.Errorf("max-risk must be between %.0f and %.0f, got %v", schema.MinRiskScore, schema.MaxRiskScore, b.cfg.MaxRisk)
	}
	return b, nil
}

// RunAssessments assesses every region once.
func (b *CheckResultBuilder) RunAssessments() (*CheckResultBuilder, error) {
	reqs := make([]schema.RegionRequest, 0, len(b.cfg.RegionIDs))
	for _, id := range b.cfg.RegionIDs {
		reqs = append(reqs, schema.RegionRequest{RegionID: id})
	}
	assessments, err := b.assessor.AssessRegions(b.ctx, reqs, checkParams(b.cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to assess regions: %w", err)
	}
	b.assessments = assessments
	return b, nil
}

// WithAssessments sets precomputed assessments instead of running them.
func (b *CheckResultBuilder) WithAssessments(assessments []schema.Assessment) *CheckResultBuilder {
	b.assessments = assessments
	return b
}

// ComputeMetrics finds the highest and average scores and the regions over the gate.
func (b *CheckResultBuilder) ComputeMetrics() *CheckResultBuilder {
	b.failed = []schema.CheckFailedRegion{}
	b.priorities = make(map[schema.Priority]int)
	b.highest = schema.Assessment{}
	b.atRisk = 0

	sum := 0.0
	for i, a := range b.assessments {
		score := a.Risk.RiskScore
		sum += score
		if i == 0 || score > b.highest.Risk.RiskScore {
			b.highest = a
		}
		if a.Risk.RiskClass == schema.AtRiskClass {
			b.atRisk++
		}
		for _, r := range a.Recommendations {
			b.priorities[r.Priority]++
		}
		if score > b.cfg.MaxRisk {
			b.failed = append(b.failed, schema.CheckFailedRegion{
				Region:    a.Region,
				Score:     score,
				Class:     a.Risk.RiskClass,
				Threshold: b.cfg.MaxRisk,
			})
		}
	}
	if len(b.assessments) > 0 {
		b.average = algo.RoundTo(sum/float64(len(b.assessments)), scorePrecision)
	}

	// Sort by score descending
	sort.SliceStable(b.failed, func(i, j int) bool {
		return b.failed[i].Score > b.failed[j].Score
	})
	return b
}

// BuildResult constructs the final CheckResult.
func (b *CheckResultBuilder) BuildResult() *CheckResultBuilder {
	b.result = &schema.CheckResult{
		Passed:          len(b.failed) == 0,
		MaxRisk:         b.cfg.MaxRisk,
		TotalRegions:    len(b.assessments),
		FailedRegions:   b.failed,
		HighestRegion:   b.highest.Region,
		HighestScore:    b.highest.Risk.RiskScore,
		AverageScore:    b.average,
		AtRiskCount:     b.atRisk,
		Recommendations: b.priorities,
	}
	return b
}

// GetResult returns the built CheckResult.
func (b *CheckResultBuilder) GetResult() *schema.CheckResult {
	return b.result
}

// BuildCheckResult gates precomputed assessments against maxRisk.
func BuildCheckResult(assessments []schema.Assessment, maxRisk float64) *schema.CheckResult {
	cfg := &contract.Config{MaxRisk: maxRisk}
	return NewCheckResultBuilder(context.Background(), cfg, nil).
		WithAssessments(assessments).
		ComputeMetrics().
		BuildResult().
		GetResult()
}

func checkParams(cfg *contract.Config) map[string]any {
	params := assessParams(cfg, "check")
	params["max_risk"] = cfg.MaxRisk
	return params
}
