package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/huangsam/fragility/internal/contract"
	"github.com/huangsam/fragility/schema"
)

// maxViolationsShown caps the failure listing.
const maxViolationsShown = 5

// ExecuteCheck runs the check command for CI/CD gating.
// It assesses every region, compares the scores against max-risk and returns
// an error when any region exceeds it.
func ExecuteCheck(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()

	builder := NewCheckResultBuilder(ctx, cfg, nil)
	if _, err := builder.ValidatePrerequisites(); err != nil {
		return err
	}

	assessor, cleanup, err := NewAssessorFromConfig(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	defer func() { _ = cleanup() }()
	builder.assessor = assessor

	if _, err := builder.RunAssessments(); err != nil {
		return err
	}
	result := builder.ComputeMetrics().BuildResult().GetResult()

	printCheckResult(os.Stdout, result, time.Since(start))
	if !result.Passed {
		return fmt.Errorf("%d violation(s) found", len(result.FailedRegions))
	}
	return nil
}

// printCheckResult prints the check result in a concise format suitable for CI/CD.
func printCheckResult(w io.Writer, result *schema.CheckResult, duration time.Duration) {
	printCheckHeader(w, result, duration)

	if result.Passed {
		printCheckSuccess(w, result)
	} else {
		printCheckFailure(w, result)
	}
}

// printCheckHeader prints the common header information for check results.
func printCheckHeader(w io.Writer, result *schema.CheckResult, duration time.Duration) {
	_, _ = fmt.Fprintln(w, "Risk Gate Results:")

	// Define labels and values for dynamic padding
	labels := []string{"Max risk:", "Regions:", "At-risk:"}
	values := []any{
		fmt.Sprintf("%.1f", result.MaxRisk),
		result.TotalRegions,
		fmt.Sprintf("%d (threshold %.0f)", result.AtRiskCount, schema.AtRiskThreshold),
	}

	// Find the longest label for consistent padding
	maxLabelLen := 0
	for _, label := range labels {
		maxLabelLen = max(maxLabelLen, len(label))
	}

	for i, label := range labels {
		_, _ = fmt.Fprintf(w, "  %-*s %v\n", maxLabelLen+1, label, values[i])
	}
	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprintf(w, "Checked %d regions in %v\n\n", result.TotalRegions, duration)
}

// printCheckSuccess prints the success case output.
func printCheckSuccess(w io.Writer, result *schema.CheckResult) {
	_, _ = fmt.Fprintf(w, "✅ All regions passed the risk gate\n\n")
	_, _ = fmt.Fprintln(w, "Scores observed:")
	_, _ = fmt.Fprintf(w, "  risk: max=%.1f (%s), avg=%.1f\n", result.HighestScore, result.HighestRegion, result.AverageScore)
	printPriorityCounts(w, result)
}

// printCheckFailure prints the failure case output.
func printCheckFailure(w io.Writer, result *schema.CheckResult) {
	_, _ = fmt.Fprintf(w, "❌ Risk gate failed: %d violation(s) found across %d regions\n\n", len(result.FailedRegions), result.TotalRegions)

	for i, f := range result.FailedRegions {
		if i >= maxViolationsShown {
			_, _ = fmt.Fprintf(w, "  ... and %d more\n", len(result.FailedRegions)-i)
			break
		}
		_, _ = fmt.Fprintf(w, "  - %s (score: %.1f > max-risk: %.1f, class: %s)\n", f.Region, f.Score, f.Threshold, f.Class)
	}
	_, _ = fmt.Fprintln(w)
	printPriorityCounts(w, result)
}

// printPriorityCounts lists how many recommendations of each priority were raised.
func printPriorityCounts(w io.Writer, result *schema.CheckResult) {
	if len(result.Recommendations) == 0 {
		return
	}
	priorities := make([]schema.Priority, 0, len(result.Recommendations))
	for p := range result.Recommendations {
		priorities = append(priorities, p)
	}
	slices.SortFunc(priorities, func(a, b schema.Priority) int {
		return schema.PriorityRank(b) - schema.PriorityRank(a)
	})
	_, _ = fmt.Fprintln(w, "Recommendations:")
	for _, p := range priorities {
		_, _ = fmt.Fprintf(w, "  %s: %d\n", p, result.Recommendations[p])
	}
}
