package cmd

import (
	"github.com/huangsam/fragility/core"
	"github.com/huangsam/fragility/internal/contract"
	"github.com/spf13/cobra"
)

// checkCmd focused on CI/CD policy enforcement.
var checkCmd = &cobra.Command{
	Use:   "check <region-id...>",
	Short: "Enforce a risk ceiling for CI/CD pipelines (fails on violations)",
	Long: `Assess the given regions and fail with a non-zero exit code when any region's
risk score exceeds --max-risk.

Default ceiling: 50.0, the At-risk boundary

Use cases:
- Deployment gates - block rollouts to fragile regions
- Data refresh validation - catch regions that became riskier
- Scheduled audits - alert when the network degrades

Examples:
  # Gate on the default ceiling
  fragility check region_1 region_2

  # Stricter ceiling
  fragility check region_1 region_2 region_3 --max-risk 40`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// Validation is done in ExecuteCheck
		if err := core.ExecuteCheck(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Risk check failed", err)
		}
	},
}
