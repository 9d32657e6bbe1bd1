package cmd

import (
	"github.com/huangsam/fragility/core"
	"github.com/huangsam/fragility/internal/contract"
	"github.com/spf13/cobra"
)

// compareCmd ranks regions against each other.
var compareCmd = &cobra.Command{
	Use:   "compare <region-id> <region-id> [region-id...]",
	Short: "Rank regions by risk and compare their features",
	Long: `Assess several regions concurrently and rank them by risk score, highest first.

Each row shows the scenario deltas and the top recommendation priority. With exactly
two regions the per-feature differences of the second relative to the first are shown too.

Examples:
  # Compare two regions feature by feature
  fragility compare region_1 region_3

  # Rank every known region, keeping the top two
  fragility compare region_1 region_2 region_3 --limit 2`,
	Args:    cobra.MinimumNArgs(2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCompare(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run comparison", err)
		}
	},
}
