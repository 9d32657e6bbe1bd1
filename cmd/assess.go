package cmd

import (
	"github.com/huangsam/fragility/core"
	"github.com/huangsam/fragility/internal/contract"
	"github.com/spf13/cobra"
)

// assessCmd runs the full assessment pipeline.
var assessCmd = &cobra.Command{
	Use:   "assess [region-id...]",
	Short: "Score connectivity risk, simulate scenarios and recommend mitigations",
	Long: `Assess one or more regions end to end.

For each region the pipeline:
- Resolves the geometry (known centroid or bounding box)
- Loads terrain, population, weather and network attributes
- Optionally replaces weather and tower density with live data
- Predicts a 0-100 risk score and a Stable/At-risk class
- Re-scores the Extreme Weather Spike, Load Surge and Relay Failure scenarios
- Recommends prioritized mitigations

Examples:
  # Assess a known region
  fragility assess region_2

  # Assess several regions as JSON
  fragility assess region_1 region_3 --output json

  # Assess a bounding box with live weather
  fragility assess --bbox 19.8,79.2,20.1,79.5 --live-weather`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAssess(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run assessment", err)
		}
	},
}
