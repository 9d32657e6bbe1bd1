package cmd

import (
	"fmt"

	"github.com/huangsam/fragility/core"
	"github.com/huangsam/fragility/internal/contract"
	"github.com/huangsam/fragility/internal/iocache"
	"github.com/huangsam/fragility/internal/regions"
	"github.com/huangsam/fragility/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// scenariosCmd lists the what-if catalog.
var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the what-if scenarios and their feature modifiers",
	Long: `Show the scenario catalog used by every assessment.

Each scenario multiplies a few features of the base vector and the model re-scores the
result. The delta against the base score is reported per scenario.`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteScenarios(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot list scenarios", err)
		}
	},
}

// schemaCmd lists the feature schema.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "List the ordered feature schema with model importances",
	Long: `Show the twelve features in the order the model consumes them, the raw record
each one is copied from, and the importance the trained model assigns to it.`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSchema(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot list schema", err)
		}
	},
}

// regionsCmd groups region data commands.
var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Inspect and load region attribute data",
	Long: `Manage the raw attribute data regions are assessed from.

Subcommands:
  list - Show the region ids the configured data source knows
  seed - Copy the CSV tables into the SQL region database

Examples:
  # List regions of the embedded dataset
  fragility regions list

  # Load custom CSV tables into a SQLite region database, then assess from it
  fragility regions seed --data-dir ./data --data-backend sqlite
  fragility assess region_1 --data-source sql`,
}

// regionsListCmd lists the region ids.
var regionsListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List region ids known to the data source",
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRegions(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot list regions", err)
		}
	},
}

// regionsSeedSetup loads the minimal configuration needed to seed the region database.
// It does not require --data-source sql, since seeding usually comes first.
func regionsSeedSetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("data-backend"))
	if backend == schema.NoneBackend {
		return fmt.Errorf("invalid data backend '%s'. must be sqlite, mysql, postgresql", backend)
	}
	connStr := viper.GetString("data-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.DataBackend = backend
	cfg.DataDBConnect = connStr
	cfg.DataDir = viper.GetString("data-dir")
	return nil
}

// regionsSeedCmd copies the CSV tables into the region database.
var regionsSeedCmd = &cobra.Command{
	Use:     "seed",
	Short:   "Load the CSV tables into the SQL region database",
	PreRunE: regionsSeedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		db, err := iocache.OpenDatabase(cfg.DataBackend, cfg.DataDBConnect, contract.GetRegionsDBFilePath())
		if err != nil {
			contract.LogFatal("Failed to open region database", err)
		}
		defer func() { _ = db.Close() }()

		store, err := regions.NewSQLSource(rootCtx, db, cfg.DataBackend)
		if err != nil {
			contract.LogFatal("Failed to prepare region tables", err)
		}
		n, err := store.SeedFromCSV(rootCtx, regions.NewCSVSource(cfg.DataDir))
		if err != nil {
			contract.LogFatal("Failed to seed region tables", err)
		}
		fmt.Printf("Seeded %d region records into %s backend.\n", n, cfg.DataBackend)
	},
}
