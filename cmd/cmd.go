// Package cmd defines the command-line interface for fragility.
package cmd

import (
	"github.com/huangsam/fragility/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(scenariosCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(regionsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)

	// Add the regions subcommands to the parent regions command
	regionsCmd.AddCommand(regionsListCmd)
	regionsCmd.AddCommand(regionsSeedCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("output", "text", "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of ranked regions to display (0 = all)")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().String("data-source", "csv", "Region data source: csv or sql")
	rootCmd.PersistentFlags().String("data-dir", "", "Directory with terrain/population/weather/network CSV files (empty = embedded dataset)")
	rootCmd.PersistentFlags().String("data-backend", "sqlite", "Region database backend for --data-source sql: sqlite or mysql or postgresql")
	rootCmd.PersistentFlags().String("data-db-connect", "", "Region database connection string")
	rootCmd.PersistentFlags().String("area-method", "flat", "Bounding box area method: flat or geodesic")
	rootCmd.PersistentFlags().Bool("live-weather", false, "Replace table weather with the Open-Meteo archive")
	rootCmd.PersistentFlags().String("weather-url", contract.DefaultWeatherURL, "Open-Meteo archive endpoint")
	rootCmd.PersistentFlags().Bool("live-towers", false, "Replace table tower density with an Overpass tower count")
	rootCmd.PersistentFlags().String("overpass-url", contract.DefaultOverpassURL, "Overpass interpreter endpoint")
	rootCmd.PersistentFlags().Bool("geocode", false, "Resolve region names with Nominatim reverse geocoding")
	rootCmd.PersistentFlags().String("nominatim-url", contract.DefaultNominatimURL, "Nominatim reverse endpoint")
	rootCmd.PersistentFlags().String("http-timeout", contract.DefaultHTTPTimeout.String(), "Timeout for live HTTP calls")
	rootCmd.PersistentFlags().Bool("live-fallback", false, "Keep table values when a live source fails")
	rootCmd.PersistentFlags().Float64("satellite-threshold", contract.DefaultSatelliteThreshold, "Risk score that triggers satellite backup")
	rootCmd.PersistentFlags().Float64("weather-delta-threshold", contract.DefaultWeatherDeltaThreshold, "Extreme weather delta that triggers redundancy")
	rootCmd.PersistentFlags().Float64("surge-delta-threshold", contract.DefaultSurgeDeltaThreshold, "Load surge delta that triggers densification")
	rootCmd.PersistentFlags().Float64("backhaul-min", contract.DefaultBackhaulMin, "Backhaul redundancy floor")
	rootCmd.PersistentFlags().Float64("tower-min", contract.DefaultTowerMin, "Tower density floor")
	rootCmd.PersistentFlags().Int("trees", contract.DefaultTrees, "Number of trees in the risk model")
	rootCmd.PersistentFlags().Int("max-depth", contract.DefaultMaxDepth, "Maximum depth of each tree")
	rootCmd.PersistentFlags().Int64("seed", contract.DefaultSeed, "Seed for bootstrap sampling")
	rootCmd.PersistentFlags().String("cache-backend", "sqlite", "Weather cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("history-backend", "none", "Assessment history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for assessment history (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("log-level", "info", "Structured log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "Structured log format: text or json")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of assessCmd to Viper
	assessCmd.Flags().String("bbox", "", "Bounding box 'minLat,minLon,maxLat,maxLon' (used when no region id is given)")
	if err := viper.BindPFlags(assessCmd.Flags()); err != nil {
		contract.LogFatal("Error binding assess flags", err)
	}

	// Bind all flags of checkCmd to Viper
	checkCmd.Flags().Float64("max-risk", contract.DefaultMaxRisk, "Highest risk score a region may have to pass the gate")
	if err := viper.BindPFlags(checkCmd.Flags()); err != nil {
		contract.LogFatal("Error binding check flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().Int("port", contract.DefaultPort, "HTTP port to listen on")
	serveCmd.Flags().String("app-name", contract.DefaultAppName, "Service name reported by /health")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
