package contract

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/huangsam/fragility/internal/regions"
	"github.com/huangsam/fragility/schema"
)

// Default values for configuration.
const (
	DefaultPrecision    = 2
	MaxPrecision        = 4
	DefaultResultLimit  = 0 // keep every region
	MaxResultLimit      = 1000
	DefaultMaxRisk      = schema.AtRiskThreshold
	DefaultPort         = 8080
	DefaultAppName      = "fragility"
	DefaultHTTPTimeout  = 15 * time.Second
	DefaultWeatherURL   = "https://archive-api.open-meteo.com/v1/archive"
	DefaultOverpassURL  = "https://overpass-api.de/api/interpreter"
	DefaultNominatimURL = "https://nominatim.openstreetmap.org/reverse"
	DefaultTrees        = 50
	DefaultMaxDepth     = 6
	DefaultSeed         = 42
	MaxTrees            = 500
	MaxTreeDepth        = 32
)

// Default rule thresholds.
const (
	DefaultSatelliteThreshold    = 60.0
	DefaultWeatherDeltaThreshold = 10.0
	DefaultSurgeDeltaThreshold   = 8.0
	DefaultBackhaulMin           = 0.3
	DefaultTowerMin              = 2.0
)

// DefaultModelParams returns the forest hyperparameters used when none are configured.
func DefaultModelParams() schema.ModelParams {
	return schema.ModelParams{Trees: DefaultTrees, MaxDepth: DefaultMaxDepth, Seed: DefaultSeed}
}

// DefaultRuleThresholds returns the recommendation cutoffs used when none are configured.
func DefaultRuleThresholds() schema.RuleThresholds {
	return schema.RuleThresholds{
		SatelliteRisk: DefaultSatelliteThreshold,
		WeatherDelta:  DefaultWeatherDeltaThreshold,
		SurgeDelta:    DefaultSurgeDeltaThreshold,
		BackhaulMin:   DefaultBackhaulMin,
		TowerMin:      DefaultTowerMin,
	}
}

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration for an assessment.
// This struct is the "final, validated" config.
type Config struct {
	RegionIDs   []string
	BoundingBox *schema.BoundingBox

	Output      schema.OutputMode
	OutputFile  string
	Precision   int
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool
	ResultLimit int

	DataSource    schema.DataSource
	DataDir       string // empty means the embedded dataset
	DataBackend   schema.DatabaseBackend
	DataDBConnect string
	AreaMethod    schema.AreaMethod

	LiveWeather  bool
	WeatherURL   string
	LiveTowers   bool
	OverpassURL  string
	Geocode      bool
	NominatimURL string
	HTTPTimeout  time.Duration
	LiveFallback bool // keep table values when a live source fails

	Thresholds schema.RuleThresholds
	MaxRisk    float64

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	Port    int
	AppName string

	LogLevel  string
	LogFormat string

	Workers int
	Model   schema.ModelParams
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RegionIDs []string

	// --- Fields from rootCmd.PersistentFlags() ---
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Precision        int    `mapstructure:"precision"`
	Width            int    `mapstructure:"width"`
	Color            string `mapstructure:"color"`
	Limit            int    `mapstructure:"limit"`
	Workers          int    `mapstructure:"workers"`
	DataSource       string `mapstructure:"data-source"`
	DataDir          string `mapstructure:"data-dir"`
	DataBackend      string `mapstructure:"data-backend"`
	DataDBConnect    string `mapstructure:"data-db-connect"`
	AreaMethod       string `mapstructure:"area-method"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	LogLevel         string `mapstructure:"log-level"`
	LogFormat        string `mapstructure:"log-format"`

	// --- Live enrichment ---
	LiveWeather  bool   `mapstructure:"live-weather"`
	WeatherURL   string `mapstructure:"weather-url"`
	LiveTowers   bool   `mapstructure:"live-towers"`
	OverpassURL  string `mapstructure:"overpass-url"`
	Geocode      bool   `mapstructure:"geocode"`
	NominatimURL string `mapstructure:"nominatim-url"`
	HTTPTimeout  string `mapstructure:"http-timeout"`
	LiveFallback bool   `mapstructure:"live-fallback"`

	// --- Fields from assessCmd.Flags() ---
	BBox string `mapstructure:"bbox"`

	// --- Fields from checkCmd.Flags() ---
	MaxRisk float64 `mapstructure:"max-risk"`

	// --- Fields from serveCmd.Flags() ---
	Port    int    `mapstructure:"port"`
	AppName string `mapstructure:"app-name"`

	// --- Model hyperparameters ---
	Trees    int   `mapstructure:"trees"`
	MaxDepth int   `mapstructure:"max-depth"`
	Seed     int64 `mapstructure:"seed"`

	// --- Rule thresholds ---
	SatelliteThreshold    float64 `mapstructure:"satellite-threshold"`
	WeatherDeltaThreshold float64 `mapstructure:"weather-delta-threshold"`
	SurgeDeltaThreshold   float64 `mapstructure:"surge-delta-threshold"`
	BackhaulMin           float64 `mapstructure:"backhaul-min"`
	TowerMin              float64 `mapstructure:"tower-min"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.RegionIDs != nil {
		clone.RegionIDs = make([]string, len(c.RegionIDs))
		copy(clone.RegionIDs, c.RegionIDs)
	}
	if c.BoundingBox != nil {
		bbox := *c.BoundingBox
		clone.BoundingBox = &bbox
	}
	return &clone
}

// RegionRequest returns the request for the first positional region, or the bounding box.
func (c *Config) RegionRequest() schema.RegionRequest {
	req := schema.RegionRequest{BoundingBox: c.BoundingBox}
	if len(c.RegionIDs) > 0 {
		req.RegionID = c.RegionIDs[0]
	}
	return req
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processRegionInputs(cfg, input); err != nil {
		return err
	}
	if err := processDataSource(cfg, input); err != nil {
		return err
	}
	if err := processLiveSources(cfg, input); err != nil {
		return err
	}
	if err := processRuleThresholds(cfg, input); err != nil {
		return err
	}
	if err := processModelParams(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the output and runtime fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	if input.Limit < 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit cannot be negative or exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Port < 1 || input.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535 (received %d)", input.Port)
	}
	cfg.Port = input.Port

	cfg.AppName = strings.TrimSpace(input.AppName)
	if cfg.AppName == "" {
		cfg.AppName = DefaultAppName
	}

	cfg.LogLevel = strings.ToLower(input.LogLevel)
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level '%s'. must be debug, info, warn, error", input.LogLevel)
	}
	cfg.LogFormat = strings.ToLower(input.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return fmt.Errorf("invalid log format '%s'. must be text, json", input.LogFormat)
	}

	if input.MaxRisk < schema.MinRiskScore || input.MaxRisk > schema.MaxRiskScore {
		return fmt.Errorf("max-risk must be between 0 and 100 (received %.2f)", input.MaxRisk)
	}
	cfg.MaxRisk = input.MaxRisk

	return nil
}

// processRegionInputs trims the positional region ids and parses the bounding box.
func processRegionInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.RegionIDs = nil
	for _, id := range input.RegionIDs {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			cfg.RegionIDs = append(cfg.RegionIDs, trimmed)
		}
	}

	cfg.BoundingBox = nil
	if strings.TrimSpace(input.BBox) != "" {
		bbox, err := regions.ParseBBox(input.BBox)
		if err != nil {
			return fmt.Errorf("invalid --bbox: %w", err)
		}
		cfg.BoundingBox = &bbox
	}
	return nil
}

// processDataSource validates where raw region attributes come from.
func processDataSource(cfg *Config, input *ConfigRawInput) error {
	cfg.DataSource = schema.DataSource(strings.ToLower(input.DataSource))
	if _, ok := schema.ValidDataSources[cfg.DataSource]; !ok {
		return fmt.Errorf("invalid data source '%s'. must be csv, sql", input.DataSource)
	}
	cfg.DataDir = input.DataDir

	cfg.AreaMethod = schema.AreaMethod(strings.ToLower(input.AreaMethod))
	if _, ok := schema.ValidAreaMethods[cfg.AreaMethod]; !ok {
		return fmt.Errorf("invalid area method '%s'. must be flat, geodesic", input.AreaMethod)
	}

	if cfg.DataSource != schema.SQLSource {
		return nil
	}
	cfg.DataBackend = schema.DatabaseBackend(strings.ToLower(input.DataBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.DataBackend]; !ok || cfg.DataBackend == schema.NoneBackend {
		return fmt.Errorf("invalid data backend '%s'. must be sqlite, mysql, postgresql", input.DataBackend)
	}
	cfg.DataDBConnect = input.DataDBConnect
	return ValidateDatabaseConnectionString(cfg.DataBackend, cfg.DataDBConnect)
}

// processLiveSources validates the optional enrichment endpoints.
func processLiveSources(cfg *Config, input *ConfigRawInput) error {
	cfg.LiveWeather = input.LiveWeather
	cfg.LiveTowers = input.LiveTowers
	cfg.Geocode = input.Geocode
	cfg.LiveFallback = input.LiveFallback

	cfg.WeatherURL = valueOr(input.WeatherURL, DefaultWeatherURL)
	cfg.OverpassURL = valueOr(input.OverpassURL, DefaultOverpassURL)
	cfg.NominatimURL = valueOr(input.NominatimURL, DefaultNominatimURL)
	for flag, url := range map[string]string{
		"weather-url":   cfg.WeatherURL,
		"overpass-url":  cfg.OverpassURL,
		"nominatim-url": cfg.NominatimURL,
	} {
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return fmt.Errorf("--%s must be an http(s) URL (received %q)", flag, url)
		}
	}

	cfg.HTTPTimeout = DefaultHTTPTimeout
	if input.HTTPTimeout != "" {
		timeout, err := time.ParseDuration(input.HTTPTimeout)
		if err != nil {
			return fmt.Errorf("invalid --http-timeout: %w", err)
		}
		if timeout <= 0 {
			return fmt.Errorf("http-timeout must be positive (received %s)", timeout)
		}
		cfg.HTTPTimeout = timeout
	}
	return nil
}

// processRuleThresholds validates the recommendation rule cutoffs.
func processRuleThresholds(cfg *Config, input *ConfigRawInput) error {
	th := schema.RuleThresholds{
		SatelliteRisk: input.SatelliteThreshold,
		WeatherDelta:  input.WeatherDeltaThreshold,
		SurgeDelta:    input.SurgeDeltaThreshold,
		BackhaulMin:   input.BackhaulMin,
		TowerMin:      input.TowerMin,
	}
	if th.SatelliteRisk < schema.MinRiskScore || th.SatelliteRisk > schema.MaxRiskScore {
		return fmt.Errorf("satellite-threshold must be between 0 and 100 (received %.2f)", th.SatelliteRisk)
	}
	if th.WeatherDelta < -100 || th.WeatherDelta > 100 {
		return fmt.Errorf("weather-delta-threshold must be between -100 and 100 (received %.2f)", th.WeatherDelta)
	}
	if th.SurgeDelta < -100 || th.SurgeDelta > 100 {
		return fmt.Errorf("surge-delta-threshold must be between -100 and 100 (received %.2f)", th.SurgeDelta)
	}
	if th.BackhaulMin < 0 || th.BackhaulMin > 1 {
		return fmt.Errorf("backhaul-min must be between 0 and 1 (received %.2f)", th.BackhaulMin)
	}
	if th.TowerMin < 0 {
		return fmt.Errorf("tower-min cannot be negative (received %.2f)", th.TowerMin)
	}
	cfg.Thresholds = th
	return nil
}

// processModelParams validates the forest hyperparameters.
func processModelParams(cfg *Config, input *ConfigRawInput) error {
	if input.Trees < 1 || input.Trees > MaxTrees {
		return fmt.Errorf("trees must be between 1 and %d (received %d)", MaxTrees, input.Trees)
	}
	if input.MaxDepth < 1 || input.MaxDepth > MaxTreeDepth {
		return fmt.Errorf("max-depth must be between 1 and %d (received %d)", MaxTreeDepth, input.MaxDepth)
	}
	cfg.Model = schema.ModelParams{Trees: input.Trees, MaxDepth: input.MaxDepth, Seed: input.Seed}
	return nil
}

// validateBackendConfigs validates history and cache backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return err
	}

	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// For SQLite, resolve to actual file paths to catch default path conflicts
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cachePath := valueOr(cfg.CacheDBConnect, GetCacheDBFilePath())
		historyPath := valueOr(cfg.HistoryDBConnect, GetHistoryDBFilePath())
		if cachePath == historyPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}
	return nil
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
