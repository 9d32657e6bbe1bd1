package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for history, cache and region data.
	DatabaseBackend string

	// RiskClass is the binary classification derived from a risk score.
	RiskClass string

	// Priority ranks a recommendation.
	Priority string

	// DataSource selects where raw region attributes come from.
	DataSource string

	// AreaMethod selects how a bounding box is converted into square kilometers.
	AreaMethod string

	// GeometryKind tells whether a region resolved to a point or a polygon.
	GeometryKind string

	// Domain names the raw record a feature is copied from.
	Domain string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Risk classes. The boundary score belongs to AtRiskClass.
const (
	StableClass RiskClass = "Stable"
	AtRiskClass RiskClass = "At-risk"
)

// Recommendation priorities.
const (
	HighPriority   Priority = "High"
	MediumPriority Priority = "Medium"
	LowPriority    Priority = "Low"
)

// Region data sources.
const (
	CSVSource DataSource = "csv" // default
	SQLSource DataSource = "sql"
)

// Area methods for bounding boxes.
const (
	FlatArea     AreaMethod = "flat" // default, degrees squared times a fixed factor
	GeodesicArea AreaMethod = "geodesic"
)

// Geometry kinds.
const (
	PointGeometry   GeometryKind = "point"
	PolygonGeometry GeometryKind = "polygon"
)

// Record domains.
const (
	TerrainDomain    Domain = "terrain"
	PopulationDomain Domain = "population"
	WeatherDomain    Domain = "weather"
	NetworkDomain    Domain = "network"
	GeoDomain        Domain = "geo"
)

// Scenario names of the default what-if catalog.
const (
	ExtremeWeatherScenario = "Extreme Weather Spike"
	LoadSurgeScenario      = "Load Surge"
	RelayFailureScenario   = "Relay Failure"
)

// AtRiskThreshold is the score at or above which a region is classified At-risk.
const AtRiskThreshold = 50.0

// Score bounds.
const (
	MinRiskScore = 0.0
	MaxRiskScore = 100.0
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidDataSources lists all valid region data sources.
var ValidDataSources = map[DataSource]struct{}{
	CSVSource: {},
	SQLSource: {},
}

// ValidAreaMethods lists all valid area methods.
var ValidAreaMethods = map[AreaMethod]struct{}{
	FlatArea:     {},
	GeodesicArea: {},
}

// ClassifyRisk maps a score to its risk class.
func ClassifyRisk(score float64) RiskClass {
	if score >= AtRiskThreshold {
		return AtRiskClass
	}
	return StableClass
}
