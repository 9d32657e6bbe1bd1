package schema

// Feature is the name of one numeric field in the feature schema.
type Feature string

// Feature names, in schema order.
const (
	AvgElevation        Feature = "avg_elevation"
	TerrainVariance     Feature = "terrain_variance"
	SlopeMean           Feature = "slope_mean"
	PopDensity          Feature = "pop_density"
	PopGrowth           Feature = "pop_growth"
	AvgRainfall         Feature = "avg_rainfall"
	StormFrequency      Feature = "storm_frequency"
	TemperatureVariance Feature = "temperature_variance"
	TowerDensity        Feature = "tower_density"
	AvgUptime           Feature = "avg_uptime"
	BackhaulRedundancy  Feature = "backhaul_redundancy"
	RegionAreaSqKm      Feature = "region_area_sq_km"
)

// NumFeatures is the size of the feature schema.
const NumFeatures = 12

// FeatureSpec describes where a schema field is copied from.
type FeatureSpec struct {
	Name   Feature // Name in the feature vector
	Domain Domain  // Raw record that supplies the value
	Source string  // Attribute name inside that record
}

// featureSpecs is the single definition of the feature schema. The builder, the
// model and every writer derive their field order from it.
var featureSpecs = [NumFeatures]FeatureSpec{
	{AvgElevation, TerrainDomain, "avg_elevation"},
	{TerrainVariance, TerrainDomain, "terrain_variance"},
	{SlopeMean, TerrainDomain, "slope_mean"},
	{PopDensity, PopulationDomain, "pop_density"},
	{PopGrowth, PopulationDomain, "pop_growth"},
	{AvgRainfall, WeatherDomain, "avg_rainfall"},
	{StormFrequency, WeatherDomain, "storm_frequency"},
	{TemperatureVariance, WeatherDomain, "temperature_variance"},
	{TowerDensity, NetworkDomain, "tower_density"},
	{AvgUptime, NetworkDomain, "avg_uptime"},
	{BackhaulRedundancy, NetworkDomain, "backhaul_redundancy"},
	{RegionAreaSqKm, GeoDomain, "area_sq_km"},
}

var featureIndex = func() map[Feature]int {
	idx := make(map[Feature]int, NumFeatures)
	for i, spec := range featureSpecs {
		idx[spec.Name] = i
	}
	return idx
}()

// FeatureOrder returns the schema field names in canonical order.
// The returned slice is a fresh copy.
func FeatureOrder() []Feature {
	out := make([]Feature, NumFeatures)
	for i, spec := range featureSpecs {
		out[i] = spec.Name
	}
	return out
}

// FeatureSpecs returns the full schema definition in canonical order.
func FeatureSpecs() []FeatureSpec {
	out := make([]FeatureSpec, NumFeatures)
	copy(out, featureSpecs[:])
	return out
}

// FeatureIndex returns the position of name in the schema.
func FeatureIndex(name Feature) (int, bool) {
	i, ok := featureIndex[name]
	return i, ok
}

// IsFeature reports whether name is part of the schema.
func IsFeature(name string) bool {
	_, ok := featureIndex[Feature(name)]
	return ok
}

// DomainAttributes lists the attribute names a raw record of the given domain must carry.
func DomainAttributes(d Domain) []string {
	var out []string
	for _, spec := range featureSpecs {
		if spec.Domain == d {
			out = append(out, spec.Source)
		}
	}
	return out
}

// RecordDomains lists the four table-backed domains in schema order.
var RecordDomains = []Domain{TerrainDomain, PopulationDomain, WeatherDomain, NetworkDomain}
