package core

import (
	"github.com/huangsam/fragility/schema"
)

// BuildFeatureVector copies the raw domain records into a schema-ordered feature
// vector. It does not transform or range-check values. A required attribute
// that is absent fails with *schema.MissingAttributeError; it is never defaulted.
func BuildFeatureVector(terrain, population, weather, network, geo schema.Record) (schema.FeatureVector, error) {
	records := map[schema.Domain]schema.Record{
		schema.TerrainDomain:    terrain,
		schema.PopulationDomain: population,
		schema.WeatherDomain:    weather,
		schema.NetworkDomain:    network,
		schema.GeoDomain:        geo,
	}

	values := make([]float64, 0, schema.NumFeatures)
	for _, spec := range schema.FeatureSpecs() {
		v, ok := records[spec.Domain][spec.Source]
		if !ok {
			return schema.FeatureVector{}, &schema.MissingAttributeError{Domain: spec.Domain, Attribute: spec.Source}
		}
		values = append(values, v)
	}
	return schema.FeatureVectorFromValues(values)
}

// BuildFromRegion is BuildFeatureVector over a loaded region and its geometry.
func BuildFromRegion(data schema.RegionData, geo schema.Geometry) (schema.FeatureVector, error) {
	return BuildFeatureVector(data.Terrain, data.Population, data.Weather, data.Network, geo.Record())
}
