package weather

import (
	"context"
	"maps"

	"github.com/huangsam/fragility/internal/contract"
	"github.com/huangsam/fragility/schema"
)

// Enricher replaces the weather record of a region with archive values.
type Enricher struct {
	client *Client
}

var _ contract.Enricher = &Enricher{} // Compile-time check

// NewEnricher wraps a client as a pipeline enricher.
func NewEnricher(client *Client) *Enricher {
	return &Enricher{client: client}
}

// Name identifies the enrichment.
func (e *Enricher) Name() string { return "open-meteo" }

// Enrich fetches archive weather at the geometry's center.
func (e *Enricher) Enrich(ctx context.Context, geo schema.Geometry, data schema.RegionData) (schema.RegionData, error) {
	live, err := e.client.Fetch(ctx, geo.Lat, geo.Lon)
	if err != nil {
		return schema.RegionData{}, err
	}
	out := data.Clone()
	if out.Weather == nil {
		out.Weather = schema.Record{}
	}
	maps.Copy(out.Weather, live)
	return out, nil
}
