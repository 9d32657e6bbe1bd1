// Package towers counts communication masts and towers from OpenStreetMap through the Overpass API.
package towers

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"time"

	"github.com/huangsam/fragility/core/algo"
	"github.com/huangsam/fragility/internal/contract"
	"github.com/huangsam/fragility/internal/logging"
	"github.com/huangsam/fragility/internal/regions"
	"github.com/huangsam/fragility/schema"
	"github.com/serjvanilla/go-overpass"
)

// maxParallel bounds concurrent Overpass requests per client.
const maxParallel = 2

const towerQuery = `[out:json][timeout:25];
(
	node["man_made"~"^(mast|tower)$"]["tower:type"="communication"](%[1]s);
	way["man_made"~"^(mast|tower)$"]["tower:type"="communication"](%[1]s);
);
out tags;`

// Client queries an Overpass endpoint.
type Client struct {
	client *overpass.Client
	log    *slog.Logger
}

// NewClient creates a client for the Overpass interpreter at endpoint.
func NewClient(endpoint string, timeout time.Duration) *Client {
	httpClient := &http.Client{Timeout: timeout}
	client := overpass.NewWithSettings(endpoint, maxParallel, httpClient)
	return &Client{client: &client, log: logging.New("towers")}
}

// Query returns the Overpass QL used for a bounding box.
func Query(b schema.BoundingBox) string {
	return fmt.Sprintf(towerQuery, regions.OverpassBBox(b))
}

// Count returns the number of communication towers inside the box.
func (c *Client) Count(ctx context.Context, b schema.BoundingBox) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	result, err := c.client.Query(Query(b))
	if err != nil {
		return 0, fmt.Errorf("overpass query failed: %w", err)
	}

	count := 0
	for _, node := range result.Nodes {
		if isCommunicationTower(node.Tags) {
			count++
		}
	}
	for _, way := range result.Ways {
		if isCommunicationTower(way.Tags) {
			count++
		}
	}
	c.log.Debug("towers counted", slog.Int("count", count), slog.String("bbox", regions.OverpassBBox(b)))
	return count, nil
}

// Density returns towers per square kilometer for a geometry, rounded to 2 decimals.
func (c *Client) Density(ctx context.Context, geo schema.Geometry) (float64, error) {
	if geo.AreaSqKm <= 0 {
		return 0, fmt.Errorf("towers: region area must be positive, got %v", geo.AreaSqKm)
	}
	count, err := c.Count(ctx, regions.SearchBox(geo))
	if err != nil {
		return 0, err
	}
	return algo.RoundTo(float64(count)/geo.AreaSqKm, 2), nil
}

// Referenced elements without tags are skipped.
func isCommunicationTower(tags map[string]string) bool {
	switch tags["man_made"] {
	case "mast", "tower":
		return tags["tower:type"] == "communication"
	default:
		return false
	}
}

// Enricher replaces tower_density in the network record.
type Enricher struct {
	client *Client
}

var _ contract.Enricher = &Enricher{} // Compile-time check

// NewEnricher wraps a client as a pipeline enricher.
func NewEnricher(client *Client) *Enricher {
	return &Enricher{client: client}
}

// Name identifies the enrichment.
func (e *Enricher) Name() string { return "overpass" }

// Enrich counts towers in the geometry's search box.
func (e *Enricher) Enrich(ctx context.Context, geo schema.Geometry, data schema.RegionData) (schema.RegionData, error) {
	density, err := e.client.Density(ctx, geo)
	if err != nil {
		return schema.RegionData{}, err
	}
	out := data.Clone()
	network := schema.Record{}
	maps.Copy(network, out.Network)
	network["tower_density"] = density
	out.Network = network
	return out, nil
}
