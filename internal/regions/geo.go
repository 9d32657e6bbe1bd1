// Package regions resolves region geometry and loads raw region attributes.
package regions

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/huangsam/fragility/schema"
)

// PointAreaSqKm is the area assigned to a region resolved by id.
const PointAreaSqKm = 10.0

// flatAreaFactor converts square degrees to square kilometers near the equator.
const flatAreaFactor = 12365.0

// Centroid is a lat/lon pair.
type Centroid struct {
	Lat float64
	Lon float64
}

var centroids = map[string]Centroid{
	"region_1": {Lat: 19.95, Lon: 79.30},
	"region_2": {Lat: 20.10, Lon: 79.80},
	"region_3": {Lat: 19.70, Lon: 79.10},
}

// KnownRegions returns the ids of the centroid catalog, sorted.
func KnownRegions() []string {
	ids := make([]string, 0, len(centroids))
	for id := range centroids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// LookupCentroid returns the centroid of a catalog region.
func LookupCentroid(regionID string) (Centroid, bool) {
	c, ok := centroids[regionID]
	return c, ok
}

// Resolver turns a region request into a geometry.
type Resolver struct {
	Method schema.AreaMethod
}

// NewResolver returns a resolver using the given area method. An empty method means flat.
func NewResolver(method schema.AreaMethod) *Resolver {
	if method == "" {
		method = schema.FlatArea
	}
	return &Resolver{Method: method}
}

// Resolve maps a request to its geometry. A region id wins over a bounding box.
func (r *Resolver) Resolve(req schema.RegionRequest) (schema.Geometry, error) {
	if req.RegionID != "" {
		c, ok := LookupCentroid(req.RegionID)
		if !ok {
			return schema.Geometry{}, &schema.GeometryError{Reason: fmt.Sprintf("unknown region_id: %s", req.RegionID)}
		}
		return schema.Geometry{
			Kind:     schema.PointGeometry,
			Lat:      c.Lat,
			Lon:      c.Lon,
			AreaSqKm: PointAreaSqKm,
		}, nil
	}

	if req.BoundingBox != nil {
		bbox := *req.BoundingBox
		if err := ValidateBBox(bbox); err != nil {
			return schema.Geometry{}, err
		}
		lat, lon := Center(bbox)
		area := FlatAreaKm2(bbox)
		if r.Method == schema.GeodesicArea {
			area = GeodesicAreaKm2(bbox)
		}
		return schema.Geometry{
			Kind:        schema.PolygonGeometry,
			Lat:         lat,
			Lon:         lon,
			BoundingBox: &bbox,
			AreaSqKm:    area,
		}, nil
	}

	return schema.Geometry{}, &schema.GeometryError{Reason: "either region_id or bounding_box must be provided"}
}

// ResolveGeometry resolves a request with the flat area method.
func ResolveGeometry(req schema.RegionRequest) (schema.Geometry, error) {
	return NewResolver(schema.FlatArea).Resolve(req)
}

// ParseBBox parses "minLat,minLon,maxLat,maxLon".
func ParseBBox(s string) (schema.BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return schema.BoundingBox{}, &schema.GeometryError{Reason: fmt.Sprintf("bbox must have 4 components, got %d", len(parts))}
	}

	names := [4]string{"minLat", "minLon", "maxLat", "maxLon"}
	var values [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return schema.BoundingBox{}, &schema.GeometryError{Reason: fmt.Sprintf("invalid %s: %q", names[i], strings.TrimSpace(p))}
		}
		values[i] = v
	}

	bbox := schema.BoundingBox{MinLat: values[0], MinLon: values[1], MaxLat: values[2], MaxLon: values[3]}
	if err := ValidateBBox(bbox); err != nil {
		return schema.BoundingBox{}, err
	}
	return bbox, nil
}

// ValidateBBox checks coordinate ranges and ordering.
func ValidateBBox(b schema.BoundingBox) error {
	for _, v := range []float64{b.MinLat, b.MinLon, b.MaxLat, b.MaxLon} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &schema.GeometryError{Reason: "bbox coordinates must be finite"}
		}
	}
	if b.MinLat < -90 || b.MinLat > 90 || b.MaxLat < -90 || b.MaxLat > 90 {
		return &schema.GeometryError{Reason: "latitude out of range [-90, 90]"}
	}
	if b.MinLon < -180 || b.MinLon > 180 || b.MaxLon < -180 || b.MaxLon > 180 {
		return &schema.GeometryError{Reason: "longitude out of range [-180, 180]"}
	}
	if b.MinLat >= b.MaxLat || b.MinLon >= b.MaxLon {
		return &schema.GeometryError{Reason: "bbox min values must be less than max values"}
	}
	return nil
}

// Center returns the midpoint of a bounding box.
func Center(b schema.BoundingBox) (lat, lon float64) {
	return (b.MinLat + b.MaxLat) / 2, (b.MinLon + b.MaxLon) / 2
}

// FlatAreaKm2 scales square degrees by a fixed factor.
func FlatAreaKm2(b schema.BoundingBox) float64 {
	return (b.MaxLon - b.MinLon) * (b.MaxLat - b.MinLat) * flatAreaFactor
}

// GeodesicAreaKm2 approximates the area with latitude-corrected degree lengths.
func GeodesicAreaKm2(b schema.BoundingBox) float64 {
	latMid := (b.MinLat + b.MaxLat) / 2 * math.Pi / 180
	dLat := b.MaxLat - b.MinLat
	dLon := b.MaxLon - b.MinLon

	// meters per degree
	ky := 111132.92 - 559.82*math.Cos(2*latMid)
	kx := 111412.84 * math.Cos(latMid)

	return math.Abs(dLat*ky*dLon*kx) / 1e6
}

// SearchBox returns the bounding box of a geometry. Points get a square of
// PointAreaSqKm around the centroid.
func SearchBox(g schema.Geometry) schema.BoundingBox {
	if g.BoundingBox != nil {
		return *g.BoundingBox
	}
	half := math.Sqrt(g.AreaSqKm) / 2
	dLat := half / 111.32
	dLon := half / (111.32 * math.Max(math.Cos(g.Lat*math.Pi/180), 1e-6))
	return schema.BoundingBox{
		MinLat: g.Lat - dLat,
		MinLon: g.Lon - dLon,
		MaxLat: g.Lat + dLat,
		MaxLon: g.Lon + dLon,
	}
}

// OverpassBBox formats a box as "south,west,north,east".
func OverpassBBox(b schema.BoundingBox) string {
	return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", b.MinLat, b.MinLon, b.MaxLat, b.MaxLon)
}
