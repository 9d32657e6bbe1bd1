package towers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/fragility/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const overpassBody = `{
	"version": 0.6,
	"generator": "Overpass API",
	"osm3s": {"timestamp_osm_base": "2026-01-01T00:00:00Z", "copyright": "ODbL"},
	"elements": [
		{"type": "node", "id": 1, "lat": 19.95, "lon": 79.30, "tags": {"man_made": "mast", "tower:type": "communication"}},
		{"type": "node", "id": 2, "lat": 19.96, "lon": 79.31, "tags": {"man_made": "tower", "tower:type": "communication"}},
		{"type": "node", "id": 3, "lat": 19.97, "lon": 79.32, "tags": {"man_made": "tower", "tower:type": "observation"}},
		{"type": "way", "id": 10, "tags": {"man_made": "mast", "tower:type": "communication"}}
	]
}`

type queryLog struct {
	mu      sync.Mutex
	queries []string
}

func (l *queryLog) add(q string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.queries = append(l.queries, q)
}

func (l *queryLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.queries...)
}

func overpassServer(t *testing.T, status int, body string) (*httptest.Server, *queryLog) {
	t.Helper()
	queries := &queryLog{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries.add(r.FormValue("data"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, queries
}

func TestQuery(t *testing.T) {
	q := Query(schema.BoundingBox{MinLat: 19.9, MinLon: 79.2, MaxLat: 20, MaxLon: 79.4})
	assert.True(t, strings.HasPrefix(q, "[out:json]"))
	assert.Contains(t, q, `node["man_made"~"^(mast|tower)$"]["tower:type"="communication"](19.900000,79.200000,20.000000,79.400000);`)
	assert.Contains(t, q, `way["man_made"~"^(mast|tower)$"]["tower:type"="communication"](19.900000,79.200000,20.000000,79.400000);`)
	assert.True(t, strings.HasSuffix(q, "out tags;"))
}

func TestIsCommunicationTower(t *testing.T) {
	tests := []struct {
		name string
		tags map[string]string
		want bool
	}{
		{"mast", map[string]string{"man_made": "mast", "tower:type": "communication"}, true},
		{"tower", map[string]string{"man_made": "tower", "tower:type": "communication"}, true},
		{"observation tower", map[string]string{"man_made": "tower", "tower:type": "observation"}, false},
		{"chimney", map[string]string{"man_made": "chimney", "tower:type": "communication"}, false},
		{"untagged", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isCommunicationTower(tt.tags))
		})
	}
}

func TestCount(t *testing.T) {
	srv, queries := overpassServer(t, http.StatusOK, overpassBody)
	client := NewClient(srv.URL, time.Second)

	box := schema.BoundingBox{MinLat: 19.9, MinLon: 79.2, MaxLat: 20, MaxLon: 79.4}
	count, err := client.Count(context.Background(), box)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	require.Len(t, queries.all(), 1)
	assert.Equal(t, Query(box), queries.all()[0])
}

func TestDensity(t *testing.T) {
	srv, _ := overpassServer(t, http.StatusOK, overpassBody)
	client := NewClient(srv.URL, time.Second)

	density, err := client.Density(context.Background(), schema.Geometry{Kind: schema.PointGeometry, Lat: 19.95, Lon: 79.3, AreaSqKm: 10})
	require.NoError(t, err)
	assert.Equal(t, 0.3, density)

	_, err = client.Density(context.Background(), schema.Geometry{AreaSqKm: 0})
	assert.EqualError(t, err, "towers: region area must be positive, got 0")
}

func TestCountErrors(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		srv, _ := overpassServer(t, http.StatusGatewayTimeout, "busy")
		_, err := NewClient(srv.URL, time.Second).Count(context.Background(), schema.BoundingBox{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "overpass query failed")
	})

	t.Run("canceled context", func(t *testing.T) {
		srv, queries := overpassServer(t, http.StatusOK, overpassBody)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewClient(srv.URL, time.Second).Count(ctx, schema.BoundingBox{})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, queries.all())
	})
}

func TestEnricher(t *testing.T) {
	srv, _ := overpassServer(t, http.StatusOK, overpassBody)
	enricher := NewEnricher(NewClient(srv.URL, time.Second))
	assert.Equal(t, "overpass", enricher.Name())

	data := schema.RegionData{
		RegionID: "region_1",
		Network:  schema.Record{"tower_density": 2.2, "avg_uptime": 0.93, "backhaul_redundancy": 0.4},
	}
	geo := schema.Geometry{Kind: schema.PolygonGeometry, BoundingBox: &schema.BoundingBox{MinLat: 19.9, MinLon: 79.2, MaxLat: 20, MaxLon: 79.4}, AreaSqKm: 247.3}

	out, err := enricher.Enrich(context.Background(), geo, data)
	require.NoError(t, err)
	assert.Equal(t, 0.01, out.Network["tower_density"])
	assert.Equal(t, 0.93, out.Network["avg_uptime"])
	assert.Equal(t, 2.2, data.Network["tower_density"], "input is not modified")

	bare, err := enricher.Enrich(context.Background(), geo, schema.RegionData{})
	require.NoError(t, err)
	assert.Equal(t, schema.Record{"tower_density": 0.01}, bare.Network)
}
