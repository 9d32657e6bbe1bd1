package regions

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/huangsam/fragility/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validFS() fstest.MapFS {
	return fstest.MapFS{
		"terrain.csv":    {Data: []byte("region_id,avg_elevation,terrain_variance,slope_mean\nr1,100,0.1,2\n")},
		"population.csv": {Data: []byte("region_id,pop_density,pop_growth\nr1,50,1.2\n")},
		"weather.csv":    {Data: []byte("region_id,avg_rainfall,storm_frequency,temperature_variance\nr1,900,2,7\n")},
		"network.csv":    {Data: []byte("region_id,tower_density,avg_uptime,backhaul_redundancy\nr1,3,0.95,0.6\n")},
	}
}

func TestCSVSourceEmbedded(t *testing.T) {
	src := NewCSVSource("")
	ctx := context.Background()

	ids, err := src.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"region_1", "region_2", "region_3"}, ids)

	data, err := src.Load(ctx, "region_1")
	require.NoError(t, err)
	assert.Equal(t, "region_1", data.RegionID)
	assert.Equal(t, schema.Record{"avg_elevation": 210, "terrain_variance": 0.22, "slope_mean": 6}, data.Terrain)
	assert.Equal(t, schema.Record{"pop_density": 240, "pop_growth": 1.6}, data.Population)
	assert.Equal(t, schema.Record{"avg_rainfall": 680, "storm_frequency": 1, "temperature_variance": 5}, data.Weather)
	assert.Equal(t, schema.Record{"tower_density": 5.5, "avg_uptime": 0.98, "backhaul_redundancy": 0.85}, data.Network)
}

func TestCSVSourceEmbeddedCoversCatalog(t *testing.T) {
	src := NewCSVSource("")
	for _, id := range KnownRegions() {
		data, err := src.Load(context.Background(), id)
		require.NoError(t, err, id)
		for _, domain := range schema.RecordDomains {
			rec := map[schema.Domain]schema.Record{
				schema.TerrainDomain:    data.Terrain,
				schema.PopulationDomain: data.Population,
				schema.WeatherDomain:    data.Weather,
				schema.NetworkDomain:    data.Network,
			}[domain]
			for _, attr := range schema.DomainAttributes(domain) {
				assert.Contains(t, rec, attr, "%s %s", id, domain)
			}
		}
	}
}

func TestCSVSourceRegionNotFound(t *testing.T) {
	_, err := NewCSVSource("").Load(context.Background(), "region_42")
	require.Error(t, err)

	var notFound *schema.RegionNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "region_42", notFound.RegionID)
	assert.EqualError(t, err, "region not found: region_42")
}

func TestCSVSourceErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(fstest.MapFS)
		errMsg string
	}{
		{
			name:   "missing dataset",
			mutate: func(m fstest.MapFS) { delete(m, "weather.csv") },
			errMsg: "missing dataset: weather.csv",
		},
		{
			name: "non numeric cell",
			mutate: func(m fstest.MapFS) {
				m["weather.csv"] = &fstest.MapFile{Data: []byte("region_id,avg_rainfall,storm_frequency,temperature_variance\nr1,lots,2,7\n")}
			},
			errMsg: `weather.csv: column avg_rainfall row 2: invalid number "lots"`,
		},
		{
			name: "NaN cell",
			mutate: func(m fstest.MapFS) {
				m["network.csv"] = &fstest.MapFile{Data: []byte("region_id,tower_density,avg_uptime,backhaul_redundancy\nr1,NaN,0.9,0.5\n")}
			},
			errMsg: `network.csv: column tower_density row 2: invalid number "NaN"`,
		},
		{
			name: "infinite cell",
			mutate: func(m fstest.MapFS) {
				m["terrain.csv"] = &fstest.MapFile{Data: []byte("region_id,avg_elevation,terrain_variance,slope_mean\nr1,100,0.1,2\nr2,-Inf,0.1,2\n")}
			},
			errMsg: `terrain.csv: column avg_elevation row 3: invalid number "-Inf"`,
		},
		{
			name: "missing key column",
			mutate: func(m fstest.MapFS) {
				m["network.csv"] = &fstest.MapFile{Data: []byte("id,tower_density\nr1,3\n")}
			},
			errMsg: "network.csv: missing region_id column",
		},
		{
			name: "empty file",
			mutate: func(m fstest.MapFS) {
				m["population.csv"] = &fstest.MapFile{Data: []byte("")}
			},
			errMsg: "population.csv: empty dataset",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := validFS()
			tt.mutate(fsys)
			_, err := NewCSVSourceFS(fsys).Load(context.Background(), "r1")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestCSVSourceFirstRowWins(t *testing.T) {
	fsys := validFS()
	fsys["population.csv"] = &fstest.MapFile{Data: []byte("region_id,pop_density,pop_growth\nr1,50,1.2\nr1,999,9\n")}

	data, err := NewCSVSourceFS(fsys).Load(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, 50.0, data.Population["pop_density"])
}

func TestCSVSourceListNeedsEveryTable(t *testing.T) {
	fsys := validFS()
	fsys["terrain.csv"] = &fstest.MapFile{Data: []byte("region_id,avg_elevation,terrain_variance,slope_mean\nr1,100,0.1,2\nr2,1,1,1\n")}

	ids, err := NewCSVSourceFS(fsys).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, ids)

	_, err = NewCSVSourceFS(fsys).Load(context.Background(), "r2")
	var notFound *schema.RegionNotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestCSVSourceDirectory(t *testing.T) {
	dir := t.TempDir()
	for name, file := range validFS() {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), file.Data, 0o600))
	}

	data, err := NewCSVSource(dir).Load(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, 0.6, data.Network["backhaul_redundancy"])
}

func TestCSVSourceCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCSVSource("").Load(ctx, "region_1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCSVSourceTables(t *testing.T) {
	tables, err := NewCSVSourceFS(validFS()).Tables()
	require.NoError(t, err)
	assert.Len(t, tables, len(schema.RecordDomains))
	assert.Equal(t, 3.0, tables[schema.NetworkDomain]["r1"]["tower_density"])
}
