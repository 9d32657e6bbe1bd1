package weather

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/huangsam/fragility/internal/iocache"
	"github.com/huangsam/fragility/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const archiveBody = `{
	"daily": {
		"time": ["2020-01-01", "2020-01-02", "2020-01-03", "2020-01-04", "2020-01-05"],
		"precipitation_sum": [0, 25, null, 10, 30],
		"temperature_2m_max": [30, 32, 31, null, 28],
		"temperature_2m_min": [20, 20, 21, 15, null]
	}
}`

var expectedRecord = schema.Record{
	"avg_rainfall":         16.25,
	"storm_frequency":      2,
	"temperature_variance": 0.89,
}

func archiveServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		q := r.URL.Query()
		assert.Equal(t, "19.95", q.Get("latitude"))
		assert.Equal(t, "79.3", q.Get("longitude"))
		assert.Equal(t, ArchiveStart, q.Get("start_date"))
		assert.Equal(t, ArchiveEnd, q.Get("end_date"))
		assert.Equal(t, "precipitation_sum,temperature_2m_max,temperature_2m_min", q.Get("daily"))
		assert.Equal(t, "UTC", q.Get("timezone"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func ptrs(values ...any) []*float64 {
	out := make([]*float64, len(values))
	for i, v := range values {
		if f, ok := v.(float64); ok {
			out[i] = &f
		}
	}
	return out
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name      string
		precip    []*float64
		tmax      []*float64
		tmin      []*float64
		expected  schema.Record
		expectErr bool
	}{
		{
			name:     "nulls are skipped",
			precip:   ptrs(0.0, 25.0, nil, 10.0, 30.0),
			tmax:     ptrs(30.0, 32.0, 31.0, nil, 28.0),
			tmin:     ptrs(20.0, 20.0, 21.0, 15.0, nil),
			expected: expectedRecord,
		},
		{
			name:     "storm threshold is exclusive",
			precip:   ptrs(20.0, 22.0),
			tmax:     ptrs(10.0, 10.0),
			tmin:     ptrs(5.0, 5.0),
			expected: schema.Record{"avg_rainfall": 21, "storm_frequency": 1, "temperature_variance": 0},
		},
		{
			name:     "missing temperatures give zero variance",
			precip:   ptrs(1.0, 2.0),
			expected: schema.Record{"avg_rainfall": 1.5, "storm_frequency": 0, "temperature_variance": 0},
		},
		{name: "all null precipitation", precip: ptrs(nil, nil), expectErr: true},
		{name: "empty series", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Summarize(tt.precip, tt.tmax, tt.tmin)
			if tt.expectErr {
				assert.EqualError(t, err, "weather: no precipitation data in response")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFetch(t *testing.T) {
	srv, hits := archiveServer(t, http.StatusOK, archiveBody)
	client := NewClient(srv.URL, time.Second)

	got, err := client.Fetch(context.Background(), 19.95, 79.3)
	require.NoError(t, err)
	assert.Equal(t, expectedRecord, got)
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetchErrors(t *testing.T) {
	t.Run("unexpected status", func(t *testing.T) {
		srv, _ := archiveServer(t, http.StatusTooManyRequests, `{"reason":"limit"}`)
		_, err := NewClient(srv.URL, time.Second).Fetch(context.Background(), 19.95, 79.3)
		assert.EqualError(t, err, "weather: unexpected status 429")
	})

	t.Run("malformed body", func(t *testing.T) {
		srv, _ := archiveServer(t, http.StatusOK, `{"daily":`)
		_, err := NewClient(srv.URL, time.Second).Fetch(context.Background(), 19.95, 79.3)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "weather: failed to decode response")
	})

	t.Run("canceled context", func(t *testing.T) {
		srv, _ := archiveServer(t, http.StatusOK, archiveBody)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewClient(srv.URL, time.Second).Fetch(ctx, 19.95, 79.3)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("invalid base url", func(t *testing.T) {
		_, err := NewClient("://bad", time.Second).Fetch(context.Background(), 0, 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "weather: invalid base url")
	})
}

func TestFetchCache(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	t.Run("miss stores the response", func(t *testing.T) {
		srv, hits := archiveServer(t, http.StatusOK, archiveBody)
		store := &iocache.MockCacheStore{}
		store.On("Get", mock.AnythingOfType("string")).Return(nil, 0, int64(0), sql.ErrNoRows)
		store.On("Set", mock.AnythingOfType("string"), []byte(archiveBody), CacheVersion, now.Unix()).Return(nil)

		client := NewClient(srv.URL, time.Second, WithCache(store), WithClock(clock))
		got, err := client.Fetch(context.Background(), 19.95, 79.3)
		require.NoError(t, err)
		assert.Equal(t, expectedRecord, got)
		assert.Equal(t, int32(1), hits.Load())
		store.AssertExpectations(t)
	})

	t.Run("fresh hit skips the network", func(t *testing.T) {
		srv, hits := archiveServer(t, http.StatusOK, archiveBody)
		store := &iocache.MockCacheStore{}
		store.On("Get", mock.AnythingOfType("string")).Return([]byte(archiveBody), CacheVersion, now.Add(-time.Hour).Unix(), nil)

		client := NewClient(srv.URL, time.Second, WithCache(store), WithClock(clock))
		got, err := client.Fetch(context.Background(), 19.95, 79.3)
		require.NoError(t, err)
		assert.Equal(t, expectedRecord, got)
		assert.Zero(t, hits.Load())
		store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("stale or old version refetches", func(t *testing.T) {
		entries := []struct {
			version int
			ts      int64
		}{
			{CacheVersion, now.Add(-CacheMaxAge).Unix()},
			{CacheVersion + 1, now.Unix()},
		}
		for _, entry := range entries {
			srv, hits := archiveServer(t, http.StatusOK, archiveBody)
			store := &iocache.MockCacheStore{}
			store.On("Get", mock.AnythingOfType("string")).Return([]byte(`{}`), entry.version, entry.ts, nil)
			store.On("Set", mock.Anything, mock.Anything, CacheVersion, now.Unix()).Return(nil)

			client := NewClient(srv.URL, time.Second, WithCache(store), WithClock(clock))
			_, err := client.Fetch(context.Background(), 19.95, 79.3)
			require.NoError(t, err)
			assert.Equal(t, int32(1), hits.Load())
			store.AssertExpectations(t)
		}
	})

	t.Run("cache write failure is not fatal", func(t *testing.T) {
		srv, _ := archiveServer(t, http.StatusOK, archiveBody)
		store := &iocache.MockCacheStore{}
		store.On("Get", mock.Anything).Return(nil, 0, int64(0), sql.ErrNoRows)
		store.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

		got, err := NewClient(srv.URL, time.Second, WithCache(store), WithClock(clock)).Fetch(context.Background(), 19.95, 79.3)
		require.NoError(t, err)
		assert.Equal(t, expectedRecord, got)
	})
}

func TestCacheKey(t *testing.T) {
	a := CacheKey("https://archive/a")
	assert.Equal(t, a, CacheKey("https://archive/a"))
	assert.NotEqual(t, a, CacheKey("https://archive/b"))
	assert.Len(t, a, len("weather:")+64)
}

func TestEnricher(t *testing.T) {
	srv, _ := archiveServer(t, http.StatusOK, archiveBody)
	enricher := NewEnricher(NewClient(srv.URL, time.Second))
	assert.Equal(t, "open-meteo", enricher.Name())

	data := schema.RegionData{
		RegionID: "region_1",
		Terrain:  schema.Record{"avg_elevation": 500},
		Weather:  schema.Record{"avg_rainfall": 900, "storm_frequency": 4, "temperature_variance": 7},
	}
	geo := schema.Geometry{Kind: schema.PointGeometry, Lat: 19.95, Lon: 79.3, AreaSqKm: 10}

	out, err := enricher.Enrich(context.Background(), geo, data)
	require.NoError(t, err)
	assert.Equal(t, expectedRecord, out.Weather)
	assert.Equal(t, schema.Record{"avg_elevation": 500}, out.Terrain)
	assert.Equal(t, 900.0, data.Weather["avg_rainfall"], "input is not modified")

	empty, err := enricher.Enrich(context.Background(), geo, schema.RegionData{RegionID: "bbox"})
	require.NoError(t, err)
	assert.Equal(t, expectedRecord, empty.Weather)
}

func TestEnricherError(t *testing.T) {
	srv, _ := archiveServer(t, http.StatusInternalServerError, "")
	enricher := NewEnricher(NewClient(srv.URL, time.Second))
	_, err := enricher.Enrich(context.Background(), schema.Geometry{Lat: 19.95, Lon: 79.3}, schema.RegionData{})
	assert.EqualError(t, err, "weather: unexpected status 500")
}
