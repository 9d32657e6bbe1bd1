// Package weather derives annual weather features from the Open-Meteo archive API.
package weather

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/huangsam/fragility/core/algo"
	"github.com/huangsam/fragility/internal/contract"
	"github.com/huangsam/fragility/internal/logging"
	"github.com/huangsam/fragility/schema"
)

// Archive window and summary constants.
const (
	ArchiveStart    = "2020-01-01"
	ArchiveEnd      = "2020-12-31"
	StormRainfallMm = 20.0 // daily precipitation above this counts as a storm day
	dailyFields     = "precipitation_sum,temperature_2m_max,temperature_2m_min"
)

// Cache settings for archive responses.
const (
	CacheVersion = 1
	CacheMaxAge  = 30 * 24 * time.Hour
)

// Client fetches daily archive data for a coordinate.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      contract.CacheStore
	now        func() time.Time
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithCache stores raw responses in the given cache store.
func WithCache(store contract.CacheStore) Option {
	return func(c *Client) { c.cache = store }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithClock replaces time.Now, used for cache staleness.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a client for the archive endpoint at baseURL.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
		log:        logging.New("weather"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type archiveResponse struct {
	Daily struct {
		Precipitation []*float64 `json:"precipitation_sum"`
		TempMax       []*float64 `json:"temperature_2m_max"`
		TempMin       []*float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

// Fetch returns avg_rainfall, storm_frequency and temperature_variance for a coordinate.
func (c *Client) Fetch(ctx context.Context, lat, lon float64) (schema.Record, error) {
	reqURL, err := c.requestURL(lat, lon)
	if err != nil {
		return nil, err
	}

	body, err := c.load(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var resp archiveResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("weather: failed to decode response: %w", err)
	}
	return Summarize(resp.Daily.Precipitation, resp.Daily.TempMax, resp.Daily.TempMin)
}

func (c *Client) requestURL(lat, lon float64) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("weather: invalid base url: %w", err)
	}
	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("start_date", ArchiveStart)
	q.Set("end_date", ArchiveEnd)
	q.Set("daily", dailyFields)
	q.Set("timezone", "UTC")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// load returns the response body, from the cache when a fresh entry exists.
func (c *Client) load(ctx context.Context, reqURL string) ([]byte, error) {
	key := CacheKey(reqURL)
	if c.cache != nil {
		value, version, ts, err := c.cache.Get(key)
		if err == nil && version == CacheVersion && c.now().Sub(time.Unix(ts, 0)) < CacheMaxAge {
			c.log.Debug("cache hit", slog.String("key", key))
			return value, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("weather: failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("weather: failed to read response: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.Set(key, body, CacheVersion, c.now().Unix()); err != nil {
			contract.LogWarn("Cannot cache weather response", err)
		}
	}
	return body, nil
}

// CacheKey returns the cache key of a request URL.
func CacheKey(reqURL string) string {
	sum := sha256.Sum256([]byte(reqURL))
	return "weather:" + hex.EncodeToString(sum[:])
}

// Summarize reduces daily series to the three weather features. Null days are skipped.
func Summarize(precip, tmax, tmin []*float64) (schema.Record, error) {
	var rain []float64
	storms := 0
	for _, p := range precip {
		if p == nil {
			continue
		}
		rain = append(rain, *p)
		if *p > StormRainfallMm {
			storms++
		}
	}
	if len(rain) == 0 {
		return nil, fmt.Errorf("weather: no precipitation data in response")
	}

	var ranges []float64
	for i := range min(len(tmax), len(tmin)) {
		if tmax[i] == nil || tmin[i] == nil {
			continue
		}
		ranges = append(ranges, *tmax[i]-*tmin[i])
	}

	return schema.Record{
		"avg_rainfall":         algo.RoundTo(algo.Mean(rain), 2),
		"storm_frequency":      float64(storms),
		"temperature_variance": algo.RoundTo(algo.PopulationVariance(ranges), 2),
	}, nil
}
