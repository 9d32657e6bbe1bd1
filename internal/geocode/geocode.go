// Package geocode resolves coordinates to place names with Nominatim reverse geocoding.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/huangsam/fragility/internal/contract"
)

// UnknownRegion is returned when the response carries no display name.
const UnknownRegion = "Unknown Region"

// zoom 10 asks Nominatim for city/district granularity.
const zoom = "10"

// Client calls a Nominatim reverse endpoint.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

var _ contract.RegionNamer = &Client{} // Compile-time check

// NewClient creates a client. Nominatim's usage policy requires an identifying User-Agent.
func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
}

// RegionName returns the display name of the place at lat/lon.
func (c *Client) RegionName(ctx context.Context, lat, lon float64) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("geocode: invalid base url: %w", err)
	}
	q := u.Query()
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("format", "json")
	q.Set("zoom", zoom)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("geocode: failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("geocode: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocode: unexpected status %d", resp.StatusCode)
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("geocode: failed to decode response: %w", err)
	}
	if body.DisplayName == "" {
		return UnknownRegion, nil
	}
	return body.DisplayName, nil
}
