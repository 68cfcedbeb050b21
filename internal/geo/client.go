// Package geo provides a best-effort IP-geolocation lookup for encounters
// recorded without coordinates.
package geo

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/fieldworks/outreach/internal/apperr"
)

// Location is a point estimate with optional accuracy in meters.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
}

// Client queries a geolocation HTTP endpoint. Lookups are bounded by the
// configured timeout; any failure is reported as location-unavailable so
// callers can degrade instead of blocking.
type Client struct {
	httpClient *resty.Client
}

// New creates a geolocation client for the given base URL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{httpClient: httpClient}
}

// Lookup fetches the current location estimate. Errors wrap
// apperr.ErrLocationUnavailable.
func (c *Client) Lookup(ctx context.Context) (Location, error) {
	var loc Location
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&loc).
		Get("/json")
	if err != nil {
		return Location{}, fmt.Errorf("%w: %v", apperr.ErrLocationUnavailable, err)
	}
	if resp.IsError() {
		return Location{}, fmt.Errorf("%w: status %d", apperr.ErrLocationUnavailable, resp.StatusCode())
	}
	if loc.Latitude == 0 && loc.Longitude == 0 {
		return Location{}, fmt.Errorf("%w: empty response", apperr.ErrLocationUnavailable)
	}
	return loc, nil
}
