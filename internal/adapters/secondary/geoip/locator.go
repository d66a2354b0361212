// Package geoip resolves the caller's coordinates from their public IP
// address. It implements the Locator port consumed by the orchestrator's
// "use my location" path.
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/sean-rowe/weatherdesk/internal/core/domain"
)

// Locator queries an ip-api.com-compatible endpoint.
type Locator struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewLocator creates a locator against baseURL (typically
// http://ip-api.com).
func NewLocator(baseURL string, httpClient *http.Client, logger *zap.Logger) *Locator {
	return &Locator{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// locateResponse mirrors the provider's JSON payload.
type locateResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Locate resolves the current coordinates.
func (l *Locator) Locate(ctx context.Context) (domain.Coordinates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/json", nil)

	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("failed to build geolocation request: %w", err)
	}

	resp, err := l.httpClient.Do(req)

	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geolocation request failed: %w", err)
	}

	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			l.logger.Error("failed to close response body", zap.Error(err))
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return domain.Coordinates{}, fmt.Errorf("geolocation provider returned status %d", resp.StatusCode)
	}

	var payload locateResponse

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Coordinates{}, fmt.Errorf("failed to decode geolocation response: %w", err)
	}

	if payload.Status != "success" {
		return domain.Coordinates{}, fmt.Errorf("geolocation lookup failed: %s", payload.Message)
	}

	return domain.Coordinates{
		Latitude:  payload.Lat,
		Longitude: payload.Lon,
	}, nil
}
