// Package upstream implements the HTTP transport for the weather
// pipeline. It executes the request descriptor built by the transport
// selector and hands the raw response back without interpreting it; all
// classification intelligence stays in the core.
package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sean-rowe/weatherdesk/internal/core/ports"
)

const userAgent = "weatherdesk/1.0"

// Client executes weather requests over HTTP.
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a transport backed by the given HTTP client.
func NewClient(httpClient *http.Client, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
	}
}

// Do executes the request. A non-nil error means no response arrived;
// HTTP-level failures are returned as a RawResponse for the classifier.
func (c *Client) Do(ctx context.Context, spec ports.RequestSpec) (*ports.RawResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, spec.URL, nil)

	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		req = req.WithContext(ctx)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)

	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.logger.Error("failed to close response body", zap.Error(err))
		}
	}(resp.Body)

	body, err := io.ReadAll(resp.Body)

	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("upstream exchange completed",
		zap.Stringer("route", spec.Route),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	return &ports.RawResponse{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}
