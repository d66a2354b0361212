package geoip

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestLocate_Success checks the coordinate mapping and the provider path.
func TestLocate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/json", r.URL.Path)
		_, _ = w.Write([]byte(`{"status": "success", "lat": 12.9716, "lon": 77.5946}`))
	}))
	defer server.Close()

	locator := NewLocator(server.URL, server.Client(), zap.NewNop())

	coords, err := locator.Locate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 12.9716, coords.Latitude)
	assert.Equal(t, 77.5946, coords.Longitude)
	assert.Equal(t, "12.9716,77.5946", coords.Query())
}

// TestLocate_ProviderFailure checks the provider's own failure status.
func TestLocate_ProviderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "fail", "message": "private range"}`))
	}))
	defer server.Close()

	locator := NewLocator(server.URL, server.Client(), zap.NewNop())

	_, err := locator.Locate(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "private range")
}

// TestLocate_HTTPFailure checks non-200 statuses and unreachable
// providers.
func TestLocate_HTTPFailure(t *testing.T) {
	t.Run("server error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		locator := NewLocator(server.URL, server.Client(), zap.NewNop())

		_, err := locator.Locate(context.Background())

		assert.Error(t, err)
	})

	t.Run("unreachable provider", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		locator := NewLocator(server.URL, &http.Client{}, zap.NewNop())

		_, err := locator.Locate(context.Background())

		assert.Error(t, err)
	})
}
