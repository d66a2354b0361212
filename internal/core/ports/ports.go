// Package ports declares the interfaces the orchestrator core depends on.
// Adapters implement them; tests substitute fakes.
package ports

import (
	"context"
	"errors"

	"github.com/sean-rowe/weatherdesk/internal/core/domain"
)

// ErrKeyNotFound is returned by KeyValueStore implementations when the
// requested key has never been written.
var ErrKeyNotFound = errors.New("key not found")

// RequestSpec is a fully-formed request descriptor produced by the
// transport selector: the target URL plus the routing metadata the
// classifier needs to attribute failures.
type RequestSpec struct {
	URL   string
	Route domain.TransportRoute
	Mode  domain.RequestMode
	Query string
}

// RawResponse is an upstream response before classification. The body is
// kept opaque here; the classifier owns its interpretation.
type RawResponse struct {
	StatusCode int
	Body       []byte
}

// Transport executes a request descriptor against the network. A non-nil
// error means no response arrived at all; HTTP-level failures come back
// as a RawResponse with the corresponding status code.
type Transport interface {
	Do(ctx context.Context, spec RequestSpec) (*RawResponse, error)
}

// KeyValueStore is the durable string store backing the credential and the
// recency cache. Implementations return ErrKeyNotFound for absent keys.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Locator resolves the caller's current coordinates.
type Locator interface {
	Locate(ctx context.Context) (domain.Coordinates, error)
}

// Listener receives the orchestrator's outcomes. OnNotice carries interim
// messages such as the downgrade-and-retry announcement; OnReport and
// OnFailure are terminal for a given invocation.
type Listener interface {
	OnReport(report *domain.WeatherReport)
	OnNotice(notice string)
	OnFailure(err error)
}
