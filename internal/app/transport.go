package app

import (
	"context"

	"github.com/sean-rowe/weatherdesk/internal/adapters/secondary/upstream"
	"github.com/sean-rowe/weatherdesk/internal/core/ports"
	"github.com/sean-rowe/weatherdesk/internal/infrastructure/circuitbreaker"
)

// BreakerTransport wraps the upstream transport with circuit breaker
// protection so a failing endpoint is not hammered on every keystroke.
type BreakerTransport struct {
	client  *upstream.Client
	breaker *circuitbreaker.Breaker
}

// NewBreakerTransport wires the transport through the breaker.
func NewBreakerTransport(client *upstream.Client, breaker *circuitbreaker.Breaker) *BreakerTransport {
	return &BreakerTransport{
		client:  client,
		breaker: breaker,
	}
}

// Do executes the request with circuit breaker protection. A rejected
// call surfaces as a transport-level error and classifies as unreachable.
func (t *BreakerTransport) Do(ctx context.Context, spec ports.RequestSpec) (*ports.RawResponse, error) {
	var result *ports.RawResponse

	err := t.breaker.Execute(ctx, "fetch-weather", func() error {
		var err error
		result, err = t.client.Do(ctx, spec)

		return err
	})

	if err != nil {
		return nil, err
	}

	return result, nil
}
