package domain

import "fmt"

// Error codes used across the orchestrator. Handlers and the CLI map these
// to user-facing behavior with errors.As.
const (
	// ErrCodeEmptyQuery is returned when the normalized query is empty.
	// This is a precondition failure; no network call is made.
	ErrCodeEmptyQuery = "EMPTY_QUERY"

	// ErrCodeInvalidCredential indicates the upstream rejected the access key.
	ErrCodeInvalidCredential = "INVALID_CREDENTIAL"

	// ErrCodeUpstreamUnreachable indicates no response arrived on the direct route.
	ErrCodeUpstreamUnreachable = "UPSTREAM_UNREACHABLE"

	// ErrCodeRelayUnreachable indicates no response arrived on the relayed route.
	ErrCodeRelayUnreachable = "RELAY_UNREACHABLE"

	// ErrCodeUpstreamError covers any other explicit API-reported failure.
	ErrCodeUpstreamError = "UPSTREAM_ERROR"

	// ErrCodeLocationUnavailable indicates the geolocation provider failed.
	ErrCodeLocationUnavailable = "LOCATION_UNAVAILABLE"
)

// WeatherError represents domain-specific errors that can occur during
// weather operations. It provides structured error information with error
// codes and optional underlying causes.
type WeatherError struct {
	// Code identifies the type of error for programmatic handling
	Code string

	// Message provides a human-readable error description
	Message string

	// Cause wraps an underlying error if applicable
	Cause error
}

// Error implements the error interface for WeatherError.
// It formats the error message to include the code, message, and underlying cause.
func (e *WeatherError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is/errors.As.
func (e *WeatherError) Unwrap() error {
	return e.Cause
}
