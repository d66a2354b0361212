// Package domain contains the core business entities for the weather
// orchestrator. This package defines the fundamental types and business
// rules that are independent of transports and infrastructure concerns.
package domain

import (
	"fmt"
	"time"
)

// RequestMode selects which upstream operation an invocation targets.
type RequestMode int

const (
	// ModeLive requests current conditions.
	ModeLive RequestMode = iota

	// ModeHistorical requests conditions for a specific calendar date.
	// A historical request without a date is forced back to ModeLive.
	ModeHistorical
)

// String returns the upstream path segment for the mode.
func (m RequestMode) String() string {
	if m == ModeHistorical {
		return "historical"
	}

	return "current"
}

// TransportRoute identifies how a request reaches the upstream service.
// The route is selected once per request from the hosting origin's scheme:
// a secure origin cannot call the upstream's plain-HTTP endpoint directly,
// so those requests go through the same-origin relay instead.
type TransportRoute int

const (
	// RouteDirect targets the upstream service's native endpoint.
	RouteDirect TransportRoute = iota

	// RouteRelayed targets the same-origin relay, which speaks the
	// upstream's native scheme outbound.
	RouteRelayed
)

// String implements fmt.Stringer for log fields.
func (r TransportRoute) String() string {
	if r == RouteRelayed {
		return "relayed"
	}

	return "direct"
}

// Coordinates represent a geographic location using latitude and longitude.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Query renders the coordinates in the "<lat>,<lon>" form the upstream
// service accepts as a location query.
func (c Coordinates) Query() string {
	return fmt.Sprintf("%.4f,%.4f", c.Latitude, c.Longitude)
}

// LocationInfo identifies the place a report describes.
type LocationInfo struct {
	Name      string
	Region    string
	Country   string
	LocalTime string
}

// Measurements is the normalized measurement set of a report.
type Measurements struct {
	Temperature   float64
	FeelsLike     float64
	Humidity      float64
	WindSpeed     float64
	WindDirection string
	WindDegree    int
	Pressure      float64
	UVIndex       float64
	Visibility    float64
	CloudCover    float64
	Precipitation float64
	Condition     string
	Icon          string
}

// WeatherReport is the normalized success payload produced by the
// classifier. For historical requests, Measurements carries the single
// entry of the date-keyed mapping returned upstream and ObservedDate
// records which date it describes.
type WeatherReport struct {
	Location     LocationInfo
	Measurements Measurements
	Mode         RequestMode
	ObservedDate string
	FetchedAt    time.Time
}
