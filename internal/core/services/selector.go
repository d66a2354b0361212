// Package services implements the orchestration core: transport selection,
// response classification, the retry coordinator, the recency cache, and
// the refresh scheduler.
package services

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/sean-rowe/weatherdesk/internal/core/domain"
	"github.com/sean-rowe/weatherdesk/internal/core/ports"
)

// Fixed granularity parameters attached to every historical request.
const (
	historicalHourly   = "1"
	historicalInterval = "24"
)

// Routing holds the endpoints and origin scheme the transport selector
// decides from. OriginScheme is the scheme the hosting context itself was
// served over, not the scheme of the upstream service.
type Routing struct {
	// UpstreamBaseURL is the upstream service's native endpoint, e.g.
	// http://api.weatherstack.com. The upstream is reachable over plain
	// HTTP only.
	UpstreamBaseURL string

	// RelayBaseURL is the same-origin relay endpoint used when the origin
	// is secure.
	RelayBaseURL string

	// OriginScheme is "http" or "https".
	OriginScheme string
}

// secure reports whether the hosting context was loaded over an encrypted
// transport, in which case outbound requests to the plain-HTTP upstream
// would be refused and must go through the relay.
func (r Routing) secure() bool {
	return strings.EqualFold(strings.TrimSpace(r.OriginScheme), "https")
}

// BuildRequest produces the request descriptor for one invocation. The
// route follows the origin scheme alone; the mode never influences it.
// On the direct route the mode selects the upstream path segment, on the
// relayed route it is passed as an explicit parameter because the relay
// cannot infer it from its own path. A historical request without a date
// is forced to live mode.
func BuildRequest(r Routing, key string, mode domain.RequestMode, date, credential string) ports.RequestSpec {
	if mode == domain.ModeHistorical && date == "" {
		mode = domain.ModeLive
	}

	params := url.Values{}
	params.Set("access_key", credential)
	params.Set("query", key)

	if mode == domain.ModeHistorical {
		params.Set("historical_date", date)
		params.Set("hourly", historicalHourly)
		params.Set("interval", historicalInterval)
	}

	if r.secure() {
		params.Set("mode", mode.String())

		return ports.RequestSpec{
			URL:   fmt.Sprintf("%s?%s", r.RelayBaseURL, params.Encode()),
			Route: domain.RouteRelayed,
			Mode:  mode,
			Query: key,
		}
	}

	return ports.RequestSpec{
		URL:   fmt.Sprintf("%s/%s?%s", strings.TrimSuffix(r.UpstreamBaseURL, "/"), mode, params.Encode()),
		Route: domain.RouteDirect,
		Mode:  mode,
		Query: key,
	}
}
