package services

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sean-rowe/weatherdesk/internal/core/domain"
	"github.com/sean-rowe/weatherdesk/internal/core/ports"
)

// tierRestrictedCodes are the upstream error codes that mean the calling
// credential's subscription tier lacks access to the requested feature.
// These are the only recoverable failures: the orchestrator downgrades to
// live mode and retries once.
var tierRestrictedCodes = map[int]struct{}{
	603: {}, // historical queries not supported on plan
	607: {}, // bulk queries not supported on plan
	609: {}, // forecast not supported on plan
}

// invalidKeyCode is the upstream's invalid_access_key failure code. The
// upstream reports a bad key with HTTP 200 and this body code, so it is
// mapped to the same credential error as an HTTP 401.
const invalidKeyCode = 101

// envelope mirrors the upstream response body. The success flag is only
// present on failures; its absence means the payload fields are populated.
type envelope struct {
	Success *bool `json:"success"`
	Error   struct {
		Code int    `json:"code"`
		Type string `json:"type"`
		Info string `json:"info"`
	} `json:"error"`
	Location struct {
		Name      string `json:"name"`
		Region    string `json:"region"`
		Country   string `json:"country"`
		LocalTime string `json:"localtime"`
	} `json:"location"`
	Current    *measurement           `json:"current"`
	Historical map[string]measurement `json:"historical"`
}

// measurement mirrors one upstream measurement set.
type measurement struct {
	Temperature         float64  `json:"temperature"`
	FeelsLike           float64  `json:"feelslike"`
	Humidity            float64  `json:"humidity"`
	WindSpeed           float64  `json:"wind_speed"`
	WindDir             string   `json:"wind_dir"`
	WindDegree          int      `json:"wind_degree"`
	Pressure            float64  `json:"pressure"`
	UVIndex             float64  `json:"uv_index"`
	Visibility          float64  `json:"visibility"`
	CloudCover          float64  `json:"cloudcover"`
	Precip              float64  `json:"precip"`
	WeatherDescriptions []string `json:"weather_descriptions"`
	WeatherIcons        []string `json:"weather_icons"`
}

// Classify turns a raw exchange into an Outcome. transportErr is the
// transport-level error when no response arrived at all; resp is the raw
// response otherwise. The route distinguishes the two unreachable
// messages because the likely causes differ: a scheme mismatch on the
// direct route versus a relay misconfiguration on the relayed one.
func Classify(resp *ports.RawResponse, transportErr error, route domain.TransportRoute, mode domain.RequestMode) domain.Outcome {
	if transportErr != nil {
		if route == domain.RouteRelayed {
			return domain.Terminal{Err: &domain.WeatherError{
				Code:    domain.ErrCodeRelayUnreachable,
				Message: "could not reach the relay; check the relay deployment",
				Cause:   transportErr,
			}}
		}

		return domain.Terminal{Err: &domain.WeatherError{
			Code:    domain.ErrCodeUpstreamUnreachable,
			Message: "could not reach the weather service; the upstream endpoint speaks plain HTTP only",
			Cause:   transportErr,
		}}
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return domain.Terminal{
			Err: &domain.WeatherError{
				Code:    domain.ErrCodeInvalidCredential,
				Message: "invalid credential",
			},
			Status: resp.StatusCode,
		}
	}

	var body envelope

	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return domain.Terminal{
			Err: &domain.WeatherError{
				Code:    domain.ErrCodeUpstreamError,
				Message: "malformed upstream response",
				Cause:   err,
			},
			Status: resp.StatusCode,
		}
	}

	if body.Success != nil && !*body.Success {
		if body.Error.Code == invalidKeyCode {
			message := body.Error.Info

			if message == "" {
				message = "invalid credential"
			}

			return domain.Terminal{
				Err: &domain.WeatherError{
					Code:    domain.ErrCodeInvalidCredential,
					Message: message,
				},
				Status: resp.StatusCode,
			}
		}

		if _, tier := tierRestrictedCodes[body.Error.Code]; tier {
			reason := body.Error.Info

			if reason == "" {
				reason = "requested data is not available on the current subscription tier"
			}

			return domain.Recoverable{Reason: reason}
		}

		message := body.Error.Info

		if message == "" {
			message = "the weather service reported an unspecified error"
		}

		return domain.Terminal{
			Err: &domain.WeatherError{
				Code:    domain.ErrCodeUpstreamError,
				Message: message,
			},
			Status: resp.StatusCode,
		}
	}

	return mapReport(&body, mode)
}

// mapReport converts a success envelope into the normalized report. For
// historical responses the measurement set is the single entry of the
// date-keyed mapping.
func mapReport(body *envelope, mode domain.RequestMode) domain.Outcome {
	report := &domain.WeatherReport{
		Location: domain.LocationInfo{
			Name:      body.Location.Name,
			Region:    body.Location.Region,
			Country:   body.Location.Country,
			LocalTime: body.Location.LocalTime,
		},
		Mode:      mode,
		FetchedAt: time.Now().UTC(),
	}

	if mode == domain.ModeHistorical {
		for date, m := range body.Historical {
			report.ObservedDate = date
			report.Measurements = mapMeasurements(&m)

			return domain.Success{Report: report}
		}

		return domain.Terminal{Err: &domain.WeatherError{
			Code:    domain.ErrCodeUpstreamError,
			Message: "historical response carried no dated measurements",
		}}
	}

	if body.Current == nil {
		return domain.Terminal{Err: &domain.WeatherError{
			Code:    domain.ErrCodeUpstreamError,
			Message: "response carried no current measurements",
		}}
	}

	report.Measurements = mapMeasurements(body.Current)

	return domain.Success{Report: report}
}

func mapMeasurements(m *measurement) domain.Measurements {
	out := domain.Measurements{
		Temperature:   m.Temperature,
		FeelsLike:     m.FeelsLike,
		Humidity:      m.Humidity,
		WindSpeed:     m.WindSpeed,
		WindDirection: m.WindDir,
		WindDegree:    m.WindDegree,
		Pressure:      m.Pressure,
		UVIndex:       m.UVIndex,
		Visibility:    m.Visibility,
		CloudCover:    m.CloudCover,
		Precipitation: m.Precip,
	}

	if len(m.WeatherDescriptions) > 0 {
		out.Condition = m.WeatherDescriptions[0]
	}

	if len(m.WeatherIcons) > 0 {
		out.Icon = m.WeatherIcons[0]
	}

	return out
}
