// Package relay implements the same-origin pass-through that bridges a
// secure-origin client to the upstream's plain-HTTP endpoint. The relay
// validates the request, forwards it to the upstream operation matching
// the requested mode, and mirrors the upstream's status and body
// verbatim. It holds no state and no retry logic; classification and
// retries stay client-side.
package relay

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler forwards validated relay requests upstream.
type Handler struct {
	upstreamBase string
	httpClient   *http.Client
	validate     *validator.Validate
	logger       *zap.Logger
}

// NewHandler creates a relay handler targeting upstreamBase (the
// upstream's native plain-HTTP endpoint).
func NewHandler(upstreamBase string, httpClient *http.Client, logger *zap.Logger) *Handler {
	return &Handler{
		upstreamBase: strings.TrimSuffix(upstreamBase, "/"),
		httpClient:   httpClient,
		validate:     validator.New(),
		logger:       logger,
	}
}

// relayParams are the query parameters the relay accepts. The mode is
// explicit because the relay cannot infer it from its own URL path.
type relayParams struct {
	AccessKey string `validate:"required"`
	Query     string `validate:"required"`
	Mode      string `validate:"omitempty,oneof=current historical"`
	Date      string `validate:"omitempty,datetime=2006-01-02"`
	Hourly    string `validate:"omitempty,numeric"`
	Interval  string `validate:"omitempty,numeric"`
}

// errorBody mirrors the upstream failure envelope so relay-originated
// errors classify the same way upstream ones do.
type errorBody struct {
	Success bool `json:"success"`
	Error   struct {
		Code int    `json:"code"`
		Type string `json:"type"`
		Info string `json:"info"`
	} `json:"error"`
}

// Forward handles GET requests: validate, forward, mirror.
//
// Response codes:
//   - 400: access_key or query missing, or malformed optional parameters
//   - 502: upstream could not be reached
//   - otherwise: the upstream's own status and body, unmodified
func (h *Handler) Forward(w http.ResponseWriter, r *http.Request) {
	setCORS(w)

	q := r.URL.Query()
	params := relayParams{
		AccessKey: q.Get("access_key"),
		Query:     q.Get("query"),
		Mode:      q.Get("mode"),
		Date:      q.Get("historical_date"),
		Hourly:    q.Get("hourly"),
		Interval:  q.Get("interval"),
	}

	if err := h.validate.Struct(params); err != nil {
		h.respondError(w, http.StatusBadRequest, 601, "missing_or_invalid_parameters",
			"access_key and query are required; optional parameters must be well-formed")

		return
	}

	mode := params.Mode

	if mode == "" {
		mode = "current"
	}

	upstream := url.Values{}
	upstream.Set("access_key", params.AccessKey)
	upstream.Set("query", params.Query)

	if mode == "historical" && params.Date != "" {
		upstream.Set("historical_date", params.Date)

		if params.Hourly != "" {
			upstream.Set("hourly", params.Hourly)
		}

		if params.Interval != "" {
			upstream.Set("interval", params.Interval)
		}
	}

	target := fmt.Sprintf("%s/%s?%s", h.upstreamBase, mode, upstream.Encode())
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)

	if err != nil {
		h.respondError(w, http.StatusInternalServerError, 500, "relay_internal_error", err.Error())

		return
	}

	resp, err := h.httpClient.Do(req)

	if err != nil {
		h.logger.Error("upstream unreachable from relay", zap.Error(err))
		h.respondError(w, http.StatusBadGateway, 502, "relay_upstream_unreachable", err.Error())

		return
	}

	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			h.logger.Error("failed to close upstream body", zap.Error(err))
		}
	}(resp.Body)

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}

	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		h.logger.Error("failed to mirror upstream body", zap.Error(err))
	}
}

// respondError writes an upstream-shaped failure envelope.
func (h *Handler) respondError(w http.ResponseWriter, status, code int, errType, info string) {
	body := errorBody{}
	body.Error.Code = code
	body.Error.Type = errType
	body.Error.Info = info

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode error response", zap.Error(err))
	}
}

// setCORS adds the permissive cross-origin headers the browser client
// needs on the relayed route.
func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}
