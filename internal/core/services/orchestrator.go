package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/sean-rowe/weatherdesk/internal/core/domain"
	"github.com/sean-rowe/weatherdesk/internal/core/ports"
)

const (
	// credentialKey is the storage key holding the access credential.
	credentialKey = "credential"

	// fallbackCredential is used when no credential has ever been stored.
	fallbackCredential = "5d066958a1454e9c86c1eb57f0d55e91"

	// retryNotice is announced to the caller when a tier rejection
	// triggers the automatic downgrade.
	retryNotice = "historical data is not available on this plan; retrying with current conditions"
)

// Options tune the orchestrator's timers. Zero values fall back to the
// defaults below.
type Options struct {
	// RetryDelay is the pause before the single automatic retry after a
	// tier rejection.
	RetryDelay time.Duration

	// RefreshInterval is the period of the refresh scheduler.
	RefreshInterval time.Duration

	// ReportTTL bounds how long a successful report is served from memory
	// without a new upstream call.
	ReportTTL time.Duration
}

func (o Options) withDefaults() Options {
	if o.RetryDelay <= 0 {
		o.RetryDelay = 2 * time.Second
	}

	if o.RefreshInterval <= 0 {
		o.RefreshInterval = 5 * time.Minute
	}

	if o.ReportTTL <= 0 {
		o.ReportTTL = time.Minute
	}

	return o
}

// Orchestrator drives the full pipeline: normalize the query, select the
// transport, execute, classify, and either publish the report, schedule
// the single downgrade retry, or surface a terminal failure. It also owns
// the recency cache and the refresh scheduler.
//
// Overlapping invocations are fenced with a generation counter: each
// invocation captures the generation on entry and its result is discarded
// if a newer invocation started before it settled.
type Orchestrator struct {
	transport ports.Transport
	routing   Routing
	store     ports.KeyValueStore
	locator   ports.Locator
	listener  ports.Listener
	recents   *RecencyCache
	reports   *gocache.Cache
	logger    *zap.Logger
	opts      Options

	mu         sync.Mutex
	credential string
	generation uint64
	lastQuery  string
	lastReport *domain.WeatherReport
	retryTimer *time.Timer
	sched      *gocron.Scheduler
	refreshJob *gocron.Job
}

// NewOrchestrator wires the pipeline. The listener must not be nil; the
// locator may be nil when geolocation is unavailable.
func NewOrchestrator(
	transport ports.Transport,
	routing Routing,
	store ports.KeyValueStore,
	locator ports.Locator,
	listener ports.Listener,
	logger *zap.Logger,
	opts Options,
) *Orchestrator {
	opts = opts.withDefaults()

	return &Orchestrator{
		transport:  transport,
		routing:    routing,
		store:      store,
		locator:    locator,
		listener:   listener,
		recents:    NewRecencyCache(store, logger),
		reports:    gocache.New(opts.ReportTTL, 2*opts.ReportTTL),
		logger:     logger,
		opts:       opts,
		credential: fallbackCredential,
		sched:      gocron.NewScheduler(time.UTC),
	}
}

// LoadState restores the persisted credential and recency list. Absent
// keys keep the built-in fallback credential and an empty list.
func (o *Orchestrator) LoadState(ctx context.Context) error {
	stored, err := o.store.Get(ctx, credentialKey)

	switch {
	case errors.Is(err, ports.ErrKeyNotFound):
		o.logger.Info("no stored credential, using built-in fallback")
	case err != nil:
		return fmt.Errorf("failed to read credential: %w", err)
	default:
		if trimmed := strings.TrimSpace(stored); trimmed != "" {
			o.mu.Lock()
			o.credential = trimmed
			o.mu.Unlock()
		}
	}

	return o.recents.Load(ctx)
}

// SetCredential stores a new access credential. The value is trimmed and
// must be non-empty; no further validation happens client-side.
func (o *Orchestrator) SetCredential(ctx context.Context, credential string) error {
	trimmed := strings.TrimSpace(credential)

	if trimmed == "" {
		return &domain.WeatherError{
			Code:    domain.ErrCodeInvalidCredential,
			Message: "credential must not be empty",
		}
	}

	if err := o.store.Set(ctx, credentialKey, trimmed); err != nil {
		return fmt.Errorf("failed to persist credential: %w", err)
	}

	o.mu.Lock()
	o.credential = trimmed
	o.mu.Unlock()

	return nil
}

// Recent returns the recency list, most recent first.
func (o *Orchestrator) Recent() []string {
	return o.recents.Names()
}

// LastReport returns the most recently settled successful report, or nil.
func (o *Orchestrator) LastReport() *domain.WeatherReport {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.lastReport
}

// Submit runs the pipeline for a raw query. The outcome reaches the
// listener; Submit itself only fails fast on an empty query. A new
// submission supersedes any in-flight invocation and cancels a pending
// automatic retry.
func (o *Orchestrator) Submit(ctx context.Context, raw string, mode domain.RequestMode, date string) {
	key, err := domain.NormalizeQuery(raw)

	if err != nil {
		o.listener.OnFailure(err)

		return
	}

	o.mu.Lock()
	o.generation++
	gen := o.generation
	o.cancelRetryLocked()
	credential := o.credential
	o.mu.Unlock()

	o.run(ctx, gen, key, mode, date, credential, false)
}

// SubmitLocation resolves the caller's coordinates and submits them as
// the location query.
func (o *Orchestrator) SubmitLocation(ctx context.Context) {
	if o.locator == nil {
		o.listener.OnFailure(&domain.WeatherError{
			Code:    domain.ErrCodeLocationUnavailable,
			Message: "no geolocation provider configured",
		})

		return
	}

	coords, err := o.locator.Locate(ctx)

	if err != nil {
		o.listener.OnFailure(&domain.WeatherError{
			Code:    domain.ErrCodeLocationUnavailable,
			Message: "could not determine current location",
			Cause:   err,
		})

		return
	}

	o.Submit(ctx, coords.Query(), domain.ModeLive, "")
}

// run executes one pipeline pass under the captured generation.
func (o *Orchestrator) run(ctx context.Context, gen uint64, key string, mode domain.RequestMode, date, credential string, isRetry bool) {
	invocationID := uuid.NewString()
	spec := BuildRequest(o.routing, key, mode, date, credential)

	if cached, found := o.reports.Get(reportKey(spec)); found {
		o.logger.Debug("serving report from memory",
			zap.String("invocation_id", invocationID),
			zap.String("query", key))
		o.settle(ctx, gen, spec, domain.Success{Report: cached.(*domain.WeatherReport)}, isRetry)

		return
	}

	o.logger.Info("dispatching weather request",
		zap.String("invocation_id", invocationID),
		zap.String("query", key),
		zap.Stringer("mode", spec.Mode),
		zap.Stringer("route", spec.Route),
		zap.Bool("retry", isRetry))

	resp, err := o.transport.Do(ctx, spec)
	outcome := Classify(resp, err, spec.Route, spec.Mode)

	o.settle(ctx, gen, spec, outcome, isRetry)
}

// settle applies one classified outcome to shared state and notifies the
// listener. A result whose generation has been superseded is discarded
// without touching state.
func (o *Orchestrator) settle(ctx context.Context, gen uint64, spec ports.RequestSpec, outcome domain.Outcome, isRetry bool) {
	o.mu.Lock()

	if gen != o.generation {
		o.mu.Unlock()
		o.logger.Debug("discarding superseded result", zap.String("query", spec.Query))

		return
	}

	switch v := outcome.(type) {
	case domain.Success:
		o.lastQuery = v.Report.Location.Name
		o.lastReport = v.Report
		o.mu.Unlock()

		o.reports.SetDefault(reportKey(spec), v.Report)

		if err := o.recents.Add(ctx, v.Report.Location.Name); err != nil {
			o.logger.Warn("failed to update recent locations", zap.Error(err))
		}

		o.listener.OnReport(v.Report)

	case domain.Recoverable:
		if isRetry {
			// The retry already runs in live mode; a second tier
			// rejection has nowhere left to downgrade to.
			o.lastReport = nil
			o.disableRefreshLocked()
			o.mu.Unlock()

			o.listener.OnFailure(&domain.WeatherError{
				Code:    domain.ErrCodeUpstreamError,
				Message: v.Reason,
			})

			return
		}

		key := spec.Query
		scheduledGen := gen
		o.retryTimer = time.AfterFunc(o.opts.RetryDelay, func() {
			o.fireRetry(scheduledGen, key)
		})
		o.mu.Unlock()

		o.logger.Info("tier rejection, scheduling downgrade retry",
			zap.String("query", key),
			zap.Duration("delay", o.opts.RetryDelay))
		o.listener.OnNotice(retryNotice)

	case domain.Terminal:
		// A failed classification clears the held report so stale and
		// new state are never mixed.
		o.lastReport = nil
		o.disableRefreshLocked()
		o.mu.Unlock()

		o.listener.OnFailure(v.Err)
	}
}

// fireRetry re-invokes the pipeline in live mode after the downgrade
// delay. The timer's Stop is racy once it has popped, so the retry
// re-checks the generation it was scheduled under: if a newer submission
// arrived in the window, the retry yields instead of becoming the newest
// invocation itself.
func (o *Orchestrator) fireRetry(scheduledGen uint64, key string) {
	o.mu.Lock()

	if o.generation != scheduledGen {
		o.retryTimer = nil
		o.mu.Unlock()
		o.logger.Debug("skipping superseded downgrade retry", zap.String("query", key))

		return
	}

	o.generation++
	gen := o.generation
	o.retryTimer = nil
	credential := o.credential
	o.mu.Unlock()

	o.run(context.Background(), gen, key, domain.ModeLive, "", credential, true)
}

// cancelRetryLocked stops a pending automatic retry. Callers hold o.mu.
func (o *Orchestrator) cancelRetryLocked() {
	if o.retryTimer == nil {
		return
	}

	o.retryTimer.Stop()
	o.retryTimer = nil
	o.logger.Debug("cancelled pending downgrade retry")
}

// EnableRefresh starts re-issuing the last successful query on the
// refresh interval. Enabling while already enabled is a no-op, so only
// one timer ever exists.
func (o *Orchestrator) EnableRefresh() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.refreshJob != nil {
		return
	}

	if o.lastReport == nil {
		o.logger.Debug("refresh not enabled, no report to refresh")

		return
	}

	job, err := o.sched.Every(o.opts.RefreshInterval).Do(o.refreshTick)

	if err != nil {
		o.logger.Error("failed to schedule refresh", zap.Error(err))

		return
	}

	o.refreshJob = job
	o.sched.StartAsync()
	o.logger.Info("auto-refresh enabled", zap.Duration("interval", o.opts.RefreshInterval))
}

// DisableRefresh cancels the refresh timer if one is active.
func (o *Orchestrator) DisableRefresh() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.disableRefreshLocked()
}

func (o *Orchestrator) disableRefreshLocked() {
	if o.refreshJob == nil {
		return
	}

	o.sched.RemoveByReference(o.refreshJob)
	o.refreshJob = nil
	o.logger.Info("auto-refresh disabled")
}

// refreshTick re-issues the pipeline for the last resolved location.
func (o *Orchestrator) refreshTick() {
	o.mu.Lock()
	query := o.lastQuery
	present := o.lastReport != nil
	o.mu.Unlock()

	if !present || query == "" {
		return
	}

	o.Submit(context.Background(), query, domain.ModeLive, "")
}

// refreshJobCount reports how many refresh jobs are scheduled.
func (o *Orchestrator) refreshJobCount() int {
	return len(o.sched.Jobs())
}

// Close tears down the background timers.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.cancelRetryLocked()
	o.refreshJob = nil
	o.mu.Unlock()

	o.sched.Stop()
}

// reportKey builds the memoization key for a request descriptor.
func reportKey(spec ports.RequestSpec) string {
	return fmt.Sprintf("%s|%s", spec.Mode, spec.URL)
}
