// Command weatherdesk is a terminal consumer for the weather
// orchestrator: it resolves a location query to a weather report,
// printing interim notices while the orchestrator heals tier errors on
// its own.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/sean-rowe/weatherdesk/internal/adapters/secondary/geoip"
	"github.com/sean-rowe/weatherdesk/internal/adapters/secondary/storage"
	"github.com/sean-rowe/weatherdesk/internal/adapters/secondary/upstream"
	"github.com/sean-rowe/weatherdesk/internal/app"
	"github.com/sean-rowe/weatherdesk/internal/config"
	"github.com/sean-rowe/weatherdesk/internal/core/domain"
	"github.com/sean-rowe/weatherdesk/internal/core/ports"
	"github.com/sean-rowe/weatherdesk/internal/core/services"
	"github.com/sean-rowe/weatherdesk/internal/infrastructure/circuitbreaker"
)

func main() {
	var (
		query   = flag.String("q", "", "location query (city name or \"lat,lon\")")
		date    = flag.String("date", "", "historical date (YYYY-MM-DD); empty means current conditions")
		here    = flag.Bool("here", false, "resolve the current location instead of -q")
		watch   = flag.Bool("watch", false, "keep refreshing the report on the configured interval")
		recents = flag.Bool("recent", false, "print recently resolved locations and exit")
	)
	flag.Parse()

	logger, err := zap.NewProduction()

	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	defer func() {
		_ = logger.Sync()
	}()

	cfg := config.Load()
	store := initStore(cfg, logger)

	httpClient := &http.Client{
		Timeout: cfg.Upstream.HTTPTimeout,
	}

	transport := app.NewBreakerTransport(
		upstream.NewClient(httpClient, logger),
		circuitbreaker.New(circuitbreaker.Config{
			Name:        "weather-upstream",
			MaxRequests: 3,
			Interval:    10 * time.Second,
			Timeout:     30 * time.Second,
		}, logger),
	)

	listener := newConsoleListener()

	orchestrator := services.NewOrchestrator(
		transport,
		services.Routing{
			UpstreamBaseURL: cfg.Upstream.BaseURL,
			RelayBaseURL:    cfg.Client.RelayURL,
			OriginScheme:    cfg.Client.OriginScheme,
		},
		store,
		geoip.NewLocator(cfg.GeoIP.BaseURL, httpClient, logger),
		listener,
		logger,
		services.Options{
			RetryDelay:      cfg.Client.RetryDelay,
			RefreshInterval: cfg.Client.RefreshInterval,
			ReportTTL:       cfg.Client.ReportTTL,
		},
	)

	defer orchestrator.Close()

	ctx := context.Background()

	if err := orchestrator.LoadState(ctx); err != nil {
		logger.Warn("failed to load persisted state", zap.Error(err))
	}

	if cfg.Client.AccessKey != "" {
		if err := orchestrator.SetCredential(ctx, cfg.Client.AccessKey); err != nil {
			logger.Warn("failed to store credential", zap.Error(err))
		}
	}

	if *recents {
		for _, name := range orchestrator.Recent() {
			fmt.Println(name)
		}

		return
	}

	mode := domain.ModeLive

	if *date != "" {
		mode = domain.ModeHistorical
	}

	switch {
	case *here:
		orchestrator.SubmitLocation(ctx)
	case *query != "":
		orchestrator.Submit(ctx, *query, mode, *date)
	default:
		fmt.Fprintln(os.Stderr, "usage: weatherdesk -q <location> [-date YYYY-MM-DD] [-watch] | -here | -recent")
		os.Exit(2)
	}

	// The downgrade retry settles asynchronously; wait for a terminal
	// outcome before deciding what to do next.
	if !listener.waitSettled(cfg.Client.RetryDelay + cfg.Upstream.HTTPTimeout) {
		fmt.Fprintln(os.Stderr, "timed out waiting for a weather report")
		os.Exit(1)
	}

	if !*watch {
		return
	}

	orchestrator.EnableRefresh()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	orchestrator.DisableRefresh()
}

// initStore prefers Redis when enabled and reachable, falling back to the
// file-backed store otherwise.
func initStore(cfg *config.Config, logger *zap.Logger) ports.KeyValueStore {
	if !cfg.Redis.Enabled {
		return storage.NewFileStore(cfg.Client.StatePath, logger)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Redis.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unreachable, falling back to file store", zap.Error(err))

		return storage.NewFileStore(cfg.Client.StatePath, logger)
	}

	logger.Info("using Redis state store", zap.String("addr", cfg.Redis.Addr))

	return storage.NewRedisStore(client, logger)
}

// consoleListener renders orchestrator outcomes to stdout/stderr.
type consoleListener struct {
	settled chan struct{}
}

func newConsoleListener() *consoleListener {
	return &consoleListener{
		settled: make(chan struct{}, 1),
	}
}

// signalSettled never blocks: only the initial waitSettled call has a
// receiver, and refresh ticks in watch mode keep delivering reports long
// after it returned.
func (l *consoleListener) signalSettled() {
	select {
	case l.settled <- struct{}{}:
	default:
	}
}

func (l *consoleListener) OnReport(report *domain.WeatherReport) {
	fmt.Printf("%s, %s (%s)\n", report.Location.Name, report.Location.Country, report.Location.LocalTime)

	if report.Mode == domain.ModeHistorical {
		fmt.Printf("  conditions on %s\n", report.ObservedDate)
	}

	m := report.Measurements
	fmt.Printf("  %s, %.0f°C (feels like %.0f°C)\n", m.Condition, m.Temperature, m.FeelsLike)
	fmt.Printf("  humidity %.0f%%  wind %.0f km/h %s  pressure %.0f mb\n",
		m.Humidity, m.WindSpeed, m.WindDirection, m.Pressure)
	fmt.Printf("  uv %.0f  visibility %.0f km  cloud cover %.0f%%  precip %.1f mm\n",
		m.UVIndex, m.Visibility, m.CloudCover, m.Precipitation)

	l.signalSettled()
}

func (l *consoleListener) OnNotice(notice string) {
	fmt.Fprintf(os.Stderr, "notice: %s\n", notice)
}

func (l *consoleListener) OnFailure(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)

	l.signalSettled()
}

// waitSettled blocks until a terminal outcome arrives or the timeout
// elapses.
func (l *consoleListener) waitSettled(timeout time.Duration) bool {
	select {
	case <-l.settled:
		return true
	case <-time.After(timeout):
		return false
	}
}
