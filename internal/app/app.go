// Package app provides application-level coordination for the relay
// server: configuration, routing, and lifecycle management.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/sean-rowe/weatherdesk/internal/adapters/primary/relay"
	"github.com/sean-rowe/weatherdesk/internal/config"
	"github.com/sean-rowe/weatherdesk/internal/middleware"
	"github.com/sean-rowe/weatherdesk/internal/version"
)

// App manages the relay server lifecycle.
type App struct {
	cfg    *config.Config
	server *http.Server
	logger *zap.Logger
}

// New creates a new application instance.
func New() (*App, error) {
	logger, err := zap.NewProduction()

	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return &App{
		cfg:    config.Load(),
		logger: logger,
	}, nil
}

// Start builds the router and starts the HTTP server.
func (a *App) Start() error {
	httpClient := &http.Client{
		Timeout: a.cfg.Upstream.HTTPTimeout,
	}

	relayHandler := relay.NewHandler(a.cfg.Upstream.BaseURL, httpClient, a.logger)
	router := a.setupRouter(relayHandler)

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}

	go func() {
		a.logger.Info("starting relay server",
			zap.String("port", a.cfg.Server.Port),
			zap.String("upstream", a.cfg.Upstream.BaseURL))

		if err := a.server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				a.logger.Fatal("failed to start server", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop gracefully shuts the server down.
func (a *App) Stop() {
	a.logger.Info("shutting down relay server...")

	if a.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("failed to shutdown server gracefully", zap.Error(err))
		}
	}

	if err := a.logger.Sync(); err != nil {
		// Sync can fail on some platforms, ignore the error
		_ = err
	}
}

// WaitForShutdown blocks until the server receives a shutdown signal.
func (a *App) WaitForShutdown() {
	quit := make(chan os.Signal, 1)

	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	a.logger.Info("shutdown signal received")
}

// setupRouter configures routes and middleware.
func (a *App) setupRouter(relayHandler *relay.Handler) http.Handler {
	router := mux.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logging(a.logger))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")

	router.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(version.Get()); err != nil {
			a.logger.Error("failed to encode version info", zap.Error(err))
		}
	}).Methods("GET")

	router.HandleFunc("/api/relay", relayHandler.Forward).Methods("GET", "OPTIONS")

	return router
}
