// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package status

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	httptypes "github.com/canonical/practice-service/internal/http/types"
	"github.com/canonical/practice-service/internal/logging"
	"github.com/canonical/practice-service/internal/monitoring"
	"github.com/canonical/practice-service/internal/tracing"
	"github.com/canonical/practice-service/internal/version"
)

const readinessTimeout = 2 * time.Second

type Status struct {
	Status string `json:"status"`
}

type BuildInfo struct {
	Version string `json:"version"`
	Name    string `json:"name"`
}

type API struct {
	db PingerInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(mux *chi.Mux) {
	mux.Get("/api/v0/status", a.alive)
	mux.Get("/api/v0/ready", a.ready)
	mux.Get("/api/v0/version", a.version)
}

func (a *API) alive(w http.ResponseWriter, r *http.Request) {
	_, span := a.tracer.Start(r.Context(), "status.API.alive")
	defer span.End()

	httptypes.WriteSuccess(w, http.StatusOK, "alive", Status{Status: "ok"}, a.logger)
}

// ready reports whether the credential store answers.
// Every protected request depends on it.
func (a *API) ready(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "status.API.ready")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()

	tags := map[string]string{"component": "database"}

	if err := a.db.Ping(ctx); err != nil {
		a.logger.Warnf("database not reachable: %v", err)
		_ = a.monitor.SetDependencyAvailability(tags, 0)

		if err := httptypes.WriteJSON(w, http.StatusServiceUnavailable, httptypes.Response{
			Status:  http.StatusServiceUnavailable,
			Message: "not ready",
			Data:    Status{Status: "database unreachable"},
		}); err != nil {
			a.logger.Errorf("failed to encode readiness response: %v", err)
		}
		return
	}

	_ = a.monitor.SetDependencyAvailability(tags, 1)
	httptypes.WriteSuccess(w, http.StatusOK, "ready", Status{Status: "ok"}, a.logger)
}

func (a *API) version(w http.ResponseWriter, r *http.Request) {
	_, span := a.tracer.Start(r.Context(), "status.API.version")
	defer span.End()

	httptypes.WriteSuccess(w, http.StatusOK, "version", BuildInfo{Version: version.Version, Name: a.monitor.GetService()}, a.logger)
}

func NewAPI(db PingerInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	a := new(API)

	a.db = db

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
