// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package capability

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	httptypes "github.com/canonical/practice-service/internal/http/types"
	"github.com/canonical/practice-service/internal/logging"
	"github.com/canonical/practice-service/internal/monitoring"
	"github.com/canonical/practice-service/internal/tracing"
	"github.com/canonical/practice-service/internal/types"
	"github.com/canonical/practice-service/pkg/authentication"
)

type Grants struct {
	Tier         types.AccountTier  `json:"tier"`
	Capabilities []types.Capability `json:"capabilities"`
}

type Decision struct {
	Capability types.Capability `json:"capability"`
	Allowed    bool             `json:"allowed"`
}

// API lets clients query the grant table for their own tier.
// Its routes must be authenticated.
type API struct {
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(r chi.Router) {
	r.Get("/api/v0/capabilities", a.listGrants)
	r.Get("/api/v0/capabilities/{capability}", a.probe)
}

func (a *API) listGrants(w http.ResponseWriter, r *http.Request) {
	_, span := a.tracer.Start(r.Context(), "capability.API.listGrants")
	defer span.End()

	claims, ok := authentication.GetClaims(r.Context())
	if !ok {
		httptypes.WriteError(w, errors.New("capability probe reached without verified claims"), a.logger)
		return
	}

	httptypes.WriteSuccess(w, http.StatusOK, "capabilities", Grants{Tier: claims.Tier, Capabilities: Granted(claims.Tier)}, a.logger)
}

func (a *API) probe(w http.ResponseWriter, r *http.Request) {
	_, span := a.tracer.Start(r.Context(), "capability.API.probe")
	defer span.End()

	claims, ok := authentication.GetClaims(r.Context())
	if !ok {
		httptypes.WriteError(w, errors.New("capability probe reached without verified claims"), a.logger)
		return
	}

	requested := types.Capability(chi.URLParam(r, "capability"))

	if err := Authorize(claims.Tier, requested); err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteSuccess(w, http.StatusOK, "capability granted", Decision{Capability: requested, Allowed: true}, a.logger)
}

func NewAPI(tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	return &API{
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}
