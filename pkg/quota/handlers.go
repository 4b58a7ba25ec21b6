// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package quota

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	httptypes "github.com/canonical/practice-service/internal/http/types"
	"github.com/canonical/practice-service/internal/logging"
	"github.com/canonical/practice-service/internal/monitoring"
	"github.com/canonical/practice-service/internal/tracing"
	"github.com/canonical/practice-service/pkg/authentication"
)

type API struct {
	enforcer EnforcerInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(r chi.Router) {
	r.Get("/api/v0/usage", a.usage)
}

func (a *API) usage(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "quota.API.usage")
	defer span.End()

	claims, ok := authentication.GetClaims(ctx)
	if !ok {
		httptypes.WriteError(w, errors.New("usage reached without verified claims"), a.logger)
		return
	}

	usage, err := a.enforcer.Usage(ctx, claims.TenantID, claims.Tier)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteSuccess(w, http.StatusOK, "usage", usage, a.logger)
}

func NewAPI(enforcer EnforcerInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	return &API{
		enforcer: enforcer,
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}
