// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	middleware "github.com/go-chi/chi/v5/middleware"

	"github.com/canonical/practice-service/internal/db"
	"github.com/canonical/practice-service/internal/logging"
	"github.com/canonical/practice-service/internal/monitoring"
	"github.com/canonical/practice-service/internal/tracing"
	"github.com/canonical/practice-service/internal/types"
	"github.com/canonical/practice-service/pkg/audit"
	"github.com/canonical/practice-service/pkg/authentication"
	"github.com/canonical/practice-service/pkg/capability"
	"github.com/canonical/practice-service/pkg/metrics"
	"github.com/canonical/practice-service/pkg/pipeline"
	"github.com/canonical/practice-service/pkg/principal"
	"github.com/canonical/practice-service/pkg/quota"
	"github.com/canonical/practice-service/pkg/status"
	"github.com/canonical/practice-service/pkg/tenant"
)

const apiPrefix = "/api/v0"

// Module is a business module served behind the request pipeline.
// Quota and AuditResource are optional. An empty value skips the step.
type Module struct {
	// Path is mounted under /api/v0, for example "/clients".
	Path          string
	Capability    types.Capability
	Quota         types.ResourceClass
	AuditResource string
	Handler       http.Handler
}

type Dependencies struct {
	Pipeline *pipeline.Pipeline
	DB       db.DBClientInterface

	Auth       authentication.ServiceInterface
	Tenants    tenant.ServiceInterface
	Principals principal.ServiceInterface
	Quota      quota.EnforcerInterface
	Recorder   audit.RecorderInterface
	AuditLog   audit.StorageInterface

	CORSAllowedOrigins []string
}

func NewRouter(
	deps Dependencies,
	modules []Module,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) http.Handler {
	router := chi.NewMux()

	origins := deps.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	middlewares := make(chi.Middlewares, 0)
	middlewares = append(
		middlewares,
		middleware.RequestID,
		middleware.Recoverer,
		monitoring.NewMiddleware(monitor, logger).ResponseTime(),
		middlewareCORS(origins),
	)

	router.Use(middlewares...)

	metrics.NewAPI(logger).RegisterEndpoints(router)
	status.NewAPI(deps.DB, tracer, monitor, logger).RegisterEndpoints(router)
	authentication.NewAPI(deps.Auth, logger).RegisterEndpoints(router)

	principalAPI := principal.NewAPI(deps.Principals, tracer, monitor, logger)
	auditAPI := audit.NewAPI(deps.AuditLog, tracer, monitor, logger)
	trail := audit.NewMiddleware(deps.Recorder, tracer, monitor, logger)
	guard := quota.NewMiddleware(deps.Quota, tracer, monitor, logger)

	router.Group(func(r chi.Router) {
		r.Use(deps.Pipeline.Authenticated())

		principalAPI.RegisterSelfEndpoints(r)
		capability.NewAPI(tracer, monitor, logger).RegisterEndpoints(r)
		quota.NewAPI(deps.Quota, tracer, monitor, logger).RegisterEndpoints(r)
	})

	router.Group(func(r chi.Router) {
		r.Use(deps.Pipeline.Protect(types.CapabilityUserManagement))
		r.Use(db.TransactionMiddleware(deps.DB, logger))

		principalAPI.RegisterEndpoints(r)
	})

	router.Group(func(r chi.Router) {
		r.Use(deps.Pipeline.Protect(types.CapabilityAuditLog))

		auditAPI.RegisterEndpoints(r)
	})

	for _, m := range modules {
		if m.Handler == nil || m.Path == "" {
			logger.Errorf("skipping module without handler or path: %+v", m)
			continue
		}

		router.Route(apiPrefix+m.Path, func(r chi.Router) {
			r.Use(deps.Pipeline.Protect(m.Capability))
			if m.Quota != "" {
				r.Use(guard.Guard(m.Quota))
			}
			if m.AuditResource != "" {
				r.Use(trail.Trail(m.AuditResource))
			}

			r.Mount("/", m.Handler)
		})
	}

	router.Route(apiPrefix+"/admin", func(r chi.Router) {
		r.Use(deps.Pipeline.Admin())
		r.Use(db.TransactionMiddleware(deps.DB, logger))

		tenant.NewAPI(deps.Tenants, tracer, monitor, logger).RegisterEndpoints(r)
		principalAPI.RegisterAdminEndpoints(r)
		auditAPI.RegisterAdminEndpoints(r)
	})

	return tracing.NewMiddleware(monitor, logger).OpenTelemetry(router)
}
