// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package quota

import (
	"errors"
	"net/http"

	"github.com/canonical/practice-service/internal/denial"
	httptypes "github.com/canonical/practice-service/internal/http/types"
	"github.com/canonical/practice-service/internal/logging"
	"github.com/canonical/practice-service/internal/monitoring"
	"github.com/canonical/practice-service/internal/tracing"
	"github.com/canonical/practice-service/internal/types"
	"github.com/canonical/practice-service/pkg/authentication"
)

type Middleware struct {
	enforcer EnforcerInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Guard checks the quota of class before creation requests (POST) reach the handler.
func (m *Middleware) Guard(class types.ResourceClass) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ctx, span := m.tracer.Start(r.Context(), "quota.Middleware.Guard")
			defer span.End()

			claims, ok := authentication.GetClaims(ctx)
			if !ok {
				httptypes.WriteError(w, errors.New("quota guard reached without verified claims"), m.logger)
				return
			}

			if err := m.enforcer.CheckQuota(ctx, claims.TenantID, claims.Tier, class); err != nil {
				if kind, isDenial := denial.KindOf(err); isDenial {
					if cerr := m.monitor.IncDenialCounter(map[string]string{"kind": string(kind)}); cerr != nil {
						m.logger.Debugf("failed to count denial: %v", cerr)
					}
				}
				httptypes.WriteError(w, err, m.logger)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func NewMiddleware(enforcer EnforcerInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Middleware {
	return &Middleware{
		enforcer: enforcer,
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}
