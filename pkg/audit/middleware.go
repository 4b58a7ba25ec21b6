// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package audit

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/canonical/practice-service/internal/logging"
	"github.com/canonical/practice-service/internal/monitoring"
	"github.com/canonical/practice-service/internal/tracing"
	"github.com/canonical/practice-service/pkg/authentication"
)

type Middleware struct {
	recorder RecorderInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// Trail records successful mutating requests of an authenticated route as "<METHOD> <route>".
func (m *Middleware) Trail(resourceType string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !mutating(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			if status >= http.StatusBadRequest {
				return
			}

			claims, ok := authentication.GetClaims(r.Context())
			if !ok {
				m.logger.Warnf("not auditing %s %s, no verified principal", r.Method, r.URL.Path)
				return
			}

			route := r.URL.Path
			resourceID := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
				if n := len(rctx.URLParams.Values); n > 0 {
					resourceID = rctx.URLParams.Values[n-1]
				}
			}

			m.recorder.Record(
				r.Context(),
				claims.Subject,
				claims.TenantID,
				fmt.Sprintf("%s %s", r.Method, route),
				resourceType,
				resourceID,
				map[string]any{
					"status":     status,
					"request_id": middleware.GetReqID(r.Context()),
				},
			)
		})
	}
}

func NewMiddleware(recorder RecorderInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Middleware {
	return &Middleware{
		recorder: recorder,
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}
