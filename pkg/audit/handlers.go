// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package audit

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	httptypes "github.com/canonical/practice-service/internal/http/types"
	"github.com/canonical/practice-service/internal/logging"
	"github.com/canonical/practice-service/internal/monitoring"
	"github.com/canonical/practice-service/internal/tracing"
	"github.com/canonical/practice-service/pkg/authentication"
)

type API struct {
	storage StorageInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// RegisterEndpoints mounts the tenant side trail.
// Callers guard it with the audit_log capability.
func (a *API) RegisterEndpoints(r chi.Router) {
	r.Get("/api/v0/audit", a.listOwnRecords)
}

// RegisterAdminEndpoints mounts the trail of any tenant under the admin tree.
func (a *API) RegisterAdminEndpoints(r chi.Router) {
	r.Get("/tenants/{tenant_id}/audit", a.listTenantRecords)
}

func (a *API) listOwnRecords(w http.ResponseWriter, r *http.Request) {
	claims, ok := authentication.GetClaims(r.Context())
	if !ok {
		httptypes.WriteError(w, errors.New("audit listing reached without verified claims"), a.logger)
		return
	}

	a.list(w, r, claims.TenantID)
}

func (a *API) listTenantRecords(w http.ResponseWriter, r *http.Request) {
	a.list(w, r, chi.URLParam(r, "tenant_id"))
}

func (a *API) list(w http.ResponseWriter, r *http.Request, tenantID string) {
	ctx, span := a.tracer.Start(r.Context(), "audit.API.list")
	defer span.End()

	page, size, err := pagination(r)
	if err != nil {
		httptypes.WriteBadRequest(w, err.Error(), a.logger)
		return
	}

	records, err := a.storage.ListAuditRecords(ctx, tenantID, page, size)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	resp := httptypes.Response{
		Status:  http.StatusOK,
		Message: "audit records",
		Data:    records,
		Meta:    &httptypes.Pagination{Page: page, Size: size},
	}

	if err := httptypes.WriteJSON(w, http.StatusOK, resp); err != nil {
		a.logger.Errorf("failed to encode audit records: %v", err)
	}
}

func pagination(r *http.Request) (int64, int64, error) {
	page, size := int64(1), int64(0)

	if v := r.URL.Query().Get("page"); v != "" {
		p, err := strconv.ParseInt(v, 10, 64)
		if err != nil || p < 1 {
			return 0, 0, errors.New("page must be a positive integer")
		}
		page = p
	}

	if v := r.URL.Query().Get("size"); v != "" {
		s, err := strconv.ParseInt(v, 10, 64)
		if err != nil || s < 1 {
			return 0, 0, errors.New("size must be a positive integer")
		}
		size = s
	}

	return page, size, nil
}

func NewAPI(s StorageInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	return &API{
		storage: s,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}
