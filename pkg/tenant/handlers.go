// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	httptypes "github.com/canonical/practice-service/internal/http/types"
	"github.com/canonical/practice-service/internal/logging"
	"github.com/canonical/practice-service/internal/monitoring"
	"github.com/canonical/practice-service/internal/storage"
	"github.com/canonical/practice-service/internal/tracing"
	"github.com/canonical/practice-service/internal/types"
)

type LimitsRequest struct {
	MaxSimpleAccounts     int64 `json:"max_simple_accounts" validate:"limit"`
	MaxCompositeAccounts  int64 `json:"max_composite_accounts" validate:"limit"`
	MaxManagerialAccounts int64 `json:"max_managerial_accounts" validate:"limit"`
}

func (l *LimitsRequest) toLimits() types.TierLimits {
	if l == nil {
		return types.TierLimits{
			MaxSimpleAccounts:     types.Unlimited,
			MaxCompositeAccounts:  types.Unlimited,
			MaxManagerialAccounts: types.Unlimited,
		}
	}

	return types.TierLimits{
		MaxSimpleAccounts:     l.MaxSimpleAccounts,
		MaxCompositeAccounts:  l.MaxCompositeAccounts,
		MaxManagerialAccounts: l.MaxManagerialAccounts,
	}
}

type CreateTenantRequest struct {
	Name             string         `json:"name" validate:"required,max=255"`
	SubscriptionTier string         `json:"subscription_tier" validate:"max=64"`
	ExpiresAt        *time.Time     `json:"expires_at,omitempty"`
	Limits           *LimitsRequest `json:"limits,omitempty"`
}

// UpdateTenantRequest only carries the fields to change.
// Setting clear_expiry removes the expiry date.
type UpdateTenantRequest struct {
	Name             *string        `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	SubscriptionTier *string        `json:"subscription_tier,omitempty" validate:"omitempty,max=64"`
	Active           *bool          `json:"active,omitempty"`
	ExpiresAt        *time.Time     `json:"expires_at,omitempty" validate:"excluded_with=ClearExpiry"`
	ClearExpiry      bool           `json:"clear_expiry,omitempty"`
	Limits           *LimitsRequest `json:"limits,omitempty"`
}

func (r *UpdateTenantRequest) apply(t *types.Tenant) []string {
	paths := make([]string, 0)

	if r.Name != nil {
		t.Name = *r.Name
		paths = append(paths, "name")
	}
	if r.SubscriptionTier != nil {
		t.SubscriptionTier = *r.SubscriptionTier
		paths = append(paths, "subscription_tier")
	}
	if r.Active != nil {
		t.Active = *r.Active
		paths = append(paths, "active")
	}
	if r.ExpiresAt != nil || r.ClearExpiry {
		t.ExpiresAt = r.ExpiresAt
		paths = append(paths, "expires_at")
	}
	if r.Limits != nil {
		t.Limits = r.Limits.toLimits()
		paths = append(paths, "limits")
	}

	return paths
}

// API serves the tenant administration endpoints.
// Callers mount it behind the admin key check.
type API struct {
	service ServiceInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(r chi.Router) {
	r.Get("/tenants", a.listTenants)
	r.Post("/tenants", a.createTenant)
	r.Get("/tenants/{tenant_id}", a.getTenant)
	r.Patch("/tenants/{tenant_id}", a.updateTenant)
}

func (a *API) listTenants(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.listTenants")
	defer span.End()

	tenants, err := a.service.ListTenants(ctx)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteSuccess(w, http.StatusOK, "tenants", tenants, a.logger)
}

func (a *API) createTenant(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.createTenant")
	defer span.End()

	var req CreateTenantRequest
	if err := httptypes.DecodeJSON(r, &req); err != nil {
		httptypes.WriteBadRequest(w, err.Error(), a.logger)
		return
	}

	created, err := a.service.CreateTenant(ctx, &types.Tenant{
		Name:             req.Name,
		SubscriptionTier: req.SubscriptionTier,
		Active:           true,
		ExpiresAt:        req.ExpiresAt,
		Limits:           req.Limits.toLimits(),
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			httptypes.WriteConflict(w, "tenant already exists", a.logger)
			return
		}
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteSuccess(w, http.StatusCreated, "tenant created", created, a.logger)
}

func (a *API) getTenant(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.getTenant")
	defer span.End()

	t, err := a.service.GetTenant(ctx, chi.URLParam(r, "tenant_id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httptypes.WriteNotFound(w, "tenant not found", a.logger)
			return
		}
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteSuccess(w, http.StatusOK, "tenant", t, a.logger)
}

func (a *API) updateTenant(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.updateTenant")
	defer span.End()

	var req UpdateTenantRequest
	if err := httptypes.DecodeJSON(r, &req); err != nil {
		httptypes.WriteBadRequest(w, err.Error(), a.logger)
		return
	}

	t := &types.Tenant{ID: chi.URLParam(r, "tenant_id")}

	paths := req.apply(t)
	if len(paths) == 0 {
		httptypes.WriteBadRequest(w, "no fields to update", a.logger)
		return
	}

	updated, err := a.service.UpdateTenant(ctx, t, paths)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httptypes.WriteNotFound(w, "tenant not found", a.logger)
			return
		}
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteSuccess(w, http.StatusOK, "tenant updated", updated, a.logger)
}

func NewAPI(service ServiceInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	return &API{
		service: service,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}
