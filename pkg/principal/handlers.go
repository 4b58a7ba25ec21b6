// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package principal

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	httptypes "github.com/canonical/practice-service/internal/http/types"
	"github.com/canonical/practice-service/internal/logging"
	"github.com/canonical/practice-service/internal/monitoring"
	"github.com/canonical/practice-service/internal/storage"
	"github.com/canonical/practice-service/internal/tracing"
	"github.com/canonical/practice-service/internal/types"
	"github.com/canonical/practice-service/pkg/authentication"
	"github.com/canonical/practice-service/pkg/tenant"
)

type CreatePrincipalRequest struct {
	Email    string `json:"email" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Tier     string `json:"tier" validate:"required,account_tier"`
}

type UpdatePrincipalRequest struct {
	Active *bool   `json:"active,omitempty"`
	Tier   *string `json:"tier,omitempty" validate:"omitempty,account_tier"`
}

func (r *UpdatePrincipalRequest) tier() *types.AccountTier {
	if r.Tier == nil {
		return nil
	}

	tier := types.AccountTier(*r.Tier)
	return &tier
}

type API struct {
	service ServiceInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// RegisterEndpoints mounts the user management routes of a tenant.
// Callers guard them with the user_management capability.
func (a *API) RegisterEndpoints(r chi.Router) {
	r.Get("/api/v0/users", a.listOwn)
	r.Post("/api/v0/users", a.createOwn)
	r.Patch("/api/v0/users/{principal_id}", a.updateOwn)
}

// RegisterSelfEndpoints mounts the routes any authenticated principal may call.
func (a *API) RegisterSelfEndpoints(r chi.Router) {
	r.Get("/api/v0/me", a.me)
}

// RegisterAdminEndpoints mounts principal provisioning under the admin tree.
func (a *API) RegisterAdminEndpoints(r chi.Router) {
	r.Get("/tenants/{tenant_id}/principals", a.listAdmin)
	r.Post("/tenants/{tenant_id}/principals", a.createAdmin)
	r.Patch("/principals/{principal_id}", a.updateAdmin)
}

func (a *API) me(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "principal.API.me")
	defer span.End()

	claims, ok := a.claims(w, r)
	if !ok {
		return
	}

	p, err := a.service.Get(ctx, claims.TenantID, claims.Subject)
	if err != nil {
		a.writeError(w, err)
		return
	}

	data := map[string]any{
		"principal":  p,
		"token_tier": claims.Tier,
	}
	if t, ok := tenant.FromContext(ctx); ok {
		data["tenant"] = t
	}

	httptypes.WriteSuccess(w, http.StatusOK, "current principal", data, a.logger)
}

func (a *API) listOwn(w http.ResponseWriter, r *http.Request) {
	claims, ok := a.claims(w, r)
	if !ok {
		return
	}

	a.list(w, r, claims.TenantID)
}

func (a *API) listAdmin(w http.ResponseWriter, r *http.Request) {
	a.list(w, r, chi.URLParam(r, "tenant_id"))
}

func (a *API) list(w http.ResponseWriter, r *http.Request, tenantID string) {
	ctx, span := a.tracer.Start(r.Context(), "principal.API.list")
	defer span.End()

	principals, err := a.service.List(ctx, tenantID)
	if err != nil {
		a.writeError(w, err)
		return
	}

	httptypes.WriteSuccess(w, http.StatusOK, "principals", principals, a.logger)
}

func (a *API) createOwn(w http.ResponseWriter, r *http.Request) {
	claims, ok := a.claims(w, r)
	if !ok {
		return
	}

	a.create(w, r, claims.TenantID, claims.Subject)
}

func (a *API) createAdmin(w http.ResponseWriter, r *http.Request) {
	a.create(w, r, chi.URLParam(r, "tenant_id"), tenant.AdminActor)
}

func (a *API) create(w http.ResponseWriter, r *http.Request, tenantID, actorID string) {
	ctx, span := a.tracer.Start(r.Context(), "principal.API.create")
	defer span.End()

	var req CreatePrincipalRequest
	if err := httptypes.DecodeJSON(r, &req); err != nil {
		httptypes.WriteBadRequest(w, err.Error(), a.logger)
		return
	}

	created, err := a.service.Create(ctx, tenantID, req.Email, req.Password, types.AccountTier(req.Tier), actorID)
	if err != nil {
		a.writeError(w, err)
		return
	}

	httptypes.WriteSuccess(w, http.StatusCreated, "principal created", created, a.logger)
}

func (a *API) updateOwn(w http.ResponseWriter, r *http.Request) {
	claims, ok := a.claims(w, r)
	if !ok {
		return
	}

	a.update(w, r, claims.TenantID, claims.Subject)
}

func (a *API) updateAdmin(w http.ResponseWriter, r *http.Request) {
	a.update(w, r, "", tenant.AdminActor)
}

func (a *API) update(w http.ResponseWriter, r *http.Request, tenantID, actorID string) {
	ctx, span := a.tracer.Start(r.Context(), "principal.API.update")
	defer span.End()

	var req UpdatePrincipalRequest
	if err := httptypes.DecodeJSON(r, &req); err != nil {
		httptypes.WriteBadRequest(w, err.Error(), a.logger)
		return
	}

	if req.Active == nil && req.Tier == nil {
		httptypes.WriteBadRequest(w, "no fields to update", a.logger)
		return
	}

	updated, err := a.service.Update(ctx, tenantID, chi.URLParam(r, "principal_id"), req.Active, req.tier(), actorID)
	if err != nil {
		a.writeError(w, err)
		return
	}

	httptypes.WriteSuccess(w, http.StatusOK, "principal updated", updated, a.logger)
}

func (a *API) claims(w http.ResponseWriter, r *http.Request) (*authentication.Claims, bool) {
	claims, ok := authentication.GetClaims(r.Context())
	if !ok {
		httptypes.WriteError(w, errors.New("principal route reached without verified claims"), a.logger)
	}

	return claims, ok
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		httptypes.WriteNotFound(w, "not found", a.logger)
	case errors.Is(err, storage.ErrDuplicateKey):
		httptypes.WriteConflict(w, "email already registered", a.logger)
	default:
		httptypes.WriteError(w, err, a.logger)
	}
}

func NewAPI(service ServiceInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	return &API{
		service: service,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}
