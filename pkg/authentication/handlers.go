// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	httptypes "github.com/canonical/practice-service/internal/http/types"
	"github.com/canonical/practice-service/internal/logging"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type API struct {
	service ServiceInterface

	logger logging.LoggerInterface
}

func (a *API) RegisterEndpoints(mux *chi.Mux) {
	mux.Post("/api/v0/auth/login", a.login)
	mux.Post("/api/v0/auth/refresh", a.refresh)
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httptypes.DecodeJSON(r, &req); err != nil {
		httptypes.WriteBadRequest(w, err.Error(), a.logger)
		return
	}

	pair, err := a.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteSuccess(w, http.StatusOK, "authenticated", pair, a.logger)
}

func (a *API) refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := httptypes.DecodeJSON(r, &req); err != nil {
		httptypes.WriteBadRequest(w, err.Error(), a.logger)
		return
	}

	pair, err := a.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteSuccess(w, http.StatusOK, "token refreshed", pair, a.logger)
}

func NewAPI(service ServiceInterface, logger logging.LoggerInterface) *API {
	return &API{
		service: service,
		logger:  logger,
	}
}
