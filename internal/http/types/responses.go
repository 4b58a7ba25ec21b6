// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/canonical/practice-service/internal/denial"
	"github.com/canonical/practice-service/internal/logging"
	"github.com/canonical/practice-service/internal/types"
)

type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *Pagination `json:"_meta,omitempty"`
}

type Pagination struct {
	Page int64 `json:"page"`
	Size int64 `json:"size"`
}

// ErrorResponse is the body of every refused request.
// The denial specific fields are only set for their own kind.
type ErrorResponse struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Error   denial.Kind `json:"error,omitempty"`

	CurrentAccount      types.AccountTier   `json:"currentAccount,omitempty"`
	RequestedCapability types.Capability    `json:"requestedCapability,omitempty"`
	SuggestedAccounts   []types.AccountTier `json:"suggestedAccounts,omitempty"`

	Resource     types.ResourceClass `json:"resource,omitempty"`
	CurrentCount *int64              `json:"currentCount,omitempty"`
	MaxAllowed   *int64              `json:"maxAllowed,omitempty"`
}

// StatusFor maps a denial kind to the HTTP status surfaced to callers.
func StatusFor(kind denial.Kind) int {
	switch kind {
	case denial.KindTokenInvalid,
		denial.KindTokenExpired,
		denial.KindTokenTypeMismatch,
		denial.KindInvalidCredentials,
		denial.KindAdminUnauthorized:
		return http.StatusUnauthorized
	case denial.KindTenantNotFound,
		denial.KindTenantInactive,
		denial.KindTenantExpired,
		denial.KindPrincipalInactive,
		denial.KindCapabilityDenied,
		denial.KindQuotaExceeded:
		return http.StatusForbidden
	case denial.KindRateLimited:
		return http.StatusTooManyRequests
	}

	return http.StatusInternalServerError
}

// NewErrorResponse converts err to its response body.
// Internal errors never leak their message.
func NewErrorResponse(err error) *ErrorResponse {
	kind, ok := denial.KindOf(err)
	if !ok {
		return &ErrorResponse{
			Status:  http.StatusInternalServerError,
			Message: "internal server error",
		}
	}

	resp := &ErrorResponse{
		Status: StatusFor(kind),
		Error:  kind,
	}

	var (
		ce *denial.CapabilityDenial
		qe *denial.QuotaDenial
		de *denial.Error
	)

	switch {
	case errors.As(err, &ce):
		resp.Message = ce.Error()
		resp.CurrentAccount = ce.CurrentTier
		resp.RequestedCapability = ce.Capability
		resp.SuggestedAccounts = ce.SuggestedTiers
	case errors.As(err, &qe):
		current, limit := qe.CurrentCount, qe.MaxAllowed
		resp.Message = qe.Error()
		resp.Resource = qe.Resource
		resp.CurrentCount = &current
		resp.MaxAllowed = &limit
	case errors.As(err, &de):
		resp.Message = de.Message
	}

	return resp
}

func WriteJSON(w http.ResponseWriter, status int, body interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(body)
}

// WriteError renders err. Internal errors are logged because the caller only sees a generic message.
func WriteError(w http.ResponseWriter, err error, logger logging.LoggerInterface) {
	resp := NewErrorResponse(err)

	if resp.Status == http.StatusInternalServerError {
		logger.Errorf("request failed: %v", err)
	}

	if err := WriteJSON(w, resp.Status, resp); err != nil {
		logger.Errorf("failed to encode error response: %v", err)
	}
}

// WriteBadRequest renders a validation failure.
func WriteBadRequest(w http.ResponseWriter, message string, logger logging.LoggerInterface) {
	if err := WriteJSON(w, http.StatusBadRequest, Response{Status: http.StatusBadRequest, Message: message}); err != nil {
		logger.Errorf("failed to encode bad request response: %v", err)
	}
}

func WriteSuccess(w http.ResponseWriter, status int, message string, data interface{}, logger logging.LoggerInterface) {
	if err := WriteJSON(w, status, Response{Status: status, Message: message, Data: data}); err != nil {
		logger.Errorf("failed to encode response: %v", err)
	}
}

func WriteNotFound(w http.ResponseWriter, message string, logger logging.LoggerInterface) {
	if err := WriteJSON(w, http.StatusNotFound, Response{Status: http.StatusNotFound, Message: message}); err != nil {
		logger.Errorf("failed to encode not found response: %v", err)
	}
}

func WriteConflict(w http.ResponseWriter, message string, logger logging.LoggerInterface) {
	if err := WriteJSON(w, http.StatusConflict, Response{Status: http.StatusConflict, Message: message}); err != nil {
		logger.Errorf("failed to encode conflict response: %v", err)
	}
}
