// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/canonical/practice-service/internal/denial"
	"github.com/canonical/practice-service/internal/logging"
	"github.com/canonical/practice-service/internal/types"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind denial.Kind
		want int
	}{
		{kind: denial.KindTokenInvalid, want: http.StatusUnauthorized},
		{kind: denial.KindTokenExpired, want: http.StatusUnauthorized},
		{kind: denial.KindTokenTypeMismatch, want: http.StatusUnauthorized},
		{kind: denial.KindInvalidCredentials, want: http.StatusUnauthorized},
		{kind: denial.KindAdminUnauthorized, want: http.StatusUnauthorized},
		{kind: denial.KindTenantNotFound, want: http.StatusForbidden},
		{kind: denial.KindTenantInactive, want: http.StatusForbidden},
		{kind: denial.KindTenantExpired, want: http.StatusForbidden},
		{kind: denial.KindPrincipalInactive, want: http.StatusForbidden},
		{kind: denial.KindCapabilityDenied, want: http.StatusForbidden},
		{kind: denial.KindQuotaExceeded, want: http.StatusForbidden},
		{kind: denial.KindRateLimited, want: http.StatusTooManyRequests},
		{kind: denial.KindAuditWriteFailed, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := StatusFor(tt.kind); got != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, got)
			}
		})
	}
}

func TestWriteErrorCapabilityDenial(t *testing.T) {
	rr := httptest.NewRecorder()

	err := fmt.Errorf("authorize: %w", &denial.CapabilityDenial{
		CurrentTier:    types.TierSimple,
		Capability:     types.CapabilityCashFlow,
		SuggestedTiers: []types.AccountTier{types.TierComposite, types.TierManagerial},
	})

	WriteError(rr, err, logging.NewNoopLogger())

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, rr.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}

	if body["error"] != "CapabilityDenied" {
		t.Errorf("expected error CapabilityDenied, got %v", body["error"])
	}
	if body["currentAccount"] != "SIMPLE" {
		t.Errorf("expected currentAccount SIMPLE, got %v", body["currentAccount"])
	}
	if body["requestedCapability"] != "cash_flow" {
		t.Errorf("expected requestedCapability cash_flow, got %v", body["requestedCapability"])
	}

	suggested, ok := body["suggestedAccounts"].([]interface{})
	if !ok || len(suggested) != 2 || suggested[0] != "COMPOSITE" || suggested[1] != "MANAGERIAL" {
		t.Errorf("expected suggestedAccounts [COMPOSITE MANAGERIAL], got %v", body["suggestedAccounts"])
	}
	if _, ok := body["currentCount"]; ok {
		t.Errorf("expected no currentCount on a capability denial")
	}
}

func TestWriteErrorQuotaDenial(t *testing.T) {
	rr := httptest.NewRecorder()

	WriteError(rr, &denial.QuotaDenial{Resource: types.ResourceSimpleAccounts, CurrentCount: 2, MaxAllowed: 2}, logging.NewNoopLogger())

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, rr.Code)
	}

	var body ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}

	if body.Error != denial.KindQuotaExceeded {
		t.Errorf("expected QuotaExceeded, got %s", body.Error)
	}
	if body.CurrentCount == nil || *body.CurrentCount != 2 {
		t.Errorf("expected currentCount 2, got %v", body.CurrentCount)
	}
	if body.MaxAllowed == nil || *body.MaxAllowed != 2 {
		t.Errorf("expected maxAllowed 2, got %v", body.MaxAllowed)
	}
	if body.Resource != types.ResourceSimpleAccounts {
		t.Errorf("expected resource simple_accounts, got %s", body.Resource)
	}
}

func TestWriteErrorInternal(t *testing.T) {
	rr := httptest.NewRecorder()

	WriteError(rr, errors.New("pq: password authentication failed"), logging.NewNoopLogger())

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}

	var body ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}

	if body.Message != "internal server error" {
		t.Errorf("expected generic message, got %q", body.Message)
	}
	if body.Error != "" {
		t.Errorf("expected no denial kind, got %q", body.Error)
	}
}

func TestValidate(t *testing.T) {
	type request struct {
		Email string `json:"email" validate:"required,email"`
		Tier  string `json:"tier" validate:"required,account_tier"`
		Limit int64  `json:"limit" validate:"limit"`
	}

	tests := []struct {
		name    string
		req     request
		wantErr bool
	}{
		{name: "valid", req: request{Email: "a@b.com", Tier: "SIMPLE", Limit: -1}},
		{name: "bad tier", req: request{Email: "a@b.com", Tier: "GOLD"}, wantErr: true},
		{name: "bad email", req: request{Email: "nope", Tier: "SIMPLE"}, wantErr: true},
		{name: "limit below unlimited", req: request{Email: "a@b.com", Tier: "SIMPLE", Limit: -2}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}
