// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package denial

import (
	"errors"
	"fmt"
	"testing"

	"github.com/canonical/practice-service/internal/types"
)

func TestErrorIs(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{name: "same kind", err: Wrap(KindTokenExpired, "token expired", errors.New("exp")), target: ErrTokenExpired, want: true},
		{name: "different kind", err: ErrTokenExpired, target: ErrTokenInvalid, want: false},
		{name: "type mismatch is an invalid token", err: ErrTokenTypeMismatch, target: ErrTokenInvalid, want: true},
		{name: "invalid token is not a type mismatch", err: ErrTokenInvalid, target: ErrTokenTypeMismatch, want: false},
		{name: "wrapped with fmt", err: fmt.Errorf("refresh: %w", ErrPrincipalInactive), target: ErrPrincipalInactive, want: true},
		{name: "capability denial", err: &CapabilityDenial{CurrentTier: types.TierSimple}, target: ErrCapabilityDenied, want: true},
		{name: "quota denial", err: &QuotaDenial{Resource: types.ResourceClients}, target: ErrQuotaExceeded, want: true},
		{name: "quota denial is not a capability denial", err: &QuotaDenial{}, target: ErrCapabilityDenied, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind Kind
		wantOK   bool
	}{
		{name: "plain denial", err: ErrTenantInactive, wantKind: KindTenantInactive, wantOK: true},
		{name: "wrapped denial", err: fmt.Errorf("validate: %w", ErrTenantExpired), wantKind: KindTenantExpired, wantOK: true},
		{name: "capability", err: fmt.Errorf("gate: %w", &CapabilityDenial{}), wantKind: KindCapabilityDenied, wantOK: true},
		{name: "quota", err: &QuotaDenial{}, wantKind: KindQuotaExceeded, wantOK: true},
		{name: "internal", err: errors.New("connection refused"), wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := KindOf(tt.err)
			if ok != tt.wantOK {
				t.Fatalf("expected ok %v, got %v", tt.wantOK, ok)
			}
			if kind != tt.wantKind {
				t.Errorf("expected kind %q, got %q", tt.wantKind, kind)
			}
		})
	}
}

func TestCapabilityDenialMessage(t *testing.T) {
	d := &CapabilityDenial{
		CurrentTier:    types.TierSimple,
		Capability:     types.CapabilityCashFlow,
		SuggestedTiers: []types.AccountTier{types.TierComposite, types.TierManagerial},
	}

	want := `capability "cash_flow" is not granted to SIMPLE accounts, available with: [COMPOSITE, MANAGERIAL]`
	if d.Error() != want {
		t.Errorf("expected %q, got %q", want, d.Error())
	}
}
