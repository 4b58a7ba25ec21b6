// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"testing"
	"time"
)

func TestParseAccountTier(t *testing.T) {
	tests := []struct {
		input   string
		want    AccountTier
		wantErr bool
	}{
		{input: "SIMPLE", want: TierSimple},
		{input: "COMPOSITE", want: TierComposite},
		{input: "MANAGERIAL", want: TierManagerial},
		{input: "simple", wantErr: true},
		{input: "ADMIN", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAccountTier(tt.input)

			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got tier %q", got)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestAccountClassMapping(t *testing.T) {
	for _, tier := range AllAccountTiers() {
		class := AccountClass(tier)

		got, ok := class.AccountTier()
		if !ok {
			t.Errorf("expected %q to be an account class", class)
		}
		if got != tier {
			t.Errorf("expected tier %q, got %q", tier, got)
		}
	}

	if _, ok := ResourceClients.AccountTier(); ok {
		t.Errorf("expected clients not to be an account class")
	}
}

func TestTierLimitsFor(t *testing.T) {
	limits := TierLimits{MaxSimpleAccounts: 2, MaxCompositeAccounts: 5, MaxManagerialAccounts: Unlimited}

	if limits.For(TierSimple) != 2 {
		t.Errorf("expected 2, got %d", limits.For(TierSimple))
	}
	if limits.For(TierComposite) != 5 {
		t.Errorf("expected 5, got %d", limits.For(TierComposite))
	}
	if limits.For(TierManagerial) != Unlimited {
		t.Errorf("expected unlimited, got %d", limits.For(TierManagerial))
	}
	if limits.For(AccountTier("GOLD")) != 0 {
		t.Errorf("expected no capacity for an unknown tier")
	}
}

func TestTenantExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name      string
		expiresAt *time.Time
		want      bool
	}{
		{name: "never expires", expiresAt: nil, want: false},
		{name: "expired yesterday", expiresAt: &past, want: true},
		{name: "expires exactly now", expiresAt: &now, want: true},
		{name: "expires tomorrow", expiresAt: &future, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tenant := &Tenant{ExpiresAt: tt.expiresAt}
			if got := tenant.Expired(now); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
