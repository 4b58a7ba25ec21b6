// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"time"
)

// Unlimited marks a capacity or quota limit that is never enforced.
const Unlimited int64 = -1

// TierLimits caps how many principals of each account tier a tenant may hold.
type TierLimits struct {
	MaxSimpleAccounts     int64 `db:"max_simple_accounts" json:"max_simple_accounts"`
	MaxCompositeAccounts  int64 `db:"max_composite_accounts" json:"max_composite_accounts"`
	MaxManagerialAccounts int64 `db:"max_managerial_accounts" json:"max_managerial_accounts"`
}

// For returns the capacity configured for the given tier.
func (l TierLimits) For(tier AccountTier) int64 {
	switch tier {
	case TierSimple:
		return l.MaxSimpleAccounts
	case TierComposite:
		return l.MaxCompositeAccounts
	case TierManagerial:
		return l.MaxManagerialAccounts
	}

	// Unknown tiers get no capacity.
	return 0
}

type Tenant struct {
	ID               string     `db:"id" json:"id"`
	Name             string     `db:"name" json:"name"`
	SubscriptionTier string     `db:"subscription_tier" json:"subscription_tier"`
	Active           bool       `db:"active" json:"active"`
	ExpiresAt        *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	Limits           TierLimits `json:"limits"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}

// Expired reports whether the subscription has an expiry that is not after now.
func (t *Tenant) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && !t.ExpiresAt.After(now)
}

type Principal struct {
	ID                  string      `db:"id" json:"id"`
	TenantID            string      `db:"tenant_id" json:"tenant_id"`
	Email               string      `db:"email" json:"email"`
	PasswordHash        string      `db:"password_hash" json:"-"`
	Tier                AccountTier `db:"tier" json:"tier"`
	Active              bool        `db:"active" json:"active"`
	LastAuthenticatedAt *time.Time  `db:"last_authenticated_at" json:"last_authenticated_at,omitempty"`
	CreatedAt           time.Time   `db:"created_at" json:"created_at"`
}

type AuditRecord struct {
	ID           string         `db:"id" json:"id"`
	ActorID      string         `db:"actor_id" json:"actor_id"`
	TenantID     string         `db:"tenant_id" json:"tenant_id"`
	Action       string         `db:"action" json:"action"`
	ResourceType string         `db:"resource_type" json:"resource_type"`
	ResourceID   string         `db:"resource_id" json:"resource_id"`
	Detail       map[string]any `db:"detail" json:"detail,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}
