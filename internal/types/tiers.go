// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"fmt"
)

// AccountTier is the per-principal level that gates capabilities.
// It is distinct from the subscription tier of the tenant.
type AccountTier string

const (
	TierSimple     AccountTier = "SIMPLE"
	TierComposite  AccountTier = "COMPOSITE"
	TierManagerial AccountTier = "MANAGERIAL"
)

// AllAccountTiers lists the tiers from lowest to highest.
func AllAccountTiers() []AccountTier {
	return []AccountTier{TierSimple, TierComposite, TierManagerial}
}

func (t AccountTier) Valid() bool {
	switch t {
	case TierSimple, TierComposite, TierManagerial:
		return true
	}
	return false
}

// Rank orders tiers from 1 (lowest) to 3. Unknown tiers rank 0.
// It is used for display ordering only, never for granting access.
func (t AccountTier) Rank() int {
	switch t {
	case TierSimple:
		return 1
	case TierComposite:
		return 2
	case TierManagerial:
		return 3
	}
	return 0
}

func (t AccountTier) String() string {
	return string(t)
}

func ParseAccountTier(s string) (AccountTier, error) {
	t := AccountTier(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown account tier %q", s)
	}
	return t, nil
}

// Capability is a module or action gated by account tier.
type Capability string

const (
	CapabilityClients        Capability = "clients"
	CapabilityProjects       Capability = "projects"
	CapabilityTasks          Capability = "tasks"
	CapabilityDocuments      Capability = "documents"
	CapabilityCalendar       Capability = "calendar"
	CapabilityInvoices       Capability = "invoices"
	CapabilityCashFlow       Capability = "cash_flow"
	CapabilityReports        Capability = "reports"
	CapabilityUserManagement Capability = "user_management"
	CapabilityAuditLog       Capability = "audit_log"
	CapabilitySettings       Capability = "settings"
)

func AllCapabilities() []Capability {
	return []Capability{
		CapabilityClients,
		CapabilityProjects,
		CapabilityTasks,
		CapabilityDocuments,
		CapabilityCalendar,
		CapabilityInvoices,
		CapabilityCashFlow,
		CapabilityReports,
		CapabilityUserManagement,
		CapabilityAuditLog,
		CapabilitySettings,
	}
}

// ResourceClass is a countable resource subject to quota.
type ResourceClass string

const (
	ResourceSimpleAccounts     ResourceClass = "simple_accounts"
	ResourceCompositeAccounts  ResourceClass = "composite_accounts"
	ResourceManagerialAccounts ResourceClass = "managerial_accounts"
	ResourceClients            ResourceClass = "clients"
	ResourceProjects           ResourceClass = "projects"
	ResourceStorageBytes       ResourceClass = "storage_bytes"
)

func AllResourceClasses() []ResourceClass {
	return []ResourceClass{
		ResourceSimpleAccounts,
		ResourceCompositeAccounts,
		ResourceManagerialAccounts,
		ResourceClients,
		ResourceProjects,
		ResourceStorageBytes,
	}
}

// AccountClass maps an account tier to the resource class counting its principals.
func AccountClass(tier AccountTier) ResourceClass {
	switch tier {
	case TierSimple:
		return ResourceSimpleAccounts
	case TierComposite:
		return ResourceCompositeAccounts
	case TierManagerial:
		return ResourceManagerialAccounts
	}
	return ""
}

// AccountTier returns the tier counted by an account class.
// The ok result is false for every other class.
func (c ResourceClass) AccountTier() (AccountTier, bool) {
	switch c {
	case ResourceSimpleAccounts:
		return TierSimple, true
	case ResourceCompositeAccounts:
		return TierComposite, true
	case ResourceManagerialAccounts:
		return TierManagerial, true
	}
	return "", false
}

func (c ResourceClass) Valid() bool {
	for _, rc := range AllResourceClasses() {
		if rc == c {
			return true
		}
	}
	return false
}
