// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package capability decides which modules an account tier may invoke.
//
// The grant table is static and each tier lists its own capabilities explicitly.
// A higher tier is never assumed to inherit the grants of a lower one.
// A tier is only ever looked up by itself.
package capability

import (
	"github.com/canonical/practice-service/internal/denial"
	"github.com/canonical/practice-service/internal/types"
)

var (
	simpleGrants = []types.Capability{
		types.CapabilityClients,
		types.CapabilityProjects,
		types.CapabilityTasks,
		types.CapabilityDocuments,
		types.CapabilityCalendar,
	}

	compositeGrants = []types.Capability{
		types.CapabilityClients,
		types.CapabilityProjects,
		types.CapabilityTasks,
		types.CapabilityDocuments,
		types.CapabilityCalendar,
		types.CapabilityInvoices,
		types.CapabilityCashFlow,
		types.CapabilityReports,
	}

	managerialGrants = []types.Capability{
		types.CapabilityClients,
		types.CapabilityProjects,
		types.CapabilityTasks,
		types.CapabilityDocuments,
		types.CapabilityCalendar,
		types.CapabilityInvoices,
		types.CapabilityCashFlow,
		types.CapabilityReports,
		types.CapabilityUserManagement,
		types.CapabilityAuditLog,
		types.CapabilitySettings,
	}
)

// Granted returns a copy of the capabilities of the tier. Unknown tiers have none.
func Granted(tier types.AccountTier) []types.Capability {
	var grants []types.Capability

	switch tier {
	case types.TierSimple:
		grants = simpleGrants
	case types.TierComposite:
		grants = compositeGrants
	case types.TierManagerial:
		grants = managerialGrants
	default:
		return []types.Capability{}
	}

	out := make([]types.Capability, len(grants))
	copy(out, grants)

	return out
}

func grants(tier types.AccountTier, capability types.Capability) bool {
	for _, c := range Granted(tier) {
		if c == capability {
			return true
		}
	}
	return false
}

// TiersGranting scans the table in tier order and returns every tier holding the capability.
func TiersGranting(capability types.Capability) []types.AccountTier {
	tiers := make([]types.AccountTier, 0)

	for _, tier := range types.AllAccountTiers() {
		if grants(tier, capability) {
			tiers = append(tiers, tier)
		}
	}

	return tiers
}

// Authorize returns nil when the tier holds the capability. Otherwise it returns a
// *denial.CapabilityDenial carrying the tiers that would allow it.
func Authorize(tier types.AccountTier, capability types.Capability) error {
	if grants(tier, capability) {
		return nil
	}

	return &denial.CapabilityDenial{
		CurrentTier:    tier,
		Capability:     capability,
		SuggestedTiers: TiersGranting(capability),
	}
}
