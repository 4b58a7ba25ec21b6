// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package quota

import (
	"fmt"

	"github.com/canonical/practice-service/internal/storage"
	"github.com/canonical/practice-service/internal/types"
)

const gib int64 = 1 << 30

type planLimits struct {
	clients      int64
	projects     int64
	storageBytes int64
}

func planFor(tier types.AccountTier) (planLimits, error) {
	switch tier {
	case types.TierSimple:
		return planLimits{clients: 100, projects: 50, storageBytes: 1 * gib}, nil
	case types.TierComposite:
		return planLimits{clients: 1000, projects: 500, storageBytes: 10 * gib}, nil
	case types.TierManagerial:
		return planLimits{clients: types.Unlimited, projects: types.Unlimited, storageBytes: types.Unlimited}, nil
	}

	return planLimits{}, fmt.Errorf("no plan for account tier %q", tier)
}

// PlanLimit is the static limit of a non account resource class for a tier.
func PlanLimit(tier types.AccountTier, class types.ResourceClass) (int64, error) {
	plan, err := planFor(tier)
	if err != nil {
		return 0, err
	}

	switch class {
	case types.ResourceClients:
		return plan.clients, nil
	case types.ResourceProjects:
		return plan.projects, nil
	case types.ResourceStorageBytes:
		return plan.storageBytes, nil
	}

	return 0, fmt.Errorf("%w: %q has no plan limit", storage.ErrUnknownResource, class)
}
