// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package quota

import (
	"context"

	"github.com/canonical/practice-service/internal/types"
)

type EnforcerInterface interface {
	CheckQuota(ctx context.Context, tenantID string, tier types.AccountTier, class types.ResourceClass) error
	Usage(ctx context.Context, tenantID string, tier types.AccountTier) ([]Usage, error)
}

type StorageInterface interface {
	GetTenant(ctx context.Context, id string) (*types.Tenant, error)
	CountResource(ctx context.Context, tenantID string, class types.ResourceClass) (int64, error)
}
