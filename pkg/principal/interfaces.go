// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package principal

import (
	"context"

	"github.com/canonical/practice-service/internal/types"
)

type ServiceInterface interface {
	Create(ctx context.Context, tenantID, email, password string, tier types.AccountTier, actorID string) (*types.Principal, error)
	Update(ctx context.Context, tenantID, principalID string, active *bool, tier *types.AccountTier, actorID string) (*types.Principal, error)
	Get(ctx context.Context, tenantID, principalID string) (*types.Principal, error)
	List(ctx context.Context, tenantID string) ([]*types.Principal, error)
}

type StorageInterface interface {
	GetTenant(ctx context.Context, id string) (*types.Tenant, error)
	CreatePrincipal(ctx context.Context, p *types.Principal) (*types.Principal, error)
	GetPrincipal(ctx context.Context, id string) (*types.Principal, error)
	ListPrincipals(ctx context.Context, tenantID string) ([]*types.Principal, error)
	UpdatePrincipal(ctx context.Context, p *types.Principal, paths []string) error
}

type QuotaInterface interface {
	CheckQuota(ctx context.Context, tenantID string, tier types.AccountTier, class types.ResourceClass) error
}

type AuditRecorderInterface interface {
	Record(ctx context.Context, actorID, tenantID, action, resourceType, resourceID string, detail map[string]any)
}
