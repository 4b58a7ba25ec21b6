// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"

	"github.com/canonical/practice-service/internal/types"
)

type ValidatorInterface interface {
	// Validate loads the tenant and refuses it when it is unknown or cannot be used.
	Validate(context.Context, string) (*types.Tenant, error)
}

type ServiceInterface interface {
	CreateTenant(ctx context.Context, tenant *types.Tenant) (*types.Tenant, error)
	GetTenant(ctx context.Context, id string) (*types.Tenant, error)
	ListTenants(ctx context.Context) ([]*types.Tenant, error)
	UpdateTenant(ctx context.Context, tenant *types.Tenant, paths []string) (*types.Tenant, error)
}

type StorageInterface interface {
	CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error)
	GetTenant(ctx context.Context, id string) (*types.Tenant, error)
	ListTenants(ctx context.Context) ([]*types.Tenant, error)
	UpdateTenant(ctx context.Context, t *types.Tenant, paths []string) error
}

type AuditRecorderInterface interface {
	Record(ctx context.Context, actorID, tenantID, action, resourceType, resourceID string, detail map[string]any)
}
