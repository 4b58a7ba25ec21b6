// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"time"

	"github.com/canonical/practice-service/internal/types"
)

// CredentialStoreInterface is the narrow contract the request pipeline depends on.
type CredentialStoreInterface interface {
	GetTenant(ctx context.Context, id string) (*types.Tenant, error)
	GetPrincipal(ctx context.Context, id string) (*types.Principal, error)
	CountResource(ctx context.Context, tenantID string, class types.ResourceClass) (int64, error)
	AppendAudit(ctx context.Context, record *types.AuditRecord) error
}

type StorageInterface interface {
	CredentialStoreInterface

	CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error)
	ListTenants(ctx context.Context) ([]*types.Tenant, error)
	UpdateTenant(ctx context.Context, t *types.Tenant, paths []string) error

	CreatePrincipal(ctx context.Context, p *types.Principal) (*types.Principal, error)
	GetPrincipalByEmail(ctx context.Context, email string) (*types.Principal, error)
	ListPrincipals(ctx context.Context, tenantID string) ([]*types.Principal, error)
	UpdatePrincipal(ctx context.Context, p *types.Principal, paths []string) error
	TouchPrincipalLogin(ctx context.Context, id string, at time.Time) error

	ListAuditRecords(ctx context.Context, tenantID string, page, size int64) ([]*types.AuditRecord, error)
}
