// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"time"

	"github.com/canonical/practice-service/internal/types"
)

type TokenServiceInterface interface {
	// Issue signs a new access and refresh token pair.
	// The tier is snapshotted into both.
	Issue(context.Context, string, string, types.AccountTier) (*TokenPair, error)
	// Verify checks the signature and claims of a token of any type.
	Verify(context.Context, string) (*Claims, error)
	VerifyAccess(context.Context, string) (*Claims, error)
	VerifyRefresh(context.Context, string) (*Claims, error)
	// Refresh exchanges a refresh token for a new access token.
	Refresh(context.Context, string) (*TokenPair, error)
}

type ServiceInterface interface {
	Login(context.Context, string, string) (*TokenPair, error)
	Refresh(context.Context, string) (*TokenPair, error)
}

type PrincipalStoreInterface interface {
	GetPrincipal(context.Context, string) (*types.Principal, error)
	GetPrincipalByEmail(context.Context, string) (*types.Principal, error)
	TouchPrincipalLogin(context.Context, string, time.Time) error
}

type TenantValidatorInterface interface {
	Validate(context.Context, string) (*types.Tenant, error)
}

type AuditRecorderInterface interface {
	Record(ctx context.Context, actorID, tenantID, action, resourceType, resourceID string, detail map[string]any)
}
