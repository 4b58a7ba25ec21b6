// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package pipeline

import (
	"context"

	"github.com/canonical/practice-service/internal/types"
	"github.com/canonical/practice-service/pkg/authentication"
)

type TokenVerifierInterface interface {
	VerifyAccess(ctx context.Context, raw string) (*authentication.Claims, error)
}

type TenantValidatorInterface interface {
	Validate(ctx context.Context, tenantID string) (*types.Tenant, error)
}
