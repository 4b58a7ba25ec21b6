// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"

	"github.com/canonical/practice-service/internal/types"
)

type contextKey struct{}

var tenantContextKey = contextKey{}

// WithTenant stores the tenant validated for the current request.
func WithTenant(ctx context.Context, t *types.Tenant) context.Context {
	return context.WithValue(ctx, tenantContextKey, t)
}

func FromContext(ctx context.Context) (*types.Tenant, bool) {
	t, ok := ctx.Value(tenantContextKey).(*types.Tenant)
	return t, ok && t != nil
}
