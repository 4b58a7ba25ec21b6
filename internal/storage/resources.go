// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/canonical/practice-service/internal/types"
)

// CountResource returns current usage of a resource class for a tenant.
// Account classes count active principals only, deactivated principals free their seat.
func (s *Storage) CountResource(ctx context.Context, tenantID string, class types.ResourceClass) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.CountResource")
	defer span.End()

	var query sq.SelectBuilder

	if tier, ok := class.AccountTier(); ok {
		query = s.db.Statement(ctx).
			Select("count(*)").
			From("principals").
			Where(sq.Eq{"tenant_id": tenantID, "tier": string(tier), "active": true})
	} else {
		switch class {
		case types.ResourceClients:
			query = s.db.Statement(ctx).Select("count(*)").From("clients").Where(sq.Eq{"tenant_id": tenantID})
		case types.ResourceProjects:
			query = s.db.Statement(ctx).Select("count(*)").From("projects").Where(sq.Eq{"tenant_id": tenantID})
		case types.ResourceStorageBytes:
			query = s.db.Statement(ctx).Select("COALESCE(SUM(size_bytes), 0)").From("documents").Where(sq.Eq{"tenant_id": tenantID})
		default:
			return 0, fmt.Errorf("%w: %q", ErrUnknownResource, class)
		}
	}

	var count int64
	if err := query.QueryRowContext(ctx).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", class, err)
	}

	return count, nil
}
