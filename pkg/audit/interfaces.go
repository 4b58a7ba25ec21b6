// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package audit

import (
	"context"

	"github.com/canonical/practice-service/internal/types"
)

type RecorderInterface interface {
	// Record appends an audit record without blocking the caller.
	// Failures are logged and dropped.
	Record(ctx context.Context, actorID, tenantID, action, resourceType, resourceID string, detail map[string]any)
	// Wait blocks until every pending write has finished.
	Wait()
}

type StorageInterface interface {
	AppendAudit(ctx context.Context, record *types.AuditRecord) error
	ListAuditRecords(ctx context.Context, tenantID string, page, size int64) ([]*types.AuditRecord, error)
}
