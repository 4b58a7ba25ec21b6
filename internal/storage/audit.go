// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/canonical/practice-service/internal/db"
	"github.com/canonical/practice-service/internal/types"
)

// AppendAudit inserts an audit record. There is no update or delete counterpart.
func (s *Storage) AppendAudit(ctx context.Context, record *types.AuditRecord) error {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.AppendAudit")
	defer span.End()

	detail := []byte("{}")
	if len(record.Detail) > 0 {
		var err error
		if detail, err = json.Marshal(record.Detail); err != nil {
			return fmt.Errorf("failed to encode audit detail: %w", err)
		}
	}

	_, err := s.db.Statement(ctx).
		Insert("audit_records").
		Columns("id", "actor_id", "tenant_id", "action", "resource_type", "resource_id", "detail", "created_at").
		Values(
			record.ID,
			record.ActorID,
			record.TenantID,
			record.Action,
			record.ResourceType,
			record.ResourceID,
			string(detail),
			record.CreatedAt,
		).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}

	return nil
}

// ListAuditRecords returns the audit trail of a tenant with the newest record first.
func (s *Storage) ListAuditRecords(ctx context.Context, tenantID string, page, size int64) ([]*types.AuditRecord, error) {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.ListAuditRecords")
	defer span.End()

	pageSize := db.PageSize(size)

	rows, err := s.db.Statement(ctx).
		Select("id", "actor_id", "tenant_id", "action", "resource_type", "resource_id", "detail", "created_at").
		From("audit_records").
		Where(sq.Eq{"tenant_id": tenantID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(pageSize).
		Offset(db.Offset(page, pageSize)).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}
	defer rows.Close()

	records := make([]*types.AuditRecord, 0)
	for rows.Next() {
		var (
			r      types.AuditRecord
			detail []byte
		)

		if err := rows.Scan(&r.ID, &r.ActorID, &r.TenantID, &r.Action, &r.ResourceType, &r.ResourceID, &detail, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}

		if len(detail) > 0 {
			if err := json.Unmarshal(detail, &r.Detail); err != nil {
				s.logger.Warnf("audit record %s has an undecodable detail: %v", r.ID, err)
			}
		}

		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit rows: %w", err)
	}

	return records, nil
}
