// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/canonical/practice-service/internal/db"
	"github.com/canonical/practice-service/internal/logging"
	"github.com/canonical/practice-service/internal/monitoring"
	"github.com/canonical/practice-service/internal/tracing"
	"github.com/canonical/practice-service/internal/types"
)

var _ StorageInterface = (*Storage)(nil)

var tenantColumns = []string{
	"id",
	"name",
	"subscription_tier",
	"active",
	"expires_at",
	"max_simple_accounts",
	"max_composite_accounts",
	"max_managerial_accounts",
	"created_at",
}

type Storage struct {
	db db.DBClientInterface

	logger  logging.LoggerInterface
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
}

func NewStorage(c db.DBClientInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Storage {
	s := new(Storage)

	s.db = c

	s.logger = logger
	s.tracer = tracer
	s.monitor = monitor

	return s
}

func scanTenant(row sq.RowScanner) (*types.Tenant, error) {
	var (
		t         types.Tenant
		expiresAt sql.NullTime
	)

	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.SubscriptionTier,
		&t.Active,
		&expiresAt,
		&t.Limits.MaxSimpleAccounts,
		&t.Limits.MaxCompositeAccounts,
		&t.Limits.MaxManagerialAccounts,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if expiresAt.Valid {
		e := expiresAt.Time
		t.ExpiresAt = &e
	}

	return &t, nil
}

func (s *Storage) CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.CreateTenant")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate tenant ID: %w", err)
	}

	created, err := scanTenant(
		s.db.Statement(ctx).
			Insert("tenants").
			Columns(
				"id",
				"name",
				"subscription_tier",
				"active",
				"expires_at",
				"max_simple_accounts",
				"max_composite_accounts",
				"max_managerial_accounts",
			).
			Values(
				id.String(),
				t.Name,
				t.SubscriptionTier,
				t.Active,
				t.ExpiresAt,
				t.Limits.MaxSimpleAccounts,
				t.Limits.MaxCompositeAccounts,
				t.Limits.MaxManagerialAccounts,
			).
			Suffix("RETURNING " + columnList(tenantColumns)).
			QueryRowContext(ctx),
	)
	if err != nil {
		if IsDuplicateKeyError(err) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("failed to insert tenant: %w", err)
	}

	return created, nil
}

func (s *Storage) GetTenant(ctx context.Context, id string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.GetTenant")
	defer span.End()

	t, err := scanTenant(
		s.db.Statement(ctx).
			Select(tenantColumns...).
			From("tenants").
			Where(sq.Eq{"id": id}).
			QueryRowContext(ctx),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	return t, nil
}

func (s *Storage) ListTenants(ctx context.Context) ([]*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.ListTenants")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select(tenantColumns...).
		From("tenants").
		OrderBy("created_at").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	tenants := make([]*types.Tenant, 0)
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tenant rows: %w", err)
	}

	return tenants, nil
}

// UpdateTenant follows PATCH semantics, only the fields named in paths are written.
// Recognised paths: name, subscription_tier, active, expires_at, limits (all three capacities).
func (s *Storage) UpdateTenant(ctx context.Context, t *types.Tenant, paths []string) error {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.UpdateTenant")
	defer span.End()

	updates := make(map[string]interface{})
	for _, p := range paths {
		switch p {
		case "name":
			updates["name"] = t.Name
		case "subscription_tier":
			updates["subscription_tier"] = t.SubscriptionTier
		case "active":
			updates["active"] = t.Active
		case "expires_at":
			updates["expires_at"] = t.ExpiresAt
		case "limits":
			updates["max_simple_accounts"] = t.Limits.MaxSimpleAccounts
			updates["max_composite_accounts"] = t.Limits.MaxCompositeAccounts
			updates["max_managerial_accounts"] = t.Limits.MaxManagerialAccounts
		}
	}

	if len(updates) == 0 {
		return nil
	}

	res, err := s.db.Statement(ctx).
		Update("tenants").
		SetMap(updates).
		Where(sq.Eq{"id": t.ID}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update tenant: %w", err)
	}

	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func columnList(columns []string) string {
	return strings.Join(columns, ", ")
}
