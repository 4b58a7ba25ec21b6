// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"
	"fmt"

	"github.com/canonical/practice-service/internal/logging"
	"github.com/canonical/practice-service/internal/monitoring"
	"github.com/canonical/practice-service/internal/tracing"
	"github.com/canonical/practice-service/internal/types"
)

// AdminActor is the audit actor of every mutation made through the admin key.
const AdminActor = "admin"

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	storage StorageInterface
	audit   AuditRecorderInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewService(
	storage StorageInterface,
	audit AuditRecorderInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage: storage,
		audit:   audit,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

func (s *Service) CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.CreateTenant")
	defer span.End()

	created, err := s.storage.CreateTenant(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	s.audit.Record(ctx, AdminActor, created.ID, "tenant.create", "tenant", created.ID, map[string]any{
		"name":              created.Name,
		"subscription_tier": created.SubscriptionTier,
	})
	s.logger.Security().AdminAction("tenant.create", created.ID)

	return created, nil
}

func (s *Service) GetTenant(ctx context.Context, id string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.GetTenant")
	defer span.End()

	return s.storage.GetTenant(ctx, id)
}

func (s *Service) ListTenants(ctx context.Context) ([]*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.ListTenants")
	defer span.End()

	tenants, err := s.storage.ListTenants(ctx)
	if err != nil {
		return nil, err
	}

	return tenants, nil
}

// UpdateTenant applies the fields named in paths.
// Suspension, renewal and resizing of tenants all go through it.
func (s *Service) UpdateTenant(ctx context.Context, t *types.Tenant, paths []string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.UpdateTenant")
	defer span.End()

	if err := s.storage.UpdateTenant(ctx, t, paths); err != nil {
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}

	updated, err := s.storage.GetTenant(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch updated tenant: %w", err)
	}

	s.audit.Record(ctx, AdminActor, updated.ID, "tenant.update", "tenant", updated.ID, map[string]any{
		"paths":  paths,
		"active": updated.Active,
	})
	s.logger.Security().AdminAction("tenant.update", updated.ID)

	return updated, nil
}
