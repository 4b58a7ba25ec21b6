// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package principal

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/canonical/practice-service/internal/logging"
	"github.com/canonical/practice-service/internal/monitoring"
	"github.com/canonical/practice-service/internal/storage"
	"github.com/canonical/practice-service/internal/tracing"
	"github.com/canonical/practice-service/internal/types"
	"github.com/canonical/practice-service/pkg/tenant"
)

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	storage StorageInterface
	quota   QuotaInterface
	audit   AuditRecorderInterface
	cost    int

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewService(
	storage StorageInterface,
	quota QuotaInterface,
	audit AuditRecorderInterface,
	bcryptCost int,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}

	return &Service{
		storage: storage,
		quota:   quota,
		audit:   audit,
		cost:    bcryptCost,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

// Create provisions an active principal.
// The tenant must have room left for the requested tier.
func (s *Service) Create(ctx context.Context, tenantID, email, password string, tier types.AccountTier, actorID string) (*types.Principal, error) {
	ctx, span := s.tracer.Start(ctx, "principal.Service.Create")
	defer span.End()

	if !tier.Valid() {
		return nil, fmt.Errorf("unknown account tier %q", tier)
	}

	t, err := s.storage.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	ctx = tenant.WithTenant(ctx, t)

	if err := s.quota.CheckQuota(ctx, t.ID, tier, types.AccountClass(tier)); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.storage.CreatePrincipal(ctx, &types.Principal{
		TenantID:     t.ID,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		Tier:         tier,
		Active:       true,
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorID, t.ID, "principal.create", "principal", created.ID, map[string]any{
		"tier": string(created.Tier),
	})
	s.logger.Security().AdminAction("principal.create", created.ID)

	return created, nil
}

// Update changes activity and tier of a principal. Principals are deactivated, never deleted.
// An empty tenantID lifts the tenant scope for the admin tree.
func (s *Service) Update(ctx context.Context, tenantID, principalID string, active *bool, tier *types.AccountTier, actorID string) (*types.Principal, error) {
	ctx, span := s.tracer.Start(ctx, "principal.Service.Update")
	defer span.End()

	p, err := s.Get(ctx, tenantID, principalID)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, 2)
	reactivated, moved := false, false

	if active != nil && *active != p.Active {
		reactivated = *active
		p.Active = *active
		paths = append(paths, "active")
	}

	if tier != nil && *tier != p.Tier {
		if !tier.Valid() {
			return nil, fmt.Errorf("unknown account tier %q", *tier)
		}
		moved = true
		p.Tier = *tier
		paths = append(paths, "tier")
	}

	if len(paths) == 0 {
		return p, nil
	}

	// The principal does not count towards the target tier yet and the usual check applies.
	if p.Active && (reactivated || moved) {
		if err := s.quota.CheckQuota(ctx, p.TenantID, p.Tier, types.AccountClass(p.Tier)); err != nil {
			return nil, err
		}
	}

	if err := s.storage.UpdatePrincipal(ctx, p, paths); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorID, p.TenantID, "principal.update", "principal", p.ID, map[string]any{
		"paths":  paths,
		"active": p.Active,
		"tier":   string(p.Tier),
	})
	s.logger.Security().AdminAction("principal.update", p.ID)

	return p, nil
}

func (s *Service) Get(ctx context.Context, tenantID, principalID string) (*types.Principal, error) {
	ctx, span := s.tracer.Start(ctx, "principal.Service.Get")
	defer span.End()

	p, err := s.storage.GetPrincipal(ctx, principalID)
	if err != nil {
		return nil, err
	}

	// A principal of another tenant is reported as missing.
	if tenantID != "" && p.TenantID != tenantID {
		return nil, storage.ErrNotFound
	}

	return p, nil
}

func (s *Service) List(ctx context.Context, tenantID string) ([]*types.Principal, error) {
	ctx, span := s.tracer.Start(ctx, "principal.Service.List")
	defer span.End()

	return s.storage.ListPrincipals(ctx, tenantID)
}
