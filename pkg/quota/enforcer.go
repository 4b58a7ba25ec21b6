// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package quota

import (
	"context"
	"errors"
	"fmt"

	"github.com/canonical/practice-service/internal/denial"
	"github.com/canonical/practice-service/internal/logging"
	"github.com/canonical/practice-service/internal/monitoring"
	"github.com/canonical/practice-service/internal/storage"
	"github.com/canonical/practice-service/internal/tracing"
	"github.com/canonical/practice-service/internal/types"
	"github.com/canonical/practice-service/pkg/tenant"
)

var _ EnforcerInterface = (*Enforcer)(nil)

type Usage struct {
	Resource     types.ResourceClass `json:"resource"`
	CurrentCount int64               `json:"currentCount"`
	MaxAllowed   int64               `json:"maxAllowed"`
}

// Enforcer compares usage with limits before a creation. The check and the
// creation are not atomic and concurrent creations can overshoot a limit slightly.
type Enforcer struct {
	storage StorageInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// CheckQuota denies when the tenant already holds limit or more of class.
// Counting and the caller's write are not atomic. Two concurrent creations may both pass.
func (e *Enforcer) CheckQuota(ctx context.Context, tenantID string, tier types.AccountTier, class types.ResourceClass) error {
	ctx, span := e.tracer.Start(ctx, "quota.Enforcer.CheckQuota")
	defer span.End()

	limit, err := e.limit(ctx, tenantID, tier, class)
	if err != nil {
		return err
	}

	if limit == types.Unlimited {
		return nil
	}

	count, err := e.storage.CountResource(ctx, tenantID, class)
	if err != nil {
		return fmt.Errorf("failed to count %s: %w", class, err)
	}

	if count >= limit {
		return &denial.QuotaDenial{
			Resource:     class,
			CurrentCount: count,
			MaxAllowed:   limit,
		}
	}

	return nil
}

// Usage reports count and limit of every resource class.
// Unlimited classes are still counted.
func (e *Enforcer) Usage(ctx context.Context, tenantID string, tier types.AccountTier) ([]Usage, error) {
	ctx, span := e.tracer.Start(ctx, "quota.Enforcer.Usage")
	defer span.End()

	usage := make([]Usage, 0, len(types.AllResourceClasses()))

	for _, class := range types.AllResourceClasses() {
		limit, err := e.limit(ctx, tenantID, tier, class)
		if err != nil {
			return nil, err
		}

		count, err := e.storage.CountResource(ctx, tenantID, class)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", class, err)
		}

		usage = append(usage, Usage{Resource: class, CurrentCount: count, MaxAllowed: limit})
	}

	return usage, nil
}

// limit resolves account classes against the tenant capacities and any other
// class against the plan of the caller's tier.
func (e *Enforcer) limit(ctx context.Context, tenantID string, tier types.AccountTier, class types.ResourceClass) (int64, error) {
	accountTier, ok := class.AccountTier()
	if !ok {
		return PlanLimit(tier, class)
	}

	t, err := e.tenant(ctx, tenantID)
	if err != nil {
		return 0, err
	}

	return t.Limits.For(accountTier), nil
}

// tenant reuses the validated tenant of the request when the pipeline already loaded it.
func (e *Enforcer) tenant(ctx context.Context, tenantID string) (*types.Tenant, error) {
	if t, ok := tenant.FromContext(ctx); ok && t.ID == tenantID {
		return t, nil
	}

	t, err := e.storage.GetTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, denial.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to load tenant %s: %w", tenantID, err)
	}

	return t, nil
}

func NewEnforcer(s StorageInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Enforcer {
	e := new(Enforcer)

	e.storage = s

	e.tracer = tracer
	e.monitor = monitor
	e.logger = logger

	return e
}
