// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/canonical/practice-service/internal/denial"
	"github.com/canonical/practice-service/internal/logging"
	"github.com/canonical/practice-service/internal/monitoring"
	"github.com/canonical/practice-service/internal/storage"
	"github.com/canonical/practice-service/internal/tracing"
	"github.com/canonical/practice-service/internal/types"
)

var _ ValidatorInterface = (*Validator)(nil)

// Validator re-reads the tenant on every call. Nothing is cached and a suspension
// applies to the very next request.
type Validator struct {
	storage StorageInterface

	now func() time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (v *Validator) Validate(ctx context.Context, tenantID string) (*types.Tenant, error) {
	ctx, span := v.tracer.Start(ctx, "tenant.Validator.Validate")
	defer span.End()

	t, err := v.storage.GetTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, denial.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to load tenant %s: %w", tenantID, err)
	}

	if !t.Active {
		return nil, denial.ErrTenantInactive
	}

	if t.Expired(v.now()) {
		return nil, denial.ErrTenantExpired
	}

	return t, nil
}

func NewValidator(s StorageInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Validator {
	v := new(Validator)

	v.storage = s
	v.now = time.Now

	v.tracer = tracer
	v.monitor = monitor
	v.logger = logger

	return v
}
