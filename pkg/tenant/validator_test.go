// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/practice-service/internal/denial"
	"github.com/canonical/practice-service/internal/storage"
	"github.com/canonical/practice-service/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package tenant -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package tenant -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package tenant -destination ./mock_tracer.go -source=../../internal/tracing/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package tenant -destination ./mock_interfaces.go -source=./interfaces.go

func passthroughTracer(ctrl *gomock.Controller) *MockTracingInterface {
	tracer := NewMockTracingInterface(ctrl)
	tracer.EXPECT().Start(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
			return ctx, trace.SpanFromContext(ctx)
		},
	).AnyTimes()

	return tracer
}

func TestValidator_Validate(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Second)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name        string
		stored      *types.Tenant
		storeErr    error
		expectedErr error
	}{
		{
			name:   "active without expiry",
			stored: &types.Tenant{ID: "tenant-1", Active: true},
		},
		{
			name:   "active with future expiry",
			stored: &types.Tenant{ID: "tenant-1", Active: true, ExpiresAt: &future},
		},
		{
			name:        "unknown tenant",
			storeErr:    storage.ErrNotFound,
			expectedErr: denial.ErrTenantNotFound,
		},
		{
			name:        "suspended tenant",
			stored:      &types.Tenant{ID: "tenant-1", Active: false, ExpiresAt: &future},
			expectedErr: denial.ErrTenantInactive,
		},
		{
			name:        "suspension is checked before expiry",
			stored:      &types.Tenant{ID: "tenant-1", Active: false, ExpiresAt: &past},
			expectedErr: denial.ErrTenantInactive,
		},
		{
			name:        "expired tenant",
			stored:      &types.Tenant{ID: "tenant-1", Active: true, ExpiresAt: &past},
			expectedErr: denial.ErrTenantExpired,
		},
		{
			name:        "expiry equal to now is expired",
			stored:      &types.Tenant{ID: "tenant-1", Active: true, ExpiresAt: &now},
			expectedErr: denial.ErrTenantExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStorage := NewMockStorageInterface(ctrl)
			mockStorage.EXPECT().GetTenant(gomock.Any(), "tenant-1").Return(tt.stored, tt.storeErr)

			v := NewValidator(mockStorage, passthroughTracer(ctrl), NewMockMonitorInterface(ctrl), NewMockLoggerInterface(ctrl))
			v.now = func() time.Time { return now }

			got, err := v.Validate(context.Background(), "tenant-1")

			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("expected error %v, got %v", tt.expectedErr, err)
				}
				if got != nil {
					t.Errorf("expected no tenant on denial, got %+v", got)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ID != "tenant-1" {
				t.Errorf("expected tenant-1, got %s", got.ID)
			}
		})
	}
}

func TestValidator_StoreFailureIsNotADenial(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := NewMockStorageInterface(ctrl)
	mockStorage.EXPECT().GetTenant(gomock.Any(), "tenant-1").Return(nil, errors.New("connection refused"))

	v := NewValidator(mockStorage, passthroughTracer(ctrl), NewMockMonitorInterface(ctrl), NewMockLoggerInterface(ctrl))

	_, err := v.Validate(context.Background(), "tenant-1")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if _, ok := denial.KindOf(err); ok {
		t.Errorf("expected an internal error, got denial %v", err)
	}
}

func TestValidator_ReadsEveryCall(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := NewMockStorageInterface(ctrl)
	gomock.InOrder(
		mockStorage.EXPECT().GetTenant(gomock.Any(), "tenant-1").Return(&types.Tenant{ID: "tenant-1", Active: true}, nil),
		mockStorage.EXPECT().GetTenant(gomock.Any(), "tenant-1").Return(&types.Tenant{ID: "tenant-1", Active: false}, nil),
	)

	v := NewValidator(mockStorage, passthroughTracer(ctrl), NewMockMonitorInterface(ctrl), NewMockLoggerInterface(ctrl))

	if _, err := v.Validate(context.Background(), "tenant-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := v.Validate(context.Background(), "tenant-1"); !errors.Is(err, denial.ErrTenantInactive) {
		t.Errorf("expected suspension to apply on the next call, got %v", err)
	}
}
