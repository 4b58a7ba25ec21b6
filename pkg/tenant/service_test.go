// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/canonical/practice-service/internal/storage"
	"github.com/canonical/practice-service/internal/types"
)

func TestService_CreateTenant(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := NewMockStorageInterface(ctrl)
	mockAudit := NewMockAuditRecorderInterface(ctrl)
	mockLogger := NewMockLoggerInterface(ctrl)
	mockSecurity := NewMockSecurityLoggerInterface(ctrl)

	input := &types.Tenant{Name: "Acme Legal", Active: true}
	created := &types.Tenant{ID: "tenant-1", Name: "Acme Legal", Active: true}

	mockStorage.EXPECT().CreateTenant(gomock.Any(), input).Return(created, nil)
	mockAudit.EXPECT().Record(gomock.Any(), AdminActor, "tenant-1", "tenant.create", "tenant", "tenant-1", gomock.Any())
	mockLogger.EXPECT().Security().Return(mockSecurity)
	mockSecurity.EXPECT().AdminAction("tenant.create", "tenant-1")

	s := NewService(mockStorage, mockAudit, passthroughTracer(ctrl), NewMockMonitorInterface(ctrl), mockLogger)

	got, err := s.CreateTenant(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.ID != "tenant-1" {
		t.Errorf("expected tenant-1, got %s", got.ID)
	}
}

func TestService_CreateTenantFailureIsNotAudited(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := NewMockStorageInterface(ctrl)
	mockStorage.EXPECT().CreateTenant(gomock.Any(), gomock.Any()).Return(nil, storage.ErrDuplicateKey)

	s := NewService(mockStorage, NewMockAuditRecorderInterface(ctrl), passthroughTracer(ctrl), NewMockMonitorInterface(ctrl), NewMockLoggerInterface(ctrl))

	if _, err := s.CreateTenant(context.Background(), &types.Tenant{Name: "Acme Legal"}); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected duplicate key error, got %v", err)
	}
}

func TestService_UpdateTenant(t *testing.T) {
	tests := []struct {
		name        string
		setupMocks  func(*MockStorageInterface, *MockAuditRecorderInterface, *MockLoggerInterface, *MockSecurityLoggerInterface)
		expectedErr error
	}{
		{
			name: "suspend",
			setupMocks: func(s *MockStorageInterface, a *MockAuditRecorderInterface, l *MockLoggerInterface, sec *MockSecurityLoggerInterface) {
				s.EXPECT().UpdateTenant(gomock.Any(), gomock.Any(), []string{"active"}).Return(nil)
				s.EXPECT().GetTenant(gomock.Any(), "tenant-1").Return(&types.Tenant{ID: "tenant-1", Active: false}, nil)
				a.EXPECT().Record(gomock.Any(), AdminActor, "tenant-1", "tenant.update", "tenant", "tenant-1", map[string]any{
					"paths":  []string{"active"},
					"active": false,
				})
				l.EXPECT().Security().Return(sec)
				sec.EXPECT().AdminAction("tenant.update", "tenant-1")
			},
		},
		{
			name: "unknown tenant",
			setupMocks: func(s *MockStorageInterface, a *MockAuditRecorderInterface, l *MockLoggerInterface, sec *MockSecurityLoggerInterface) {
				s.EXPECT().UpdateTenant(gomock.Any(), gomock.Any(), []string{"active"}).Return(storage.ErrNotFound)
			},
			expectedErr: storage.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStorage := NewMockStorageInterface(ctrl)
			mockAudit := NewMockAuditRecorderInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)
			mockSecurity := NewMockSecurityLoggerInterface(ctrl)

			tt.setupMocks(mockStorage, mockAudit, mockLogger, mockSecurity)

			s := NewService(mockStorage, mockAudit, passthroughTracer(ctrl), NewMockMonitorInterface(ctrl), mockLogger)

			updated, err := s.UpdateTenant(context.Background(), &types.Tenant{ID: "tenant-1", Active: false}, []string{"active"})

			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("expected error %v, got %v", tt.expectedErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if updated.Active {
				t.Error("expected tenant to be suspended")
			}
		})
	}
}
