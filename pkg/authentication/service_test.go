// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/canonical/practice-service/internal/denial"
	"github.com/canonical/practice-service/internal/storage"
	"github.com/canonical/practice-service/internal/types"
)

func hashPassword(t *testing.T, password string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	return string(hash)
}

func TestService_Login(t *testing.T) {
	hash := hashPassword(t, "correct horse")

	principal := func(active bool) *types.Principal {
		return &types.Principal{
			ID:           "principal-1",
			TenantID:     "tenant-1",
			Email:        "jane@acme.test",
			PasswordHash: hash,
			Tier:         types.TierSimple,
			Active:       active,
		}
	}

	tests := []struct {
		name        string
		password    string
		setupMocks  func(*MockPrincipalStoreInterface, *MockTenantValidatorInterface, *MockTokenServiceInterface, *MockAuditRecorderInterface)
		expectedErr error
	}{
		{
			name:     "valid credentials",
			password: "correct horse",
			setupMocks: func(p *MockPrincipalStoreInterface, v *MockTenantValidatorInterface, tk *MockTokenServiceInterface, a *MockAuditRecorderInterface) {
				p.EXPECT().GetPrincipalByEmail(gomock.Any(), "jane@acme.test").Return(principal(true), nil)
				v.EXPECT().Validate(gomock.Any(), "tenant-1").Return(&types.Tenant{ID: "tenant-1", Active: true}, nil)
				tk.EXPECT().Issue(gomock.Any(), "principal-1", "tenant-1", types.TierSimple).Return(&TokenPair{AccessToken: "a", RefreshToken: "r"}, nil)
				p.EXPECT().TouchPrincipalLogin(gomock.Any(), "principal-1", gomock.Any()).Return(nil)
				a.EXPECT().Record(gomock.Any(), "principal-1", "tenant-1", "auth.login", "principal", "principal-1", gomock.Nil())
			},
		},
		{
			name:     "login still succeeds when the last login timestamp cannot be written",
			password: "correct horse",
			setupMocks: func(p *MockPrincipalStoreInterface, v *MockTenantValidatorInterface, tk *MockTokenServiceInterface, a *MockAuditRecorderInterface) {
				p.EXPECT().GetPrincipalByEmail(gomock.Any(), "jane@acme.test").Return(principal(true), nil)
				v.EXPECT().Validate(gomock.Any(), "tenant-1").Return(&types.Tenant{ID: "tenant-1", Active: true}, nil)
				tk.EXPECT().Issue(gomock.Any(), "principal-1", "tenant-1", types.TierSimple).Return(&TokenPair{AccessToken: "a", RefreshToken: "r"}, nil)
				p.EXPECT().TouchPrincipalLogin(gomock.Any(), "principal-1", gomock.Any()).Return(errors.New("db down"))
				a.EXPECT().Record(gomock.Any(), "principal-1", "tenant-1", "auth.login", "principal", "principal-1", gomock.Nil())
			},
		},
		{
			name:     "unknown email",
			password: "correct horse",
			setupMocks: func(p *MockPrincipalStoreInterface, v *MockTenantValidatorInterface, tk *MockTokenServiceInterface, a *MockAuditRecorderInterface) {
				p.EXPECT().GetPrincipalByEmail(gomock.Any(), "jane@acme.test").Return(nil, storage.ErrNotFound)
			},
			expectedErr: denial.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			password: "battery staple",
			setupMocks: func(p *MockPrincipalStoreInterface, v *MockTenantValidatorInterface, tk *MockTokenServiceInterface, a *MockAuditRecorderInterface) {
				p.EXPECT().GetPrincipalByEmail(gomock.Any(), "jane@acme.test").Return(principal(true), nil)
			},
			expectedErr: denial.ErrInvalidCredentials,
		},
		{
			name:     "deactivated principal",
			password: "correct horse",
			setupMocks: func(p *MockPrincipalStoreInterface, v *MockTenantValidatorInterface, tk *MockTokenServiceInterface, a *MockAuditRecorderInterface) {
				p.EXPECT().GetPrincipalByEmail(gomock.Any(), "jane@acme.test").Return(principal(false), nil)
			},
			expectedErr: denial.ErrPrincipalInactive,
		},
		{
			name:     "expired tenant",
			password: "correct horse",
			setupMocks: func(p *MockPrincipalStoreInterface, v *MockTenantValidatorInterface, tk *MockTokenServiceInterface, a *MockAuditRecorderInterface) {
				p.EXPECT().GetPrincipalByEmail(gomock.Any(), "jane@acme.test").Return(principal(true), nil)
				v.EXPECT().Validate(gomock.Any(), "tenant-1").Return(nil, denial.ErrTenantExpired)
			},
			expectedErr: denial.ErrTenantExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			principals := NewMockPrincipalStoreInterface(ctrl)
			tenants := NewMockTenantValidatorInterface(ctrl)
			tokens := NewMockTokenServiceInterface(ctrl)
			audit := NewMockAuditRecorderInterface(ctrl)
			monitor := NewMockMonitorInterface(ctrl)

			tt.setupMocks(principals, tenants, tokens, audit)

			s := NewService(tokens, principals, tenants, audit, passthroughTracer(ctrl), monitor, quietLogger(ctrl))

			pair, err := s.Login(context.Background(), "jane@acme.test", tt.password)

			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("expected error %v, got %v", tt.expectedErr, err)
				}
				if pair != nil {
					t.Errorf("expected no tokens, got %+v", pair)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if pair.AccessToken != "a" || pair.RefreshToken != "r" {
				t.Errorf("unexpected token pair %+v", pair)
			}
		})
	}
}

func TestService_RefreshDelegatesToTokenService(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tokens := NewMockTokenServiceInterface(ctrl)
	tokens.EXPECT().Refresh(gomock.Any(), "refresh-token").Return(&TokenPair{AccessToken: "new"}, nil)

	s := NewService(tokens, nil, nil, nil, passthroughTracer(ctrl), NewMockMonitorInterface(ctrl), quietLogger(ctrl))

	pair, err := s.Refresh(context.Background(), "refresh-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pair.AccessToken != "new" {
		t.Errorf("expected refreshed access token, got %s", pair.AccessToken)
	}
}
