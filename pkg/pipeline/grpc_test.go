// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package pipeline

import (
	"context"
	"testing"

	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/canonical/practice-service/internal/denial"
	"github.com/canonical/practice-service/internal/types"
	"github.com/canonical/practice-service/pkg/authentication"
)

func TestPipeline_GRPCInterceptor(t *testing.T) {
	tests := []struct {
		name         string
		method       string
		md           metadata.MD
		setupMocks   func(pipelineMocks)
		expectedCode codes.Code
	}{
		{
			name:         "health checks are exempt",
			method:       "/grpc.health.v1.Health/Check",
			setupMocks:   func(pipelineMocks) {},
			expectedCode: codes.OK,
		},
		{
			name:   "missing token",
			method: "/practice.v0.Reports/Get",
			setupMocks: func(m pipelineMocks) {
				m.monitor.EXPECT().IncDenialCounter(map[string]string{"kind": "TokenInvalid"}).Return(nil)
			},
			expectedCode: codes.Unauthenticated,
		},
		{
			name:   "expired tenant",
			method: "/practice.v0.Reports/Get",
			md:     metadata.Pairs("authorization", "Bearer good"),
			setupMocks: func(m pipelineMocks) {
				m.tokens.EXPECT().VerifyAccess(gomock.Any(), "good").Return(claimsFor(types.TierSimple), nil)
				m.tenants.EXPECT().Validate(gomock.Any(), "tenant-1").Return(nil, denial.ErrTenantExpired)
				m.monitor.EXPECT().IncDenialCounter(map[string]string{"kind": "TenantExpired"}).Return(nil)
			},
			expectedCode: codes.PermissionDenied,
		},
		{
			name:   "admitted",
			method: "/practice.v0.Reports/Get",
			md:     metadata.Pairs("authorization", "Bearer good"),
			setupMocks: func(m pipelineMocks) {
				m.tokens.EXPECT().VerifyAccess(gomock.Any(), "good").Return(claimsFor(types.TierSimple), nil)
				m.tenants.EXPECT().Validate(gomock.Any(), "tenant-1").Return(activeTenant(), nil)
			},
			expectedCode: codes.OK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			p, m := newTestPipeline(ctrl, Config{})
			tt.setupMocks(m)

			ctx := context.Background()
			if tt.md != nil {
				ctx = metadata.NewIncomingContext(ctx, tt.md)
			}

			handler := func(ctx context.Context, _ any) (any, error) {
				if tt.method != "/grpc.health.v1.Health/Check" {
					if _, ok := authentication.GetClaims(ctx); !ok {
						t.Error("expected claims in the handler context")
					}
				}
				return "ok", nil
			}

			_, err := p.GRPCInterceptor()(ctx, nil, &grpc.UnaryServerInfo{FullMethod: tt.method}, handler)

			if code := status.Code(err); code != tt.expectedCode {
				t.Errorf("expected code %s, got %s (%v)", tt.expectedCode, code, err)
			}
		})
	}
}
