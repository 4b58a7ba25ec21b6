// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/practice-service/internal/denial"
	httptypes "github.com/canonical/practice-service/internal/http/types"
	"github.com/canonical/practice-service/internal/types"
	"github.com/canonical/practice-service/pkg/authentication"
	"github.com/canonical/practice-service/pkg/tenant"
)

//go:generate mockgen -build_flags=--mod=mod -package pipeline -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package pipeline -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package pipeline -destination ./mock_tracer.go -source=../../internal/tracing/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package pipeline -destination ./mock_interfaces.go -source=./interfaces.go

const testAdminKey = "s3cr3t-admin-key"

func passthroughTracer(ctrl *gomock.Controller) *MockTracingInterface {
	tracer := NewMockTracingInterface(ctrl)
	tracer.EXPECT().Start(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
			return ctx, trace.SpanFromContext(ctx)
		},
	).AnyTimes()

	return tracer
}

type pipelineMocks struct {
	tokens   *MockTokenVerifierInterface
	tenants  *MockTenantValidatorInterface
	monitor  *MockMonitorInterface
	logger   *MockLoggerInterface
	security *MockSecurityLoggerInterface
}

func newTestPipeline(ctrl *gomock.Controller, cfg Config) (*Pipeline, pipelineMocks) {
	m := pipelineMocks{
		tokens:   NewMockTokenVerifierInterface(ctrl),
		tenants:  NewMockTenantValidatorInterface(ctrl),
		monitor:  NewMockMonitorInterface(ctrl),
		logger:   NewMockLoggerInterface(ctrl),
		security: NewMockSecurityLoggerInterface(ctrl),
	}

	m.logger.EXPECT().Debugf(gomock.Any(), gomock.Any()).AnyTimes()
	m.logger.EXPECT().Errorf(gomock.Any(), gomock.Any()).AnyTimes()
	m.logger.EXPECT().Security().Return(m.security).AnyTimes()

	return NewPipeline(cfg, m.tokens, m.tenants, passthroughTracer(ctrl), m.monitor, m.logger), m
}

func claimsFor(tier types.AccountTier) *authentication.Claims {
	claims := &authentication.Claims{TenantID: "tenant-1", Tier: tier, Type: authentication.AccessToken}
	claims.Subject = "principal-1"
	return claims
}

func activeTenant() *types.Tenant {
	return &types.Tenant{ID: "tenant-1", Active: true}
}

func bearer(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v0/reports", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// reached records whether the protected handler ran and what it saw in its context
type reached struct {
	called bool
	claims *authentication.Claims
	tenant *types.Tenant
}

func (h *reached) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.claims, _ = authentication.GetClaims(r.Context())
	h.tenant, _ = tenant.FromContext(r.Context())
	w.WriteHeader(http.StatusOK)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) httptypes.ErrorResponse {
	t.Helper()

	var body httptypes.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}

	return body
}

func TestPipeline_Protect(t *testing.T) {
	tests := []struct {
		name           string
		token          string
		capability     types.Capability
		setupMocks     func(pipelineMocks)
		expectedStatus int
		expectedKind   denial.Kind
	}{
		{
			name:       "admitted",
			token:      "good",
			capability: types.CapabilityReports,
			setupMocks: func(m pipelineMocks) {
				m.tokens.EXPECT().VerifyAccess(gomock.Any(), "good").Return(claimsFor(types.TierComposite), nil)
				m.tenants.EXPECT().Validate(gomock.Any(), "tenant-1").Return(activeTenant(), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:       "missing token stops before the tenant is read",
			capability: types.CapabilityReports,
			setupMocks: func(m pipelineMocks) {
				m.monitor.EXPECT().IncDenialCounter(map[string]string{"kind": "TokenInvalid"}).Return(nil)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedKind:   denial.KindTokenInvalid,
		},
		{
			name:       "expired token",
			token:      "stale",
			capability: types.CapabilityReports,
			setupMocks: func(m pipelineMocks) {
				m.tokens.EXPECT().VerifyAccess(gomock.Any(), "stale").Return(nil, denial.ErrTokenExpired)
				m.monitor.EXPECT().IncDenialCounter(map[string]string{"kind": "TokenExpired"}).Return(nil)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedKind:   denial.KindTokenExpired,
		},
		{
			name:       "inactive tenant stops before the capability check",
			token:      "good",
			capability: types.CapabilityCashFlow,
			setupMocks: func(m pipelineMocks) {
				m.tokens.EXPECT().VerifyAccess(gomock.Any(), "good").Return(claimsFor(types.TierSimple), nil)
				m.tenants.EXPECT().Validate(gomock.Any(), "tenant-1").Return(nil, denial.ErrTenantInactive)
				m.monitor.EXPECT().IncDenialCounter(map[string]string{"kind": "TenantInactive"}).Return(nil)
			},
			expectedStatus: http.StatusForbidden,
			expectedKind:   denial.KindTenantInactive,
		},
		{
			name:       "tier lacks the capability",
			token:      "good",
			capability: types.CapabilityCashFlow,
			setupMocks: func(m pipelineMocks) {
				m.tokens.EXPECT().VerifyAccess(gomock.Any(), "good").Return(claimsFor(types.TierSimple), nil)
				m.tenants.EXPECT().Validate(gomock.Any(), "tenant-1").Return(activeTenant(), nil)
				m.security.EXPECT().AuthzFailure("principal-1", "cash_flow")
				m.monitor.EXPECT().IncDenialCounter(map[string]string{"kind": "CapabilityDenied"}).Return(nil)
			},
			expectedStatus: http.StatusForbidden,
			expectedKind:   denial.KindCapabilityDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			p, m := newTestPipeline(ctrl, Config{AdminKey: testAdminKey})
			tt.setupMocks(m)

			h := new(reached)
			w := httptest.NewRecorder()
			p.Protect(tt.capability)(h).ServeHTTP(w, bearer(tt.token))

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedStatus == http.StatusOK {
				if h.claims == nil || h.claims.Subject != "principal-1" {
					t.Errorf("expected claims in the handler context, got %+v", h.claims)
				}
				if h.tenant == nil || h.tenant.ID != "tenant-1" {
					t.Errorf("expected the validated tenant in the handler context, got %+v", h.tenant)
				}
				return
			}

			if h.called {
				t.Error("handler ran for a refused request")
			}

			if body := decodeError(t, w); body.Error != tt.expectedKind {
				t.Errorf("expected kind %s, got %s", tt.expectedKind, body.Error)
			}
		})
	}
}

func TestPipeline_CapabilityDenialCarriesUpgradePath(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, m := newTestPipeline(ctrl, Config{})
	m.tokens.EXPECT().VerifyAccess(gomock.Any(), "good").Return(claimsFor(types.TierSimple), nil)
	m.tenants.EXPECT().Validate(gomock.Any(), "tenant-1").Return(activeTenant(), nil)
	m.security.EXPECT().AuthzFailure(gomock.Any(), gomock.Any())
	m.monitor.EXPECT().IncDenialCounter(gomock.Any()).Return(nil)

	w := httptest.NewRecorder()
	p.Protect(types.CapabilityCashFlow)(new(reached)).ServeHTTP(w, bearer("good"))

	body := decodeError(t, w)

	if body.CurrentAccount != types.TierSimple || body.RequestedCapability != types.CapabilityCashFlow {
		t.Errorf("unexpected denial body %+v", body)
	}

	expected := []types.AccountTier{types.TierComposite, types.TierManagerial}
	if len(body.SuggestedAccounts) != len(expected) {
		t.Fatalf("expected suggestions %v, got %v", expected, body.SuggestedAccounts)
	}
	for i := range expected {
		if body.SuggestedAccounts[i] != expected[i] {
			t.Errorf("expected suggestions %v, got %v", expected, body.SuggestedAccounts)
		}
	}
}

func TestPipeline_TenantDeactivatedMidSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, m := newTestPipeline(ctrl, Config{})

	m.tokens.EXPECT().VerifyAccess(gomock.Any(), "good").Return(claimsFor(types.TierManagerial), nil).Times(2)
	gomock.InOrder(
		m.tenants.EXPECT().Validate(gomock.Any(), "tenant-1").Return(activeTenant(), nil),
		m.tenants.EXPECT().Validate(gomock.Any(), "tenant-1").Return(nil, denial.ErrTenantInactive),
	)
	m.monitor.EXPECT().IncDenialCounter(map[string]string{"kind": "TenantInactive"}).Return(nil)

	handler := p.Protect(types.CapabilitySettings)(new(reached))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, bearer("good"))
	if first.Code != http.StatusOK {
		t.Fatalf("expected the first request to pass, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, bearer("good"))
	if second.Code != http.StatusForbidden {
		t.Fatalf("expected the still valid token to be refused once the tenant is inactive, got %d", second.Code)
	}
}

func TestPipeline_Authenticated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, m := newTestPipeline(ctrl, Config{})
	m.tokens.EXPECT().VerifyAccess(gomock.Any(), "good").Return(claimsFor(types.TierSimple), nil)
	m.tenants.EXPECT().Validate(gomock.Any(), "tenant-1").Return(activeTenant(), nil)

	h := new(reached)
	w := httptest.NewRecorder()
	p.Authenticated()(h).ServeHTTP(w, bearer("good"))

	if w.Code != http.StatusOK || !h.called {
		t.Fatalf("expected any tier to pass, got %d", w.Code)
	}
}

func TestPipeline_RateLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, m := newTestPipeline(ctrl, Config{RateLimitRPS: 0.001, RateLimitBurst: 1})
	m.tokens.EXPECT().VerifyAccess(gomock.Any(), "good").Return(claimsFor(types.TierSimple), nil).Times(2)
	m.tenants.EXPECT().Validate(gomock.Any(), "tenant-1").Return(activeTenant(), nil).Times(2)
	m.monitor.EXPECT().IncDenialCounter(map[string]string{"kind": "RateLimited"}).Return(nil)

	handler := p.Protect(types.CapabilityClients)(new(reached))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, bearer("good"))

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, bearer("good"))

	if first.Code != http.StatusOK {
		t.Errorf("expected the first request to pass, got %d", first.Code)
	}

	if second.Code != http.StatusTooManyRequests {
		t.Errorf("expected the burst to be exhausted, got %d", second.Code)
	}
}

func TestPipeline_Admin(t *testing.T) {
	tests := []struct {
		name           string
		configured     string
		presented      string
		expectedStatus int
	}{
		{name: "matching key", configured: testAdminKey, presented: testAdminKey, expectedStatus: http.StatusOK},
		{name: "wrong key", configured: testAdminKey, presented: "s3cr3t-admin-kez", expectedStatus: http.StatusUnauthorized},
		{name: "prefix of the key", configured: testAdminKey, presented: "s3cr3t", expectedStatus: http.StatusUnauthorized},
		{name: "missing key", configured: testAdminKey, presented: "", expectedStatus: http.StatusUnauthorized},
		{name: "no key configured", configured: "", presented: "", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			p, m := newTestPipeline(ctrl, Config{AdminKey: tt.configured})
			if tt.expectedStatus != http.StatusOK {
				m.security.EXPECT().AdminAuthFailure(gomock.Any())
				m.monitor.EXPECT().IncDenialCounter(map[string]string{"kind": "AdminUnauthorized"}).Return(nil)
			}

			req := httptest.NewRequest(http.MethodGet, "/api/v0/admin/tenants", nil)
			if tt.presented != "" {
				req.Header.Set(AdminKeyHeader, tt.presented)
			}

			h := new(reached)
			w := httptest.NewRecorder()
			p.Admin()(h).ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if h.called != (tt.expectedStatus == http.StatusOK) {
				t.Errorf("unexpected handler call state %v", h.called)
			}
		})
	}
}

func TestPipeline_AdminKeyIsCopied(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cfg := Config{AdminKey: testAdminKey}
	p, _ := newTestPipeline(ctrl, cfg)
	cfg.AdminKey = "changed"

	req := httptest.NewRequest(http.MethodGet, "/api/v0/admin/tenants", nil)
	req.Header.Set(AdminKeyHeader, testAdminKey)

	w := httptest.NewRecorder()
	p.Admin()(new(reached)).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected the key captured at construction to be used, got %d", w.Code)
	}
}
