// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package quota

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/canonical/practice-service/internal/denial"
	"github.com/canonical/practice-service/internal/types"
	"github.com/canonical/practice-service/pkg/authentication"
)

func TestMiddleware_Guard(t *testing.T) {
	tests := []struct {
		name               string
		method             string
		setupMocks         func(*MockEnforcerInterface, *MockMonitorInterface)
		expectedStatusCode int
		expectHandler      bool
	}{
		{
			name:               "reads are not checked",
			method:             http.MethodGet,
			setupMocks:         func(*MockEnforcerInterface, *MockMonitorInterface) {},
			expectedStatusCode: http.StatusOK,
			expectHandler:      true,
		},
		{
			name:   "creation within quota",
			method: http.MethodPost,
			setupMocks: func(e *MockEnforcerInterface, m *MockMonitorInterface) {
				e.EXPECT().CheckQuota(gomock.Any(), "tenant-1", types.TierSimple, types.ResourceClients).Return(nil)
			},
			expectedStatusCode: http.StatusOK,
			expectHandler:      true,
		},
		{
			name:   "creation over quota",
			method: http.MethodPost,
			setupMocks: func(e *MockEnforcerInterface, m *MockMonitorInterface) {
				e.EXPECT().CheckQuota(gomock.Any(), "tenant-1", types.TierSimple, types.ResourceClients).
					Return(&denial.QuotaDenial{Resource: types.ResourceClients, CurrentCount: 100, MaxAllowed: 100})
				m.EXPECT().IncDenialCounter(map[string]string{"kind": "QuotaExceeded"}).Return(nil)
			},
			expectedStatusCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockEnforcer := NewMockEnforcerInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)
			tt.setupMocks(mockEnforcer, mockMonitor)

			called := false
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})

			m := NewMiddleware(mockEnforcer, passthroughTracer(ctrl), mockMonitor, NewMockLoggerInterface(ctrl))

			req := httptest.NewRequest(tt.method, "/api/v0/clients", nil)
			req = req.WithContext(authentication.WithClaims(req.Context(), &authentication.Claims{TenantID: "tenant-1", Tier: types.TierSimple}))
			rr := httptest.NewRecorder()

			m.Guard(types.ResourceClients)(handler).ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatusCode {
				t.Fatalf("expected status %d, got %d", tt.expectedStatusCode, rr.Code)
			}

			if called != tt.expectHandler {
				t.Errorf("expected handler called %v, got %v", tt.expectHandler, called)
			}

			if tt.expectedStatusCode != http.StatusForbidden {
				return
			}

			var body map[string]interface{}
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}

			if body["error"] != "QuotaExceeded" || body["currentCount"] != float64(100) || body["maxAllowed"] != float64(100) {
				t.Errorf("unexpected denial body %v", body)
			}
		})
	}
}
