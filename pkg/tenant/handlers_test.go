// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"github.com/canonical/practice-service/internal/storage"
	"github.com/canonical/practice-service/internal/types"
)

func TestAPI_CreateTenant(t *testing.T) {
	tests := []struct {
		name               string
		body               string
		setupMocks         func(*MockServiceInterface)
		expectedStatusCode int
	}{
		{
			name: "unlimited by default",
			body: `{"name":"Acme Legal","subscription_tier":"professional"}`,
			setupMocks: func(s *MockServiceInterface) {
				s.EXPECT().CreateTenant(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ interface{}, t *types.Tenant) (*types.Tenant, error) {
						if t.Limits.MaxSimpleAccounts != types.Unlimited || t.Limits.MaxManagerialAccounts != types.Unlimited {
							return nil, errors.New("expected unlimited capacities")
						}
						if !t.Active {
							return nil, errors.New("expected new tenant to be active")
						}
						t.ID = "tenant-1"
						return t, nil
					},
				)
			},
			expectedStatusCode: http.StatusCreated,
		},
		{
			name: "explicit capacities",
			body: `{"name":"Acme Legal","limits":{"max_simple_accounts":2,"max_composite_accounts":1,"max_managerial_accounts":-1}}`,
			setupMocks: func(s *MockServiceInterface) {
				s.EXPECT().CreateTenant(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ interface{}, t *types.Tenant) (*types.Tenant, error) {
						if t.Limits.MaxSimpleAccounts != 2 || t.Limits.MaxCompositeAccounts != 1 {
							return nil, errors.New("unexpected capacities")
						}
						return t, nil
					},
				)
			},
			expectedStatusCode: http.StatusCreated,
		},
		{
			name:               "capacity below unlimited",
			body:               `{"name":"Acme Legal","limits":{"max_simple_accounts":-2,"max_composite_accounts":1,"max_managerial_accounts":1}}`,
			setupMocks:         func(*MockServiceInterface) {},
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "missing name",
			body:               `{"subscription_tier":"professional"}`,
			setupMocks:         func(*MockServiceInterface) {},
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name: "duplicate",
			body: `{"name":"Acme Legal"}`,
			setupMocks: func(s *MockServiceInterface) {
				s.EXPECT().CreateTenant(gomock.Any(), gomock.Any()).Return(nil, storage.ErrDuplicateKey)
			},
			expectedStatusCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := NewMockServiceInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)
			mockLogger.EXPECT().Errorf(gomock.Any(), gomock.Any()).AnyTimes()

			tt.setupMocks(mockService)

			mux := chi.NewMux()
			NewAPI(mockService, passthroughTracer(ctrl), NewMockMonitorInterface(ctrl), mockLogger).RegisterEndpoints(mux)

			req := httptest.NewRequest(http.MethodPost, "/tenants", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()

			mux.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatusCode {
				t.Errorf("expected status %d, got %d: %s", tt.expectedStatusCode, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestAPI_UpdateTenant(t *testing.T) {
	expiry := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name               string
		body               string
		setupMocks         func(*MockServiceInterface)
		expectedStatusCode int
	}{
		{
			name: "suspend",
			body: `{"active":false}`,
			setupMocks: func(s *MockServiceInterface) {
				s.EXPECT().UpdateTenant(gomock.Any(), &types.Tenant{ID: "tenant-1", Active: false}, []string{"active"}).
					Return(&types.Tenant{ID: "tenant-1", Active: false}, nil)
			},
			expectedStatusCode: http.StatusOK,
		},
		{
			name: "renew subscription",
			body: `{"expires_at":"2027-01-01T00:00:00Z","subscription_tier":"enterprise"}`,
			setupMocks: func(s *MockServiceInterface) {
				s.EXPECT().UpdateTenant(gomock.Any(), &types.Tenant{ID: "tenant-1", SubscriptionTier: "enterprise", ExpiresAt: &expiry}, []string{"subscription_tier", "expires_at"}).
					Return(&types.Tenant{ID: "tenant-1", Active: true, ExpiresAt: &expiry}, nil)
			},
			expectedStatusCode: http.StatusOK,
		},
		{
			name: "clear expiry",
			body: `{"clear_expiry":true}`,
			setupMocks: func(s *MockServiceInterface) {
				s.EXPECT().UpdateTenant(gomock.Any(), &types.Tenant{ID: "tenant-1"}, []string{"expires_at"}).
					Return(&types.Tenant{ID: "tenant-1", Active: true}, nil)
			},
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "expiry and clear together",
			body:               `{"clear_expiry":true,"expires_at":"2027-01-01T00:00:00Z"}`,
			setupMocks:         func(*MockServiceInterface) {},
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "nothing to update",
			body:               `{}`,
			setupMocks:         func(*MockServiceInterface) {},
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name: "unknown tenant",
			body: `{"active":true}`,
			setupMocks: func(s *MockServiceInterface) {
				s.EXPECT().UpdateTenant(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, storage.ErrNotFound)
			},
			expectedStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := NewMockServiceInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)
			mockLogger.EXPECT().Errorf(gomock.Any(), gomock.Any()).AnyTimes()

			tt.setupMocks(mockService)

			mux := chi.NewMux()
			NewAPI(mockService, passthroughTracer(ctrl), NewMockMonitorInterface(ctrl), mockLogger).RegisterEndpoints(mux)

			req := httptest.NewRequest(http.MethodPatch, "/tenants/tenant-1", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()

			mux.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatusCode {
				t.Errorf("expected status %d, got %d: %s", tt.expectedStatusCode, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestAPI_GetTenant(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockServiceInterface(ctrl)
	mockService.EXPECT().GetTenant(gomock.Any(), "tenant-1").Return(&types.Tenant{ID: "tenant-1", Name: "Acme Legal", Active: true}, nil)
	mockService.EXPECT().GetTenant(gomock.Any(), "missing").Return(nil, storage.ErrNotFound)

	mux := chi.NewMux()
	NewAPI(mockService, passthroughTracer(ctrl), NewMockMonitorInterface(ctrl), NewMockLoggerInterface(ctrl)).RegisterEndpoints(mux)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/tenants/tenant-1", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var body struct {
		Data types.Tenant `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Data.Name != "Acme Legal" {
		t.Errorf("expected Acme Legal, got %s", body.Data.Name)
	}

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/tenants/missing", nil))

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
}
