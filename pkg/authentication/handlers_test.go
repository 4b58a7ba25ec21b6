// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"github.com/canonical/practice-service/internal/denial"
)

func TestAPI_Login(t *testing.T) {
	tests := []struct {
		name               string
		body               string
		setupMocks         func(*MockServiceInterface)
		expectedStatusCode int
		expectedKind       string
	}{
		{
			name: "success",
			body: `{"email":"jane@acme.test","password":"correct horse"}`,
			setupMocks: func(s *MockServiceInterface) {
				s.EXPECT().Login(gomock.Any(), "jane@acme.test", "correct horse").Return(&TokenPair{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer"}, nil)
			},
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "malformed email",
			body:               `{"email":"jane","password":"correct horse"}`,
			setupMocks:         func(*MockServiceInterface) {},
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "unknown field",
			body:               `{"email":"jane@acme.test","password":"x","tier":"MANAGERIAL"}`,
			setupMocks:         func(*MockServiceInterface) {},
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name: "bad credentials",
			body: `{"email":"jane@acme.test","password":"wrong"}`,
			setupMocks: func(s *MockServiceInterface) {
				s.EXPECT().Login(gomock.Any(), "jane@acme.test", "wrong").Return(nil, denial.ErrInvalidCredentials)
			},
			expectedStatusCode: http.StatusUnauthorized,
			expectedKind:       "InvalidCredentials",
		},
		{
			name: "inactive principal",
			body: `{"email":"jane@acme.test","password":"correct horse"}`,
			setupMocks: func(s *MockServiceInterface) {
				s.EXPECT().Login(gomock.Any(), "jane@acme.test", "correct horse").Return(nil, denial.ErrPrincipalInactive)
			},
			expectedStatusCode: http.StatusForbidden,
			expectedKind:       "PrincipalInactive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockServiceInterface(ctrl)
			tt.setupMocks(service)

			mux := chi.NewMux()
			NewAPI(service, quietLogger(ctrl)).RegisterEndpoints(mux)

			req := httptest.NewRequest(http.MethodPost, "/api/v0/auth/login", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()

			mux.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatusCode {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatusCode, rr.Code, rr.Body.String())
			}

			var body map[string]interface{}
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}

			if tt.expectedKind != "" && body["error"] != tt.expectedKind {
				t.Errorf("expected error %s, got %v", tt.expectedKind, body["error"])
			}

			if tt.expectedStatusCode == http.StatusOK {
				data, ok := body["data"].(map[string]interface{})
				if !ok || data["access_token"] != "a" || data["refresh_token"] != "r" {
					t.Errorf("unexpected data %v", body["data"])
				}
			}
		})
	}
}

func TestAPI_Refresh(t *testing.T) {
	tests := []struct {
		name               string
		body               string
		setupMocks         func(*MockServiceInterface)
		expectedStatusCode int
	}{
		{
			name: "success",
			body: `{"refresh_token":"r"}`,
			setupMocks: func(s *MockServiceInterface) {
				s.EXPECT().Refresh(gomock.Any(), "r").Return(&TokenPair{AccessToken: "a2", TokenType: "Bearer"}, nil)
			},
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "missing token",
			body:               `{}`,
			setupMocks:         func(*MockServiceInterface) {},
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name: "access token presented",
			body: `{"refresh_token":"a"}`,
			setupMocks: func(s *MockServiceInterface) {
				s.EXPECT().Refresh(gomock.Any(), "a").Return(nil, denial.ErrTokenTypeMismatch)
			},
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name: "deactivated principal",
			body: `{"refresh_token":"r"}`,
			setupMocks: func(s *MockServiceInterface) {
				s.EXPECT().Refresh(gomock.Any(), "r").Return(nil, denial.ErrPrincipalInactive)
			},
			expectedStatusCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockServiceInterface(ctrl)
			tt.setupMocks(service)

			mux := chi.NewMux()
			NewAPI(service, quietLogger(ctrl)).RegisterEndpoints(mux)

			req := httptest.NewRequest(http.MethodPost, "/api/v0/auth/refresh", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()

			mux.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatusCode {
				t.Errorf("expected status %d, got %d: %s", tt.expectedStatusCode, rr.Code, rr.Body.String())
			}
		})
	}
}
