// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package audit

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"github.com/canonical/practice-service/internal/types"
)

type listResponse struct {
	Status int                  `json:"status"`
	Data   []*types.AuditRecord `json:"data"`
	Meta   struct {
		Page int64 `json:"page"`
		Size int64 `json:"size"`
	} `json:"_meta"`
}

func TestAPI_ListRecords(t *testing.T) {
	records := []*types.AuditRecord{
		{ID: "r-2", TenantID: "tenant-1", Action: "client.create", CreatedAt: time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)},
		{ID: "r-1", TenantID: "tenant-1", Action: "auth.login", CreatedAt: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)},
	}

	tests := []struct {
		name           string
		admin          bool
		url            string
		setupMocks     func(*MockStorageInterface)
		expectedStatus int
		expectedPage   int64
	}{
		{
			name: "own tenant trail",
			url:  "/api/v0/audit?page=2&size=5",
			setupMocks: func(s *MockStorageInterface) {
				s.EXPECT().ListAuditRecords(gomock.Any(), "tenant-1", int64(2), int64(5)).Return(records, nil)
			},
			expectedStatus: http.StatusOK,
			expectedPage:   2,
		},
		{
			name:  "admin reads any tenant",
			admin: true,
			url:   "/tenants/tenant-9/audit",
			setupMocks: func(s *MockStorageInterface) {
				s.EXPECT().ListAuditRecords(gomock.Any(), "tenant-9", int64(1), int64(0)).Return(records, nil)
			},
			expectedStatus: http.StatusOK,
			expectedPage:   1,
		},
		{
			name:           "invalid page",
			url:            "/api/v0/audit?page=zero",
			setupMocks:     func(*MockStorageInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "storage failure",
			url:  "/api/v0/audit",
			setupMocks: func(s *MockStorageInterface) {
				s.EXPECT().ListAuditRecords(gomock.Any(), "tenant-1", int64(1), int64(0)).Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStorage := NewMockStorageInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)
			mockLogger.EXPECT().Errorf(gomock.Any(), gomock.Any()).AnyTimes()

			tt.setupMocks(mockStorage)

			api := NewAPI(mockStorage, passthroughTracer(ctrl), NewMockMonitorInterface(ctrl), mockLogger)

			router := chi.NewRouter()
			if tt.admin {
				api.RegisterAdminEndpoints(router)
			} else {
				router.Use(withPrincipal)
				api.RegisterEndpoints(router)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.url, nil))

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}

			if tt.expectedStatus != http.StatusOK {
				return
			}

			var body listResponse
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}

			if len(body.Data) != len(records) || body.Data[0].ID != "r-2" {
				t.Errorf("unexpected records %+v", body.Data)
			}

			if body.Meta.Page != tt.expectedPage {
				t.Errorf("expected page %d, got %d", tt.expectedPage, body.Meta.Page)
			}
		})
	}
}
