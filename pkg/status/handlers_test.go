// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package status

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"
)

//go:generate mockgen -build_flags=--mod=mod -package status -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package status -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package status -destination ./mock_tracer.go -source=../../internal/tracing/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package status -destination ./mock_interfaces.go -source=./interfaces.go

func TestAPI(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		setupMocks     func(*MockPingerInterface, *MockMonitorInterface, *MockLoggerInterface)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "alive",
			path:           "/api/v0/status",
			setupMocks:     func(*MockPingerInterface, *MockMonitorInterface, *MockLoggerInterface) {},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"ok"`,
		},
		{
			name: "ready",
			path: "/api/v0/ready",
			setupMocks: func(p *MockPingerInterface, m *MockMonitorInterface, _ *MockLoggerInterface) {
				p.EXPECT().Ping(gomock.Any()).Return(nil)
				m.EXPECT().SetDependencyAvailability(map[string]string{"component": "database"}, float64(1)).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "database down",
			path: "/api/v0/ready",
			setupMocks: func(p *MockPingerInterface, m *MockMonitorInterface, l *MockLoggerInterface) {
				p.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused"))
				m.EXPECT().SetDependencyAvailability(map[string]string{"component": "database"}, float64(0)).Return(nil)
				l.EXPECT().Warnf(gomock.Any(), gomock.Any())
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   "database unreachable",
		},
		{
			name: "version",
			path: "/api/v0/version",
			setupMocks: func(_ *MockPingerInterface, m *MockMonitorInterface, _ *MockLoggerInterface) {
				m.EXPECT().GetService().Return("practice-service")
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"name":"practice-service"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockPinger := NewMockPingerInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)
			mockTracer := NewMockTracingInterface(ctrl)

			mockTracer.EXPECT().Start(gomock.Any(), gomock.Any()).DoAndReturn(
				func(ctx context.Context, _ string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
					return ctx, trace.SpanFromContext(ctx)
				},
			)

			tt.setupMocks(mockPinger, mockMonitor, mockLogger)

			router := chi.NewMux()
			NewAPI(mockPinger, mockTracer, mockMonitor, mockLogger).RegisterEndpoints(router)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if !strings.Contains(w.Body.String(), tt.expectedBody) {
				t.Errorf("expected %q in %s", tt.expectedBody, w.Body.String())
			}
		})
	}
}
