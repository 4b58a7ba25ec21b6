// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package capability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/practice-service/internal/types"
	"github.com/canonical/practice-service/pkg/authentication"
)

//go:generate mockgen -build_flags=--mod=mod -package capability -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package capability -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package capability -destination ./mock_tracer.go -source=../../internal/tracing/interfaces.go

func withClaims(tier types.AccountTier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := &authentication.Claims{TenantID: "tenant-1", Tier: tier, Type: authentication.AccessToken}
			next.ServeHTTP(w, r.WithContext(authentication.WithClaims(r.Context(), claims)))
		})
	}
}

func TestAPI_Probe(t *testing.T) {
	tests := []struct {
		name               string
		tier               types.AccountTier
		path               string
		expectedStatusCode int
		expectedSuggested  []interface{}
	}{
		{
			name:               "granted",
			tier:               types.TierComposite,
			path:               "/api/v0/capabilities/cash_flow",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "denied with upgrade path",
			tier:               types.TierSimple,
			path:               "/api/v0/capabilities/cash_flow",
			expectedStatusCode: http.StatusForbidden,
			expectedSuggested:  []interface{}{"COMPOSITE", "MANAGERIAL"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockTracer := NewMockTracingInterface(ctrl)
			mockTracer.EXPECT().Start(gomock.Any(), "capability.API.probe").DoAndReturn(
				func(ctx context.Context, _ string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
					return ctx, trace.SpanFromContext(ctx)
				},
			)

			mux := chi.NewMux()
			mux.Use(withClaims(tt.tier))
			NewAPI(mockTracer, NewMockMonitorInterface(ctrl), NewMockLoggerInterface(ctrl)).RegisterEndpoints(mux)

			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rr.Code != tt.expectedStatusCode {
				t.Fatalf("expected status %d, got %d", tt.expectedStatusCode, rr.Code)
			}

			if tt.expectedSuggested == nil {
				return
			}

			var body map[string]interface{}
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}

			if body["currentAccount"] != string(tt.tier) || body["requestedCapability"] != "cash_flow" {
				t.Errorf("unexpected denial body %v", body)
			}

			suggested, _ := body["suggestedAccounts"].([]interface{})
			if len(suggested) != len(tt.expectedSuggested) {
				t.Fatalf("expected suggestions %v, got %v", tt.expectedSuggested, suggested)
			}
			for i := range suggested {
				if suggested[i] != tt.expectedSuggested[i] {
					t.Errorf("expected suggestions %v, got %v", tt.expectedSuggested, suggested)
				}
			}
		})
	}
}

func TestAPI_ListGrants(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockTracer := NewMockTracingInterface(ctrl)
	mockTracer.EXPECT().Start(gomock.Any(), "capability.API.listGrants").DoAndReturn(
		func(ctx context.Context, _ string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
			return ctx, trace.SpanFromContext(ctx)
		},
	)

	mux := chi.NewMux()
	mux.Use(withClaims(types.TierSimple))
	NewAPI(mockTracer, NewMockMonitorInterface(ctrl), NewMockLoggerInterface(ctrl)).RegisterEndpoints(mux)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v0/capabilities", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var body struct {
		Data Grants `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}

	if body.Data.Tier != types.TierSimple || len(body.Data.Capabilities) != 5 {
		t.Errorf("unexpected grants %+v", body.Data)
	}
}
