// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/practice-service/internal/logging"
)

func TestMetricsEndpoint(t *testing.T) {
	router := chi.NewMux()
	NewAPI(logging.NewNoopLogger()).RegisterEndpoints(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v0/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Error("expected the default go collectors in the exposition")
	}
}
