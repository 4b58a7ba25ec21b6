// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"testing"

	"github.com/canonical/practice-service/internal/types"
	"github.com/canonical/practice-service/pkg/authentication"
)

func TestOfflineTokenService_RoundTrip(t *testing.T) {
	t.Setenv("TOKEN_SIGNING_KEY", "offline-signing-key-of-32-bytes!")

	tokens, err := offlineTokenService()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pair, err := tokens.Issue(context.Background(), "principal-1", "acme", types.TierComposite)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := tokens.Verify(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if claims.Subject != "principal-1" || claims.TenantID != "acme" || claims.Tier != types.TierComposite {
		t.Errorf("unexpected claims %+v", claims)
	}

	if claims.Type != authentication.RefreshToken {
		t.Errorf("expected a refresh token, got %s", claims.Type)
	}
}

func TestOfflineTokenService_RequiresSigningKey(t *testing.T) {
	t.Setenv("TOKEN_SIGNING_KEY", "")

	if _, err := offlineTokenService(); err == nil {
		t.Fatal("expected an error without signing key")
	}
}

func TestOfflineTokenService_RejectsShortSigningKey(t *testing.T) {
	t.Setenv("TOKEN_SIGNING_KEY", "short")

	if _, err := offlineTokenService(); err == nil {
		t.Fatal("expected an error for a short signing key")
	}
}
