// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDebugLogger(t *testing.T) {
	logger := NewLogger("DEBUG")

	if !logger.Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Errorf("expected debug level to be enabled")
	}
}

func TestInvalidLevel(t *testing.T) {
	logger := NewLogger("invalid")

	if logger.Desugar().Core().Enabled(zapcore.WarnLevel) {
		t.Errorf("expected warn level to be disabled for fallback level")
	}
	if !logger.Desugar().Core().Enabled(zapcore.ErrorLevel) {
		t.Errorf("expected error level to be enabled")
	}
}

func TestNoopLoggerSecurity(t *testing.T) {
	logger := NewNoopLogger()

	// must not panic
	logger.Security().SystemStartup()
	logger.Security().AuthzFailure("principal-1", "cash_flow")
}

func TestSecurityLoggerEvents(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := newSecurityLogger(zap.New(core))

	s.AuthzFailure("principal-1", "cash_flow")
	s.AdminAuthFailure("10.0.0.1")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	fields := entries[0].ContextMap()
	if fields["type"] != "security" {
		t.Errorf("expected type security, got %v", fields["type"])
	}
	if fields["event"] != "authz_fail:principal-1,cash_flow" {
		t.Errorf("expected authz event, got %v", fields["event"])
	}
	if entries[1].Level != zapcore.WarnLevel {
		t.Errorf("expected warn level, got %v", entries[1].Level)
	}
}
