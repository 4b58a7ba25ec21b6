// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package pipeline

import (
	"testing"
	"time"
)

func TestLimiterStore(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	s := newLimiterStore(1, 2)
	s.now = func() time.Time { return now }

	if !s.Allow("principal-1") || !s.Allow("principal-1") {
		t.Fatal("expected the burst to be available")
	}

	if s.Allow("principal-1") {
		t.Error("expected the bucket to be empty")
	}

	if !s.Allow("principal-2") {
		t.Error("expected principals to have separate buckets")
	}

	now = now.Add(time.Second)
	if !s.Allow("principal-1") {
		t.Error("expected the bucket to refill")
	}
}

func TestLimiterStoreSweepsIdleBuckets(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	s := newLimiterStore(1, 1)
	s.now = func() time.Time { return now }

	s.Allow("principal-1")
	now = now.Add(2 * idleBucketTTL)
	s.Allow("principal-2")

	if _, ok := s.buckets["principal-1"]; ok {
		t.Error("expected the idle bucket to be swept")
	}

	if len(s.buckets) != 1 {
		t.Errorf("expected one live bucket, got %d", len(s.buckets))
	}
}

func TestLimiterStoreDisabled(t *testing.T) {
	s := newLimiterStore(0, 10)

	if s != nil {
		t.Fatal("expected no store when the rate is not positive")
	}

	for i := 0; i < 100; i++ {
		if !s.Allow("principal-1") {
			t.Fatal("a disabled store must never limit")
		}
	}
}
