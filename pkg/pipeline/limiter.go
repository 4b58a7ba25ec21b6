// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package pipeline

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const idleBucketTTL = 5 * time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore keeps one token bucket per principal. Idle buckets are swept on access.
type limiterStore struct {
	mu sync.Mutex

	limit rate.Limit
	burst int

	buckets   map[string]*bucket
	lastSweep time.Time
	now       func() time.Time
}

func newLimiterStore(rps float64, burst int) *limiterStore {
	if rps <= 0 {
		return nil
	}

	if burst < 1 {
		burst = 1
	}

	return &limiterStore{
		limit:   rate.Limit(rps),
		burst:   burst,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Allow reports whether the principal may make another request. A nil store never limits.
func (s *limiterStore) Allow(principalID string) bool {
	if s == nil {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	if now.Sub(s.lastSweep) > idleBucketTTL {
		for id, b := range s.buckets {
			if now.Sub(b.lastSeen) > idleBucketTTL {
				delete(s.buckets, id)
			}
		}
		s.lastSweep = now
	}

	b, ok := s.buckets[principalID]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.buckets[principalID] = b
	}
	b.lastSeen = now

	return b.limiter.AllowN(now, 1)
}
