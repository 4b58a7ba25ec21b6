// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package pipeline chains the admission checks every protected request goes through:
// token verification, tenant validation, capability authorization and rate limiting.
package pipeline

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/canonical/practice-service/internal/denial"
	httptypes "github.com/canonical/practice-service/internal/http/types"
	"github.com/canonical/practice-service/internal/logging"
	"github.com/canonical/practice-service/internal/monitoring"
	"github.com/canonical/practice-service/internal/tracing"
	"github.com/canonical/practice-service/internal/types"
	"github.com/canonical/practice-service/pkg/authentication"
	"github.com/canonical/practice-service/pkg/capability"
	"github.com/canonical/practice-service/pkg/tenant"
)

// AdminKeyHeader carries the shared secret of the admin tree.
const AdminKeyHeader = "X-Admin-Key"

type Config struct {
	AdminKey       string
	RateLimitRPS   float64
	RateLimitBurst int
}

type Pipeline struct {
	tokens  TokenVerifierInterface
	tenants TenantValidatorInterface

	adminKey []byte
	limiters *limiterStore

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Protect admits a request only if its token verifies, its tenant is valid and its tier grants c.
// The checks run in that order and the first failure ends the request.
func (p *Pipeline) Protect(c types.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := p.tracer.Start(r.Context(), "pipeline.Pipeline.Protect")
			defer span.End()

			ctx, claims, err := p.admit(ctx, r.Header)
			if err != nil {
				p.deny(w, err)
				return
			}

			if err := capability.Authorize(claims.Tier, c); err != nil {
				p.logger.Security().AuthzFailure(claims.Subject, string(c))
				p.deny(w, err)
				return
			}

			if !p.limiters.Allow(claims.Subject) {
				p.deny(w, denial.ErrRateLimited)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authenticated runs Protect without the capability step.
// It guards the routes every principal may reach.
func (p *Pipeline) Authenticated() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := p.tracer.Start(r.Context(), "pipeline.Pipeline.Authenticated")
			defer span.End()

			ctx, claims, err := p.admit(ctx, r.Header)
			if err != nil {
				p.deny(w, err)
				return
			}

			if !p.limiters.Allow(claims.Subject) {
				p.deny(w, denial.ErrRateLimited)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Admin guards the admin tree with the shared key. No bearer token is involved.
func (p *Pipeline) Admin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := []byte(r.Header.Get(AdminKeyHeader))

			if len(p.adminKey) == 0 || subtle.ConstantTimeCompare(presented, p.adminKey) != 1 {
				p.logger.Security().AdminAuthFailure(r.RemoteAddr)
				p.deny(w, denial.ErrAdminUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// admit verifies the bearer token and then validates the tenant it names.
func (p *Pipeline) admit(ctx context.Context, headers http.Header) (context.Context, *authentication.Claims, error) {
	raw, found := authentication.BearerToken(headers)
	if !found {
		return ctx, nil, denial.New(denial.KindTokenInvalid, "missing bearer token")
	}

	return p.admitToken(ctx, raw)
}

func (p *Pipeline) admitToken(ctx context.Context, raw string) (context.Context, *authentication.Claims, error) {
	claims, err := p.tokens.VerifyAccess(ctx, raw)
	if err != nil {
		p.logger.Debugf("access token rejected: %v", err)
		return ctx, nil, err
	}

	t, err := p.tenants.Validate(ctx, claims.TenantID)
	if err != nil {
		return ctx, nil, err
	}

	ctx = authentication.WithClaims(ctx, claims)
	ctx = tenant.WithTenant(ctx, t)

	return ctx, claims, nil
}

func (p *Pipeline) count(err error) {
	kind, ok := denial.KindOf(err)
	if !ok {
		return
	}

	if cerr := p.monitor.IncDenialCounter(map[string]string{"kind": string(kind)}); cerr != nil {
		p.logger.Debugf("failed to count denial: %v", cerr)
	}
}

func (p *Pipeline) deny(w http.ResponseWriter, err error) {
	p.count(err)
	httptypes.WriteError(w, err, p.logger)
}

func NewPipeline(cfg Config, tokens TokenVerifierInterface, tenants TenantValidatorInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Pipeline {
	p := new(Pipeline)

	p.tokens = tokens
	p.tenants = tenants

	p.adminKey = []byte(cfg.AdminKey)
	p.limiters = newLimiterStore(cfg.RateLimitRPS, cfg.RateLimitBurst)

	p.tracer = tracer
	p.monitor = monitor
	p.logger = logger

	return p
}
