// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/canonical/practice-service/internal/denial"
	"github.com/canonical/practice-service/internal/logging"
	"github.com/canonical/practice-service/internal/monitoring"
	"github.com/canonical/practice-service/internal/storage"
	"github.com/canonical/practice-service/internal/tracing"
	"github.com/canonical/practice-service/internal/types"
)

const (
	bearerTokenType = "Bearer"

	// MinSigningKeyLength is the shortest HS256 key accepted. It matches the SHA-256 output size.
	MinSigningKeyLength = 32
)

var _ TokenServiceInterface = (*TokenService)(nil)

// TokenConfig holds the signing key, issuer and lifetimes of issued tokens.
type TokenConfig struct {
	SigningKey []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenService issues and verifies HS256 tokens. It keeps no per-token state.
type TokenService struct {
	key        []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration

	principals PrincipalStoreInterface
	tenants    TenantValidatorInterface

	now func() time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (s *TokenService) Issue(ctx context.Context, principalID, tenantID string, tier types.AccountTier) (*TokenPair, error) {
	_, span := s.tracer.Start(ctx, "authentication.TokenService.Issue")
	defer span.End()

	if principalID == "" || tenantID == "" {
		return nil, fmt.Errorf("cannot issue a token without principal and tenant")
	}

	if !tier.Valid() {
		return nil, fmt.Errorf("cannot issue a token for unknown tier %q", tier)
	}

	now := s.now()

	access, err := s.sign(principalID, tenantID, tier, AccessToken, now, s.accessTTL)
	if err != nil {
		return nil, err
	}

	refresh, err := s.sign(principalID, tenantID, tier, RefreshToken, now, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    bearerTokenType,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

func (s *TokenService) Verify(ctx context.Context, raw string) (*Claims, error) {
	_, span := s.tracer.Start(ctx, "authentication.TokenService.Verify")
	defer span.End()

	return s.parse(raw)
}

func (s *TokenService) VerifyAccess(ctx context.Context, raw string) (*Claims, error) {
	_, span := s.tracer.Start(ctx, "authentication.TokenService.VerifyAccess")
	defer span.End()

	return s.parseTyped(raw, AccessToken)
}

func (s *TokenService) VerifyRefresh(ctx context.Context, raw string) (*Claims, error) {
	_, span := s.tracer.Start(ctx, "authentication.TokenService.VerifyRefresh")
	defer span.End()

	return s.parseTyped(raw, RefreshToken)
}

// Refresh issues a new access token from a valid refresh token.
// The principal and its tenant are re-read so a deactivation takes effect at the next refresh,
// and the new token carries the principal's current tier.
func (s *TokenService) Refresh(ctx context.Context, raw string) (*TokenPair, error) {
	ctx, span := s.tracer.Start(ctx, "authentication.TokenService.Refresh")
	defer span.End()

	claims, err := s.parseTyped(raw, RefreshToken)
	if err != nil {
		return nil, err
	}

	principal, err := s.principals.GetPrincipal(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, denial.ErrPrincipalInactive
		}
		return nil, fmt.Errorf("failed to load principal: %w", err)
	}

	if !principal.Active || principal.TenantID != claims.TenantID {
		return nil, denial.ErrPrincipalInactive
	}

	if _, err := s.tenants.Validate(ctx, principal.TenantID); err != nil {
		return nil, err
	}

	now := s.now()

	access, err := s.sign(principal.ID, principal.TenantID, principal.Tier, AccessToken, now, s.accessTTL)
	if err != nil {
		return nil, err
	}

	s.logger.Security().AuthnTokenRefresh(principal.ID)

	return &TokenPair{
		AccessToken: access,
		TokenType:   bearerTokenType,
		ExpiresIn:   int64(s.accessTTL.Seconds()),
	}, nil
}

func (s *TokenService) sign(principalID, tenantID string, tier types.AccountTier, typ TokenType, now time.Time, ttl time.Duration) (string, error) {
	jti, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate token ID: %w", err)
	}

	claims := Claims{
		TenantID: tenantID,
		Tier:     tier,
		Type:     typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti.String(),
			Issuer:    s.issuer,
			Subject:   principalID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", typ, err)
	}

	return signed, nil
}

func (s *TokenService) parse(raw string) (*Claims, error) {
	claims := new(Claims)

	_, err := jwt.ParseWithClaims(
		raw,
		claims,
		func(*jwt.Token) (interface{}, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, denial.Wrap(denial.KindTokenExpired, "token expired", err)
		}
		s.logger.Debugf("token rejected: %v", err)
		return nil, denial.Wrap(denial.KindTokenInvalid, "invalid token", err)
	}

	if claims.Subject == "" || claims.TenantID == "" {
		return nil, denial.New(denial.KindTokenInvalid, "token is missing subject or tenant")
	}

	if !claims.Tier.Valid() {
		return nil, denial.New(denial.KindTokenInvalid, "token carries an unknown account tier")
	}

	return claims, nil
}

func (s *TokenService) parseTyped(raw string, expected TokenType) (*Claims, error) {
	claims, err := s.parse(raw)
	if err != nil {
		return nil, err
	}

	if claims.Type != expected {
		return nil, denial.New(denial.KindTokenTypeMismatch, fmt.Sprintf("expected %s token", expected))
	}

	return claims, nil
}

// Validate rejects a configuration that would sign with a short key or issue tokens that never live.
func (c TokenConfig) Validate() error {
	if len(c.SigningKey) < MinSigningKeyLength {
		return fmt.Errorf("token signing key must be at least %d bytes, got %d", MinSigningKeyLength, len(c.SigningKey))
	}

	if c.AccessTTL <= 0 {
		return fmt.Errorf("access token lifetime must be positive, got %s", c.AccessTTL)
	}

	if c.RefreshTTL <= 0 {
		return fmt.Errorf("refresh token lifetime must be positive, got %s", c.RefreshTTL)
	}

	return nil
}

// NewTokenService fails when cfg does not validate. No service ever signs with an empty key.
func NewTokenService(cfg TokenConfig, principals PrincipalStoreInterface, tenants TenantValidatorInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*TokenService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := new(TokenService)

	s.key = make([]byte, len(cfg.SigningKey))
	copy(s.key, cfg.SigningKey)
	s.issuer = cfg.Issuer
	s.accessTTL = cfg.AccessTTL
	s.refreshTTL = cfg.RefreshTTL

	s.principals = principals
	s.tenants = tenants

	s.now = time.Now

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s, nil
}
