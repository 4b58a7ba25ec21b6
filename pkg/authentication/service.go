// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/canonical/practice-service/internal/denial"
	"github.com/canonical/practice-service/internal/logging"
	"github.com/canonical/practice-service/internal/monitoring"
	"github.com/canonical/practice-service/internal/storage"
	"github.com/canonical/practice-service/internal/tracing"
)

var _ ServiceInterface = (*Service)(nil)

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// compareDummyHash equalizes the response time of unknown emails with the one of wrong passwords.
func compareDummyHash(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("practice-service"), bcrypt.DefaultCost)
	})

	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

type Service struct {
	tokens     TokenServiceInterface
	principals PrincipalStoreInterface
	tenants    TenantValidatorInterface
	audit      AuditRecorderInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	ctx, span := s.tracer.Start(ctx, "authentication.Service.Login")
	defer span.End()

	email = strings.ToLower(strings.TrimSpace(email))

	principal, err := s.principals.GetPrincipalByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			compareDummyHash(password)
			s.logger.Security().AuthnLoginFail(email)
			return nil, denial.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load principal: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte(password)); err != nil {
		s.logger.Security().AuthnLoginFail(email)
		return nil, denial.ErrInvalidCredentials
	}

	if !principal.Active {
		s.logger.Security().AuthnLoginFail(email)
		return nil, denial.ErrPrincipalInactive
	}

	if _, err := s.tenants.Validate(ctx, principal.TenantID); err != nil {
		s.logger.Security().AuthnLoginFail(email)
		return nil, err
	}

	pair, err := s.tokens.Issue(ctx, principal.ID, principal.TenantID, principal.Tier)
	if err != nil {
		return nil, err
	}

	if err := s.principals.TouchPrincipalLogin(ctx, principal.ID, time.Now().UTC()); err != nil {
		s.logger.Warnf("failed to record login of principal %s: %v", principal.ID, err)
	}

	s.audit.Record(ctx, principal.ID, principal.TenantID, "auth.login", "principal", principal.ID, nil)
	s.logger.Security().AuthnLoginSuccess(principal.ID)

	return pair, nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	ctx, span := s.tracer.Start(ctx, "authentication.Service.Refresh")
	defer span.End()

	return s.tokens.Refresh(ctx, refreshToken)
}

func NewService(tokens TokenServiceInterface, principals PrincipalStoreInterface, tenants TenantValidatorInterface, audit AuditRecorderInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Service {
	s := new(Service)

	s.tokens = tokens
	s.principals = principals
	s.tenants = tenants
	s.audit = audit

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
