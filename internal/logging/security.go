// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"go.uber.org/zap"
)

const (
	authnLoginSuccess = "authn_login_success"
	authnLoginFail    = "authn_login_fail"
	authnTokenRefresh = "authn_token_refresh"
	authzFail         = "authz_fail"
	adminAuthFail     = "authn_admin_fail"
	adminAction       = "admin_action"
	sysStartup        = "sys_startup"
	sysShutdown       = "sys_shutdown"
)

var _ SecurityLoggerInterface = (*SecurityLogger)(nil)

type SecurityLogger struct {
	l *zap.Logger
}

func (s *SecurityLogger) SystemStartup() {
	s.l.Warn("system startup", zap.String("event", sysStartup))
}

func (s *SecurityLogger) SystemShutdown() {
	s.l.Warn("system shutdown", zap.String("event", sysShutdown))
}

func (s *SecurityLogger) AuthnLoginSuccess(principal string) {
	s.l.Info("principal logged in", zap.String("event", authnLoginSuccess+":"+principal))
}

func (s *SecurityLogger) AuthnLoginFail(principal string) {
	s.l.Warn("principal login failed", zap.String("event", authnLoginFail+":"+principal))
}

func (s *SecurityLogger) AuthnTokenRefresh(principal string) {
	s.l.Info("access token refreshed", zap.String("event", authnTokenRefresh+":"+principal))
}

func (s *SecurityLogger) AuthzFailure(principal, resource string) {
	s.l.Warn(
		"principal attempted to access a resource without entitlement",
		zap.String("event", authzFail+":"+principal+","+resource),
	)
}

func (s *SecurityLogger) AdminAuthFailure(source string) {
	s.l.Warn("admin key rejected", zap.String("event", adminAuthFail+":"+source))
}

func (s *SecurityLogger) AdminAction(action, resource string) {
	s.l.Info("administrative action", zap.String("event", adminAction+":"+action+","+resource))
}

func newSecurityLogger(l *zap.Logger) *SecurityLogger {
	return &SecurityLogger{
		l: l.With(zap.String("type", "security")),
	}
}
