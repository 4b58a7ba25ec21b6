// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package config

import (
	"errors"
	"fmt"
	"time"
)

// EnvSpec is the basic environment configuration setup needed for the app to start.
type EnvSpec struct {
	OtelGRPCEndpoint string `envconfig:"otel_grpc_endpoint"`
	OtelHTTPEndpoint string `envconfig:"otel_http_endpoint"`
	TracingEnabled   bool   `envconfig:"tracing_enabled" default:"true"`

	LogLevel string `envconfig:"log_level" default:"error"`
	Debug    bool   `envconfig:"debug" default:"false"`

	Port     int `envconfig:"port" default:"8080"`
	GRPCPort int `envconfig:"grpc_port" default:"50051"`

	DSN string `envconfig:"DSN" required:"true"`

	DBMaxConns        int32         `envconfig:"db_max_conns" default:"25"`
	DBMinConns        int32         `envconfig:"db_min_conns" default:"2"`
	DBMaxConnLifetime time.Duration `envconfig:"db_max_conn_lifetime" default:"1h"`
	DBMaxConnIdleTime time.Duration `envconfig:"db_max_conn_idle_time" default:"30m"`

	TokenSigningKey string        `envconfig:"token_signing_key" required:"true"`
	TokenIssuer     string        `envconfig:"token_issuer" default:"practice-service"`
	AccessTokenTTL  time.Duration `envconfig:"access_token_ttl" default:"24h"`
	RefreshTokenTTL time.Duration `envconfig:"refresh_token_ttl" default:"720h"`

	AdminKey string `envconfig:"admin_key" required:"true"`

	BcryptCost int `envconfig:"bcrypt_cost" default:"12"`

	RateLimitRPS   float64 `envconfig:"rate_limit_rps" default:"20"`
	RateLimitBurst int     `envconfig:"rate_limit_burst" default:"40"`

	AuditWriteTimeout time.Duration `envconfig:"audit_write_timeout" default:"5s"`

	CORSAllowedOrigins []string `envconfig:"cors_allowed_origins" default:"*"`
}

// Validate rejects values envconfig accepts because the variable is set, even when empty.
func (s *EnvSpec) Validate() error {
	var errs []error

	if s.AdminKey == "" {
		errs = append(errs, errors.New("ADMIN_KEY must not be empty"))
	}

	if s.TokenSigningKey == "" {
		errs = append(errs, errors.New("TOKEN_SIGNING_KEY must not be empty"))
	}

	if s.AccessTokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("ACCESS_TOKEN_TTL must be positive, got %s", s.AccessTokenTTL))
	}

	if s.RefreshTokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("REFRESH_TOKEN_TTL must be positive, got %s", s.RefreshTokenTTL))
	}

	return errors.Join(errs...)
}
