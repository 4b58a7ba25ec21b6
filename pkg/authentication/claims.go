// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/canonical/practice-service/internal/types"
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// Claims are carried by both token types.
// The tier is the value at issuance time.
type Claims struct {
	TenantID string            `json:"tid"`
	Tier     types.AccountTier `json:"tier"`
	Type     TokenType         `json:"typ"`

	jwt.RegisteredClaims
}

func (c *Claims) PrincipalID() string {
	return c.Subject
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}
