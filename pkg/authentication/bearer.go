// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// BearerToken extracts the token of an "Authorization: Bearer <token>" header (RFC 6750).
func BearerToken(headers http.Header) (string, bool) {
	bearer := headers.Get("Authorization")
	if !strings.HasPrefix(bearer, bearerPrefix) {
		return "", false
	}

	token := strings.TrimPrefix(bearer, bearerPrefix)
	if token == "" {
		return "", false
	}

	return token, true
}
