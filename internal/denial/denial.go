// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package denial holds the closed set of reasons a request can be refused.
package denial

import (
	"errors"
	"fmt"
	"strings"

	"github.com/canonical/practice-service/internal/types"
)

type Kind string

const (
	KindTokenInvalid       Kind = "TokenInvalid"
	KindTokenExpired       Kind = "TokenExpired"
	KindTokenTypeMismatch  Kind = "TokenTypeMismatch"
	KindInvalidCredentials Kind = "InvalidCredentials"
	KindTenantNotFound     Kind = "TenantNotFound"
	KindTenantInactive     Kind = "TenantInactive"
	KindTenantExpired      Kind = "TenantExpired"
	KindPrincipalInactive  Kind = "PrincipalInactive"
	KindCapabilityDenied   Kind = "CapabilityDenied"
	KindQuotaExceeded      Kind = "QuotaExceeded"
	KindAuditWriteFailed   Kind = "AuditWriteFailed"
	KindAdminUnauthorized  Kind = "AdminUnauthorized"
	KindRateLimited        Kind = "RateLimited"
)

var (
	ErrTokenInvalid       = New(KindTokenInvalid, "invalid token")
	ErrTokenExpired       = New(KindTokenExpired, "token expired")
	ErrTokenTypeMismatch  = New(KindTokenTypeMismatch, "wrong token type")
	ErrInvalidCredentials = New(KindInvalidCredentials, "invalid credentials")
	ErrTenantNotFound     = New(KindTenantNotFound, "tenant not found")
	ErrTenantInactive     = New(KindTenantInactive, "tenant is inactive")
	ErrTenantExpired      = New(KindTenantExpired, "tenant subscription expired")
	ErrPrincipalInactive  = New(KindPrincipalInactive, "principal is inactive")
	ErrCapabilityDenied   = New(KindCapabilityDenied, "capability not granted")
	ErrQuotaExceeded      = New(KindQuotaExceeded, "quota exceeded")
	ErrAuditWriteFailed   = New(KindAuditWriteFailed, "audit write failed")
	ErrAdminUnauthorized  = New(KindAdminUnauthorized, "invalid admin key")
	ErrRateLimited        = New(KindRateLimited, "too many requests")
)

// Error is a denial of a given kind. errors.Is matches on the kind alone.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	if t.Kind == e.Kind {
		return true
	}

	// A type confusion is also an invalid token.
	return e.Kind == KindTokenTypeMismatch && t.Kind == KindTokenInvalid
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap returns a denial of the given kind carrying the underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// CapabilityDenial is returned by the capability gate with the upgrade suggestion.
type CapabilityDenial struct {
	CurrentTier    types.AccountTier
	Capability     types.Capability
	SuggestedTiers []types.AccountTier
}

func (d *CapabilityDenial) Error() string {
	suggested := make([]string, 0, len(d.SuggestedTiers))
	for _, t := range d.SuggestedTiers {
		suggested = append(suggested, t.String())
	}

	return fmt.Sprintf(
		"capability %q is not granted to %s accounts, available with: [%s]",
		d.Capability, d.CurrentTier, strings.Join(suggested, ", "),
	)
}

func (d *CapabilityDenial) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == KindCapabilityDenied
}

// QuotaDenial is returned by the quota enforcer with the usage that triggered it.
type QuotaDenial struct {
	Resource     types.ResourceClass
	CurrentCount int64
	MaxAllowed   int64
}

func (d *QuotaDenial) Error() string {
	return fmt.Sprintf("quota exceeded for %s: %d of %d used", d.Resource, d.CurrentCount, d.MaxAllowed)
}

func (d *QuotaDenial) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == KindQuotaExceeded
}

// KindOf returns the denial kind carried by err.
// The ok result is false for internal errors.
func KindOf(err error) (Kind, bool) {
	var ce *CapabilityDenial
	if errors.As(err, &ce) {
		return KindCapabilityDenied, true
	}

	var qe *QuotaDenial
	if errors.As(err, &qe) {
		return KindQuotaExceeded, true
	}

	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}

	return "", false
}
