// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/canonical/practice-service/internal/types"
)

var principalColumns = []string{
	"id",
	"tenant_id",
	"email",
	"password_hash",
	"tier",
	"active",
	"last_authenticated_at",
	"created_at",
}

func scanPrincipal(row sq.RowScanner) (*types.Principal, error) {
	var (
		p        types.Principal
		tier     string
		lastAuth sql.NullTime
	)

	err := row.Scan(&p.ID, &p.TenantID, &p.Email, &p.PasswordHash, &tier, &p.Active, &lastAuth, &p.CreatedAt)
	if err != nil {
		return nil, err
	}

	p.Tier = types.AccountTier(tier)
	if lastAuth.Valid {
		t := lastAuth.Time
		p.LastAuthenticatedAt = &t
	}

	return &p, nil
}

func (s *Storage) CreatePrincipal(ctx context.Context, p *types.Principal) (*types.Principal, error) {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.CreatePrincipal")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate principal ID: %w", err)
	}

	created, err := scanPrincipal(
		s.db.Statement(ctx).
			Insert("principals").
			Columns("id", "tenant_id", "email", "password_hash", "tier", "active").
			Values(id.String(), p.TenantID, p.Email, p.PasswordHash, string(p.Tier), p.Active).
			Suffix("RETURNING " + columnList(principalColumns)).
			QueryRowContext(ctx),
	)
	if err != nil {
		if IsDuplicateKeyError(err) {
			return nil, ErrDuplicateKey
		}
		if IsForeignKeyViolation(err) {
			return nil, ErrForeignKeyViolation
		}
		return nil, fmt.Errorf("failed to insert principal: %w", err)
	}

	return created, nil
}

func (s *Storage) getPrincipalBy(ctx context.Context, where sq.Eq) (*types.Principal, error) {
	p, err := scanPrincipal(
		s.db.Statement(ctx).
			Select(principalColumns...).
			From("principals").
			Where(where).
			QueryRowContext(ctx),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get principal: %w", err)
	}

	return p, nil
}

func (s *Storage) GetPrincipal(ctx context.Context, id string) (*types.Principal, error) {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.GetPrincipal")
	defer span.End()

	return s.getPrincipalBy(ctx, sq.Eq{"id": id})
}

func (s *Storage) GetPrincipalByEmail(ctx context.Context, email string) (*types.Principal, error) {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.GetPrincipalByEmail")
	defer span.End()

	return s.getPrincipalBy(ctx, sq.Eq{"email": email})
}

func (s *Storage) ListPrincipals(ctx context.Context, tenantID string) ([]*types.Principal, error) {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.ListPrincipals")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select(principalColumns...).
		From("principals").
		Where(sq.Eq{"tenant_id": tenantID}).
		OrderBy("created_at").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list principals: %w", err)
	}
	defer rows.Close()

	principals := make([]*types.Principal, 0)
	for rows.Next() {
		p, err := scanPrincipal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan principal: %w", err)
		}
		principals = append(principals, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating principal rows: %w", err)
	}

	return principals, nil
}

// UpdatePrincipal writes the fields named in paths, recognised paths are active and tier.
// Principals are never deleted, deactivation is the terminal state.
func (s *Storage) UpdatePrincipal(ctx context.Context, p *types.Principal, paths []string) error {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.UpdatePrincipal")
	defer span.End()

	updates := make(map[string]interface{})
	for _, path := range paths {
		switch path {
		case "active":
			updates["active"] = p.Active
		case "tier":
			updates["tier"] = string(p.Tier)
		}
	}

	if len(updates) == 0 {
		return nil
	}

	res, err := s.db.Statement(ctx).
		Update("principals").
		SetMap(updates).
		Where(sq.Eq{"id": p.ID, "tenant_id": p.TenantID}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update principal: %w", err)
	}

	return expectAffected(res)
}

func (s *Storage) TouchPrincipalLogin(ctx context.Context, id string, at time.Time) error {
	ctx, span := s.tracer.Start(ctx, "storage.Storage.TouchPrincipalLogin")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("principals").
		Set("last_authenticated_at", at).
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to record principal login: %w", err)
	}

	return expectAffected(res)
}
