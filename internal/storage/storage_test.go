// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/canonical/practice-service/internal/db"
	"github.com/canonical/practice-service/internal/logging"
	"github.com/canonical/practice-service/internal/monitoring"
	"github.com/canonical/practice-service/internal/tracing"
	"github.com/canonical/practice-service/internal/types"
)

// sqlmockClient runs statements straight on the sqlmock connection
type sqlmockClient struct {
	db *sql.DB
}

func (c *sqlmockClient) Statement(context.Context) sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar).RunWith(c.db)
}

func (c *sqlmockClient) BeginTx(ctx context.Context) (context.Context, db.TxInterface, error) {
	return ctx, nil, errors.New("transactions are not used by storage")
}

func (c *sqlmockClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (c *sqlmockClient) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *sqlmockClient) Close() {
	_ = c.db.Close()
}

func newTestStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	s := NewStorage(
		&sqlmockClient{db: conn},
		tracing.NewNoopTracer(),
		monitoring.NewNoopMonitor("practice-service"),
		logging.NewNoopLogger(),
	)

	return s, mock
}

func tenantRow(expiresAt interface{}) *sqlmock.Rows {
	return sqlmock.NewRows(tenantColumns).AddRow(
		"tenant-1", "Acme Legal", "professional", true, expiresAt, int64(2), int64(5), int64(-1), time.Now(),
	)
}

func TestStorage_GetTenant(t *testing.T) {
	expiry := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		setup       func(sqlmock.Sqlmock)
		expectedErr error
		check       func(*testing.T, *types.Tenant)
	}{
		{
			name: "found with expiry",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("FROM tenants WHERE id = $1")).
					WithArgs("tenant-1").
					WillReturnRows(tenantRow(expiry))
			},
			check: func(t *testing.T, tenant *types.Tenant) {
				if tenant.ExpiresAt == nil || !tenant.ExpiresAt.Equal(expiry) {
					t.Errorf("expected expiry %v, got %v", expiry, tenant.ExpiresAt)
				}
				if tenant.Limits.MaxSimpleAccounts != 2 || tenant.Limits.MaxManagerialAccounts != types.Unlimited {
					t.Errorf("unexpected limits %+v", tenant.Limits)
				}
			},
		},
		{
			name: "found without expiry",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("FROM tenants WHERE id = $1")).
					WithArgs("tenant-1").
					WillReturnRows(tenantRow(nil))
			},
			check: func(t *testing.T, tenant *types.Tenant) {
				if tenant.ExpiresAt != nil {
					t.Errorf("expected no expiry, got %v", tenant.ExpiresAt)
				}
			},
		},
		{
			name: "not found",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("FROM tenants WHERE id = $1")).
					WithArgs("tenant-1").
					WillReturnError(sql.ErrNoRows)
			},
			expectedErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newTestStorage(t)
			tt.setup(mock)

			tenant, err := s.GetTenant(context.Background(), "tenant-1")

			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("expected error %v, got %v", tt.expectedErr, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.check != nil {
				tt.check(t, tenant)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestStorage_CountResource(t *testing.T) {
	tests := []struct {
		name        string
		class       types.ResourceClass
		setup       func(sqlmock.Sqlmock)
		expected    int64
		expectedErr error
	}{
		{
			name:  "simple accounts count active principals of the tier",
			class: types.ResourceSimpleAccounts,
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM principals WHERE active = $1 AND tenant_id = $2 AND tier = $3")).
					WithArgs(true, "tenant-1", "SIMPLE").
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))
			},
			expected: 2,
		},
		{
			name:  "clients",
			class: types.ResourceClients,
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM clients WHERE tenant_id = $1")).
					WithArgs("tenant-1").
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(17)))
			},
			expected: 17,
		},
		{
			name:  "storage bytes",
			class: types.ResourceStorageBytes,
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(size_bytes), 0) FROM documents WHERE tenant_id = $1")).
					WithArgs("tenant-1").
					WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(int64(4096)))
			},
			expected: 4096,
		},
		{
			name:        "unknown class",
			class:       types.ResourceClass("invoices"),
			setup:       func(sqlmock.Sqlmock) {},
			expectedErr: ErrUnknownResource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newTestStorage(t)
			tt.setup(mock)

			count, err := s.CountResource(context.Background(), "tenant-1", tt.class)

			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("expected error %v, got %v", tt.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if count != tt.expected {
				t.Errorf("expected count %d, got %d", tt.expected, count)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestStorage_AppendAudit(t *testing.T) {
	s, mock := newTestStorage(t)

	record := &types.AuditRecord{
		ID:           "audit-1",
		ActorID:      "principal-1",
		TenantID:     "tenant-1",
		Action:       "principal.create",
		ResourceType: "principal",
		ResourceID:   "principal-2",
		Detail:       map[string]any{"tier": "SIMPLE"},
		CreatedAt:    time.Now(),
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_records")).
		WithArgs("audit-1", "principal-1", "tenant-1", "principal.create", "principal", "principal-2", `{"tier":"SIMPLE"}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := s.AppendAudit(context.Background(), record); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestStorage_AppendAuditFailure(t *testing.T) {
	s, mock := newTestStorage(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_records")).
		WillReturnError(errors.New("connection reset"))

	err := s.AppendAudit(context.Background(), &types.AuditRecord{ID: "audit-1", CreatedAt: time.Now()})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestStorage_CreatePrincipalDuplicate(t *testing.T) {
	s, mock := newTestStorage(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO principals")).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := s.CreatePrincipal(context.Background(), &types.Principal{
		TenantID: "tenant-1",
		Email:    "jane@acme.test",
		Tier:     types.TierSimple,
		Active:   true,
	})

	if !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestStorage_UpdatePrincipal(t *testing.T) {
	tests := []struct {
		name        string
		paths       []string
		setup       func(sqlmock.Sqlmock)
		expectedErr error
	}{
		{
			name:  "deactivate",
			paths: []string{"active"},
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("UPDATE principals SET active = $1 WHERE id = $2 AND tenant_id = $3")).
					WithArgs(false, "principal-1", "tenant-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:  "principal of another tenant",
			paths: []string{"active"},
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("UPDATE principals SET active = $1")).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			expectedErr: ErrNotFound,
		},
		{
			name:  "no paths is a no-op",
			paths: nil,
			setup: func(sqlmock.Sqlmock) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newTestStorage(t)
			tt.setup(mock)

			err := s.UpdatePrincipal(context.Background(), &types.Principal{ID: "principal-1", TenantID: "tenant-1", Active: false}, tt.paths)

			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("expected error %v, got %v", tt.expectedErr, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestStorage_ListAuditRecords(t *testing.T) {
	s, mock := newTestStorage(t)

	rows := sqlmock.NewRows([]string{"id", "actor_id", "tenant_id", "action", "resource_type", "resource_id", "detail", "created_at"}).
		AddRow("audit-2", "admin", "tenant-1", "tenant.update", "tenant", "tenant-1", []byte(`{"paths":["active"]}`), time.Now()).
		AddRow("audit-1", "admin", "tenant-1", "tenant.create", "tenant", "tenant-1", []byte(`{}`), time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("FROM audit_records WHERE tenant_id = $1 ORDER BY created_at DESC, id DESC LIMIT 10 OFFSET 10")).
		WithArgs("tenant-1").
		WillReturnRows(rows)

	records, err := s.ListAuditRecords(context.Background(), "tenant-1", 2, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Action != "tenant.update" {
		t.Errorf("expected newest record first, got %s", records[0].Action)
	}
	if _, ok := records[0].Detail["paths"]; !ok {
		t.Errorf("expected detail to be decoded, got %v", records[0].Detail)
	}
}
