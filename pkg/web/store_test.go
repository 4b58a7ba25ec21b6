// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/canonical/practice-service/internal/db"
	"github.com/canonical/practice-service/internal/storage"
	"github.com/canonical/practice-service/internal/types"
)

// memStore is an in-memory credential store serving every storage interface of the router
type memStore struct {
	mu sync.Mutex

	tenants    map[string]*types.Tenant
	principals map[string]*types.Principal
	resources  map[string]map[types.ResourceClass]int64
	audit      []*types.AuditRecord

	failAudit bool
	seq       int
}

func newMemStore() *memStore {
	return &memStore{
		tenants:    make(map[string]*types.Tenant),
		principals: make(map[string]*types.Principal),
		resources:  make(map[string]map[types.ResourceClass]int64),
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) CreateTenant(_ context.Context, t *types.Tenant) (*types.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	created := *t
	if created.ID == "" {
		created.ID = m.nextID("tenant")
	}
	created.CreatedAt = time.Now().UTC()
	m.tenants[created.ID] = &created

	out := created
	return &out, nil
}

func (m *memStore) GetTenant(_ context.Context, id string) (*types.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tenants[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	out := *t
	return &out, nil
}

func (m *memStore) ListTenants(_ context.Context) ([]*types.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tenants := make([]*types.Tenant, 0, len(m.tenants))
	for _, t := range m.tenants {
		out := *t
		tenants = append(tenants, &out)
	}
	sort.Slice(tenants, func(i, j int) bool { return tenants[i].ID < tenants[j].ID })

	return tenants, nil
}

func (m *memStore) UpdateTenant(_ context.Context, t *types.Tenant, paths []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.tenants[t.ID]
	if !ok {
		return storage.ErrNotFound
	}

	for _, p := range paths {
		switch p {
		case "name":
			stored.Name = t.Name
		case "subscription_tier":
			stored.SubscriptionTier = t.SubscriptionTier
		case "active":
			stored.Active = t.Active
		case "expires_at":
			stored.ExpiresAt = t.ExpiresAt
		case "limits":
			stored.Limits = t.Limits
		}
	}

	return nil
}

func (m *memStore) CreatePrincipal(_ context.Context, p *types.Principal) (*types.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.principals {
		if existing.Email == p.Email {
			return nil, storage.ErrDuplicateKey
		}
	}

	created := *p
	if created.ID == "" {
		created.ID = m.nextID("principal")
	}
	created.CreatedAt = time.Now().UTC()
	m.principals[created.ID] = &created

	out := created
	return &out, nil
}

func (m *memStore) GetPrincipal(_ context.Context, id string) (*types.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.principals[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	out := *p
	return &out, nil
}

func (m *memStore) GetPrincipalByEmail(_ context.Context, email string) (*types.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.principals {
		if p.Email == email {
			out := *p
			return &out, nil
		}
	}

	return nil, storage.ErrNotFound
}

func (m *memStore) ListPrincipals(_ context.Context, tenantID string) ([]*types.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	principals := make([]*types.Principal, 0)
	for _, p := range m.principals {
		if p.TenantID == tenantID {
			out := *p
			principals = append(principals, &out)
		}
	}
	sort.Slice(principals, func(i, j int) bool { return principals[i].ID < principals[j].ID })

	return principals, nil
}

func (m *memStore) UpdatePrincipal(_ context.Context, p *types.Principal, paths []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.principals[p.ID]
	if !ok || stored.TenantID != p.TenantID {
		return storage.ErrNotFound
	}

	for _, path := range paths {
		switch path {
		case "active":
			stored.Active = p.Active
		case "tier":
			stored.Tier = p.Tier
		}
	}

	return nil
}

func (m *memStore) TouchPrincipalLogin(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.principals[id]
	if !ok {
		return storage.ErrNotFound
	}
	p.LastAuthenticatedAt = &at

	return nil
}

func (m *memStore) CountResource(_ context.Context, tenantID string, class types.ResourceClass) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tier, ok := class.AccountTier(); ok {
		var n int64
		for _, p := range m.principals {
			if p.TenantID == tenantID && p.Tier == tier && p.Active {
				n++
			}
		}
		return n, nil
	}

	return m.resources[tenantID][class], nil
}

func (m *memStore) addResource(tenantID string, class types.ResourceClass) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.resources[tenantID] == nil {
		m.resources[tenantID] = make(map[types.ResourceClass]int64)
	}
	m.resources[tenantID][class]++
}

func (m *memStore) AppendAudit(_ context.Context, record *types.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failAudit {
		return errors.New("audit table unavailable")
	}

	m.audit = append(m.audit, record)
	return nil
}

func (m *memStore) ListAuditRecords(_ context.Context, tenantID string, _, _ int64) ([]*types.AuditRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := make([]*types.AuditRecord, 0)
	for i := len(m.audit) - 1; i >= 0; i-- {
		if m.audit[i].TenantID == tenantID {
			records = append(records, m.audit[i])
		}
	}

	return records, nil
}

func (m *memStore) auditActions(tenantID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	actions := make([]string, 0)
	for _, r := range m.audit {
		if r.TenantID == tenantID {
			actions = append(actions, r.Action)
		}
	}

	return actions
}

// memDB runs transactions as plain calls, the in-memory store has nothing to roll back
type memDB struct{}

func (memDB) Statement(context.Context) sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

func (memDB) BeginTx(ctx context.Context) (context.Context, db.TxInterface, error) {
	return ctx, nil, errors.New("transactions are not supported in memory")
}

func (memDB) WithTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (memDB) Ping(context.Context) error {
	return nil
}

func (memDB) Close() {}
