package services

import (
	"context"
	"sync"
	"time"

	"tenantadmin/internal/domain"
	"tenantadmin/internal/domain/models"
	"tenantadmin/internal/query"
)

type memTenants struct {
	mu   sync.Mutex
	byID map[string]models.Tenant
}

func newMemTenants() *memTenants { return &memTenants{byID: map[string]models.Tenant{}} }

func (m *memTenants) Any(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID) > 0, nil
}

func (m *memTenants) find(pred func(models.Tenant) bool) (models.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.byID {
		if pred(t) {
			return t, nil
		}
	}
	return models.Tenant{}, domain.NotFoundError{Resource: "Tenant"}
}

func (m *memTenants) GetByName(ctx context.Context, name string) (models.Tenant, error) {
	return m.find(func(t models.Tenant) bool { return t.Name == name && !t.Disabled })
}

func (m *memTenants) GetByDomain(ctx context.Context, d string) (models.Tenant, error) {
	return m.find(func(t models.Tenant) bool { return t.Domain == d })
}

func (m *memTenants) Get(ctx context.Context, id string) (models.Tenant, error) {
	return m.find(func(t models.Tenant) bool { return t.ID == id })
}

func (m *memTenants) Exists(ctx context.Context, id string) (bool, error) {
	_, err := m.Get(ctx, id)
	return err == nil, nil
}

func (m *memTenants) Create(ctx context.Context, t models.Tenant) error {
	if _, err := m.GetByDomain(ctx, t.Domain); err == nil {
		return domain.ConflictError{Resource: "Tenant", Msg: "already exists"}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[t.ID] = t
	return nil
}

func (m *memTenants) Update(ctx context.Context, id string, upd models.TenantUpdate, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok {
		return domain.NotFoundError{Resource: "Tenant"}
	}
	if upd.Name != nil {
		t.Name = *upd.Name
	}
	if upd.Domain != nil {
		t.Domain = *upd.Domain
	}
	if upd.Disabled != nil {
		t.Disabled = *upd.Disabled
	}
	t.UpdatedOn = &now
	m.byID[id] = t
	return nil
}

func (m *memTenants) Replace(ctx context.Context, t models.Tenant, now time.Time) error {
	return m.Update(ctx, t.ID, models.TenantUpdate{Name: &t.Name, Domain: &t.Domain, Disabled: &t.Disabled}, now)
}

func (m *memTenants) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return domain.NotFoundError{Resource: "Tenant"}
	}
	delete(m.byID, id)
	return nil
}

type memUser struct {
	user models.User
	hash string
}

type memUsers struct {
	mu   sync.Mutex
	byID map[string]memUser
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]memUser{}} }

func (m *memUsers) Get(ctx context.Context, tenantID, id string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok || u.user.Tenant() != tenantID {
		return models.User{}, domain.NotFoundError{Resource: "User"}
	}
	return u.user, nil
}

func (m *memUsers) Exists(ctx context.Context, tenantID, id string) (bool, error) {
	_, err := m.Get(ctx, tenantID, id)
	return err == nil, nil
}

func (m *memUsers) UsernameExists(ctx context.Context, tenantID, username string) (bool, error) {
	_, err := m.Credentials(ctx, tenantID, username)
	return err == nil, nil
}

func (m *memUsers) SuperRoleExists(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.user.Role == domain.RoleSuperUser {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) Credentials(ctx context.Context, tenantID, username string) (models.Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.user.Username == username && u.user.Tenant() == tenantID {
			return models.Credentials{
				UserID:       u.user.ID,
				TenantID:     u.user.TenantID,
				Username:     u.user.Username,
				Role:         u.user.Role,
				PasswordHash: u.hash,
				Disabled:     u.user.Disabled,
			}, nil
		}
	}
	return models.Credentials{}, domain.NotFoundError{Resource: "User"}
}

func (m *memUsers) Create(ctx context.Context, u models.User, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[u.ID] = memUser{user: u, hash: passwordHash}
	return nil
}

func (m *memUsers) Update(ctx context.Context, tenantID, id string, upd models.UserUpdate, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok || u.user.Tenant() != tenantID {
		return domain.NotFoundError{Resource: "User"}
	}
	if upd.Username != nil {
		u.user.Username = *upd.Username
	}
	if upd.Password != nil {
		u.hash = *upd.Password
	}
	if upd.Firstname != nil {
		u.user.Firstname = *upd.Firstname
	}
	if upd.Lastname != nil {
		u.user.Lastname = *upd.Lastname
	}
	if upd.Role != nil {
		u.user.Role = *upd.Role
	}
	if upd.Disabled != nil {
		u.user.Disabled = *upd.Disabled
	}
	u.user.UpdatedOn = &now
	m.byID[id] = u
	return nil
}

func (m *memUsers) Delete(ctx context.Context, tenantID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok || u.user.Tenant() != tenantID {
		return domain.NotFoundError{Resource: "User"}
	}
	delete(m.byID, id)
	return nil
}

func (m *memUsers) DeleteByTenant(ctx context.Context, tenantID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.byID {
		if u.user.Tenant() == tenantID {
			delete(m.byID, id)
		}
	}
	return nil
}

// memActivities keeps activities in a MemoryExecutor so listing runs real plans.
type memActivities struct {
	*query.MemoryExecutor
}

func (m memActivities) Insert(ctx context.Context, a models.UserActivity) error {
	m.MemoryExecutor.Insert(query.Activities.Name, map[string]any{
		"_id":        a.ID,
		"tenant_id":  a.TenantID,
		"user_id":    a.UserID,
		"username":   a.Username,
		"action":     a.Action,
		"path":       a.Path,
		"reference":  a.Reference,
		"message":    a.Message,
		"created_on": a.CreatedOn,
	})
	return nil
}

type memLogs struct {
	*query.MemoryExecutor
	mu    sync.Mutex
	items map[string]models.LogItem
}

func newMemLogs() *memLogs {
	return &memLogs{MemoryExecutor: query.NewMemoryExecutor(), items: map[string]models.LogItem{}}
}

func (m *memLogs) Insert(ctx context.Context, item models.LogItem) error {
	m.mu.Lock()
	m.items[item.ID] = item
	m.mu.Unlock()
	m.MemoryExecutor.Insert(query.Logs.Name, map[string]any{
		"_id":        item.ID,
		"tenant_id":  item.TenantID,
		"user_id":    item.UserID,
		"username":   item.Username,
		"type":       item.Type,
		"message":    item.Message,
		"created_on": item.CreatedOn,
	})
	return nil
}

func (m *memLogs) Get(ctx context.Context, tenantID, id string) (models.LogItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok || item.TenantID != tenantID {
		return models.LogItem{}, domain.NotFoundError{Resource: "Log"}
	}
	return item, nil
}
