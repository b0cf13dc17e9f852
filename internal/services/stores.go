package services

import (
	"context"
	"time"

	"tenantadmin/internal/domain/models"
)

// TenantStore is the tenant persistence the services depend on.
type TenantStore interface {
	Any(ctx context.Context) (bool, error)
	GetByName(ctx context.Context, name string) (models.Tenant, error)
	GetByDomain(ctx context.Context, domainName string) (models.Tenant, error)
	Get(ctx context.Context, id string) (models.Tenant, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, t models.Tenant) error
	Update(ctx context.Context, id string, upd models.TenantUpdate, now time.Time) error
	Replace(ctx context.Context, t models.Tenant, now time.Time) error
	Delete(ctx context.Context, id string) error
}

// tenantProvisioner is implemented by tenant stores that can write a tenant and its
// administrator atomically.
type tenantProvisioner interface {
	CreateWithAdmin(ctx context.Context, t models.Tenant, admin models.User, passwordHash string) error
}

// UserStore is the user persistence the services depend on. tenantID "" addresses the super user.
type UserStore interface {
	Get(ctx context.Context, tenantID, id string) (models.User, error)
	Exists(ctx context.Context, tenantID, id string) (bool, error)
	UsernameExists(ctx context.Context, tenantID, username string) (bool, error)
	SuperRoleExists(ctx context.Context) (bool, error)
	Credentials(ctx context.Context, tenantID, username string) (models.Credentials, error)
	Create(ctx context.Context, u models.User, passwordHash string) error
	Update(ctx context.Context, tenantID, id string, upd models.UserUpdate, now time.Time) error
	Delete(ctx context.Context, tenantID, id string) error
	DeleteByTenant(ctx context.Context, tenantID string) error
}

func utcNow() time.Time {
	return time.Now().UTC()
}
