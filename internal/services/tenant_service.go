package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"tenantadmin/internal/auth"
	"tenantadmin/internal/domain"
	"tenantadmin/internal/domain/models"
	"tenantadmin/internal/query"
)

// Every new tenant gets an administrator with these credentials.
const (
	TenantAdminUsername = "administrator"
	TenantAdminPassword = "administrator"
)

type NewTenant struct {
	Name     string
	Domain   string
	Disabled bool
}

// CreatedTenant carries the credentials of the administrator created with the tenant.
type CreatedTenant struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type TenantService struct {
	Tenants  TenantStore
	Users    UserStore
	Executor query.Executor
	Logger   *zap.Logger
	Now      func() time.Time
}

func (s TenantService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utcNow()
}

func (s TenantService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s TenantService) Any(ctx context.Context) (bool, error) {
	return s.Tenants.Any(ctx)
}

func (s TenantService) GetByName(ctx context.Context, name string) (models.Tenant, error) {
	return s.Tenants.GetByName(ctx, name)
}

func (s TenantService) GetByDomain(ctx context.Context, domainName string) (models.Tenant, error) {
	return s.Tenants.GetByDomain(ctx, domainName)
}

func (s TenantService) Exists(ctx context.Context, id string) (bool, error) {
	return s.Tenants.Exists(ctx, id)
}

func (s TenantService) Get(ctx context.Context, p auth.Principal, id string) (models.Tenant, error) {
	if _, err := auth.Enforce(p, auth.TenantAdministration); err != nil {
		return models.Tenant{}, err
	}
	return s.Tenants.Get(ctx, id)
}

func (s TenantService) List(ctx context.Context, p auth.Principal, spec query.FilterSpec) (query.PagedResult[models.Tenant], error) {
	spec, scope, err := auth.ScopeFilter(p, auth.TenantAdministration, query.Tenants, spec)
	if err != nil {
		return query.PagedResult[models.Tenant]{}, err
	}
	plan, err := query.Compile(query.Tenants, spec, scope)
	if err != nil {
		return query.PagedResult[models.Tenant]{}, err
	}
	return query.Paginate[models.Tenant](ctx, query.Tenants.Name, plan, s.Executor)
}

// Create stores the tenant and its administrator user.
func (s TenantService) Create(ctx context.Context, p auth.Principal, in NewTenant) (CreatedTenant, error) {
	if _, err := auth.Enforce(p, auth.TenantAdministration); err != nil {
		return CreatedTenant{}, err
	}
	return s.create(ctx, in)
}

func (s TenantService) create(ctx context.Context, in NewTenant) (CreatedTenant, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Domain = strings.ToLower(strings.TrimSpace(in.Domain))
	if err := required("name", in.Name); err != nil {
		return CreatedTenant{}, err
	}
	if err := required("domain", in.Domain); err != nil {
		return CreatedTenant{}, err
	}

	now := s.now()
	tenant := models.Tenant{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Domain:    in.Domain,
		Disabled:  in.Disabled,
		CreatedOn: now,
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(TenantAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return CreatedTenant{}, domain.InternalError{Err: err}
	}
	admin := models.User{
		ID:        uuid.NewString(),
		TenantID:  &tenant.ID,
		Username:  TenantAdminUsername,
		Firstname: "Tenant",
		Lastname:  "Administrator",
		Role:      domain.RoleAdmin,
		CreatedOn: now,
	}

	if tp, ok := s.Tenants.(tenantProvisioner); ok {
		if err := tp.CreateWithAdmin(ctx, tenant, admin, string(hash)); err != nil {
			return CreatedTenant{}, err
		}
		return CreatedTenant{ID: tenant.ID, Username: TenantAdminUsername, Password: TenantAdminPassword}, nil
	}

	if err := s.Tenants.Create(ctx, tenant); err != nil {
		return CreatedTenant{}, err
	}
	if err := s.Users.Create(ctx, admin, string(hash)); err != nil {
		s.logger().Error("tenant administrator not created", zap.String("tenant_id", tenant.ID), zap.Error(err))
		// A tenant nobody can log into must not survive.
		if delErr := s.Tenants.Delete(context.WithoutCancel(ctx), tenant.ID); delErr != nil {
			s.logger().Error("tenant rollback failed", zap.String("tenant_id", tenant.ID), zap.Error(delErr))
		}
		return CreatedTenant{}, err
	}

	return CreatedTenant{ID: tenant.ID, Username: TenantAdminUsername, Password: TenantAdminPassword}, nil
}

// Update changes only the fields present in upd.
func (s TenantService) Update(ctx context.Context, p auth.Principal, id string, upd models.TenantUpdate) error {
	if _, err := auth.Enforce(p, auth.TenantAdministration); err != nil {
		return err
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if err := required("name", name); err != nil {
			return err
		}
		upd.Name = &name
	}
	if upd.Domain != nil {
		d := strings.ToLower(strings.TrimSpace(*upd.Domain))
		if err := required("domain", d); err != nil {
			return err
		}
		upd.Domain = &d
	}
	return s.Tenants.Update(ctx, id, upd, s.now())
}

// Replace overwrites name, domain and disabled.
func (s TenantService) Replace(ctx context.Context, p auth.Principal, id string, in NewTenant) error {
	if _, err := auth.Enforce(p, auth.TenantAdministration); err != nil {
		return err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Domain = strings.ToLower(strings.TrimSpace(in.Domain))
	if err := required("name", in.Name); err != nil {
		return err
	}
	if err := required("domain", in.Domain); err != nil {
		return err
	}
	return s.Tenants.Replace(ctx, models.Tenant{ID: id, Name: in.Name, Domain: in.Domain, Disabled: in.Disabled}, s.now())
}

// Delete removes the tenant together with its users.
func (s TenantService) Delete(ctx context.Context, p auth.Principal, id string) error {
	if _, err := auth.Enforce(p, auth.TenantAdministration); err != nil {
		return err
	}
	ok, err := s.Tenants.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFoundError{Resource: "Tenant"}
	}
	if err := s.Users.DeleteByTenant(ctx, id); err != nil {
		return err
	}
	return s.Tenants.Delete(ctx, id)
}
