package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"tenantadmin/internal/auth"
	"tenantadmin/internal/domain"
	"tenantadmin/internal/domain/models"
	"tenantadmin/internal/query"
)

var errBadCredentials = domain.AuthenticationError{Msg: "Username or password is incorrect."}

// LoginResult is returned by both login flows.
type LoginResult struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

type UserService struct {
	Tenants  TenantStore
	Users    UserStore
	Executor query.Executor
	Issuer   *auth.Issuer
	Now      func() time.Time
	// Cost is the bcrypt cost; zero means bcrypt.DefaultCost.
	Cost int
}

func (s UserService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utcNow()
}

func (s UserService) hash(password string) (string, error) {
	cost := s.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", domain.InternalError{Err: err}
	}
	return string(b), nil
}

// tenantOf resolves the enabled tenant serving domainName.
func (s UserService) tenantOf(ctx context.Context, domainName string) (models.Tenant, error) {
	tenant, err := s.Tenants.GetByDomain(ctx, strings.ToLower(strings.TrimSpace(domainName)))
	if domain.IsNotFound(err) {
		return models.Tenant{}, domain.ValidationError{Field: "domain", Msg: "Domain does not belong to any tenant."}
	}
	if err != nil {
		return models.Tenant{}, err
	}
	if tenant.Disabled {
		return models.Tenant{}, domain.AuthenticationError{Msg: "Tenant is disabled."}
	}
	return tenant, nil
}

// Authenticate logs a tenant user in and issues a token bound to the tenant.
func (s UserService) Authenticate(ctx context.Context, domainName, username, password string) (LoginResult, error) {
	tenant, err := s.tenantOf(ctx, domainName)
	if err != nil {
		return LoginResult{}, err
	}
	if err := validateUsername(username); err != nil {
		return LoginResult{}, err
	}
	if err := validatePassword(password); err != nil {
		return LoginResult{}, err
	}

	creds, err := s.Users.Credentials(ctx, tenant.ID, username)
	if err != nil {
		if domain.IsNotFound(err) {
			return LoginResult{}, errBadCredentials
		}
		return LoginResult{}, err
	}
	if err := s.verify(creds, password); err != nil {
		return LoginResult{}, err
	}
	return s.issue(creds.UserID, tenant.ID, creds.Username, creds.Role)
}

// AuthenticateSuper logs the super user in. The token carries the tenant of domainName.
func (s UserService) AuthenticateSuper(ctx context.Context, domainName, username, password string) (LoginResult, error) {
	tenant, err := s.tenantOf(ctx, domainName)
	if err != nil {
		return LoginResult{}, err
	}
	if err := validateUsername(username); err != nil {
		return LoginResult{}, err
	}
	if err := validatePassword(password); err != nil {
		return LoginResult{}, err
	}

	creds, err := s.Users.Credentials(ctx, "", username)
	if err != nil {
		if domain.IsNotFound(err) {
			return LoginResult{}, errBadCredentials
		}
		return LoginResult{}, err
	}
	if creds.Role != domain.RoleSuperUser {
		return LoginResult{}, errBadCredentials
	}
	if err := s.verify(creds, password); err != nil {
		return LoginResult{}, err
	}
	return s.issue(creds.UserID, tenant.ID, creds.Username, domain.RoleSuperUser)
}

func (s UserService) verify(creds models.Credentials, password string) error {
	if creds.Disabled {
		return errBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)); err != nil {
		return errBadCredentials
	}
	return nil
}

func (s UserService) issue(userID, tenantID, username string, role domain.Role) (LoginResult, error) {
	token, err := s.Issuer.Issue(userID, tenantID, username, role)
	if err != nil {
		return LoginResult{}, domain.InternalError{Msg: "token not issued", Err: err}
	}
	return LoginResult{Token: token, UserID: userID}, nil
}

func (s UserService) UsernameExists(ctx context.Context, tenantID, username string) (bool, error) {
	if err := validateUsername(username); err != nil {
		return false, err
	}
	return s.Users.UsernameExists(ctx, tenantID, username)
}

func (s UserService) SuperRoleExists(ctx context.Context) (bool, error) {
	return s.Users.SuperRoleExists(ctx)
}

// Create adds a user to the caller's tenant. A caller cannot grant a role above its own.
func (s UserService) Create(ctx context.Context, p auth.Principal, in models.NewUser) (string, error) {
	scope, err := auth.Enforce(p, auth.TenantResources)
	if err != nil {
		return "", err
	}
	if err := validateRole(in.Role); err != nil {
		return "", err
	}
	if !p.Role().Satisfies(in.Role) {
		return "", domain.AuthorizationError{Msg: "Role cannot be granted."}
	}
	tenantID := scope.TenantID
	in.TenantID = &tenantID
	return s.create(ctx, in)
}

func (s UserService) create(ctx context.Context, in models.NewUser) (string, error) {
	if err := validateUsername(in.Username); err != nil {
		return "", err
	}
	if err := validatePassword(in.Password); err != nil {
		return "", err
	}
	if err := validateRole(in.Role); err != nil {
		return "", err
	}
	if err := required("firstname", in.Firstname); err != nil {
		return "", err
	}
	if err := required("lastname", in.Lastname); err != nil {
		return "", err
	}

	tenantID := ""
	if in.TenantID != nil {
		tenantID = *in.TenantID
	}
	exists, err := s.Users.UsernameExists(ctx, tenantID, in.Username)
	if err != nil {
		return "", err
	}
	if exists {
		return "", domain.ValidationError{Field: "username", Msg: "Username already exists."}
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return "", err
	}
	u := models.User{
		ID:        uuid.NewString(),
		TenantID:  in.TenantID,
		Username:  in.Username,
		Firstname: strings.TrimSpace(in.Firstname),
		Lastname:  strings.TrimSpace(in.Lastname),
		Role:      in.Role,
		Disabled:  in.Disabled,
		CreatedOn: s.now(),
	}
	if err := s.Users.Create(ctx, u, hash); err != nil {
		return "", err
	}
	return u.ID, nil
}

// Get returns a user of the caller's tenant.
func (s UserService) Get(ctx context.Context, p auth.Principal, id string) (models.User, error) {
	scope, err := auth.Enforce(p, auth.TenantResources)
	if err != nil {
		return models.User{}, err
	}
	return s.Users.Get(ctx, scope.TenantID, id)
}

// Me returns the caller. The super user has no tenant and is looked up outside any.
func (s UserService) Me(ctx context.Context, p auth.Principal) (models.User, error) {
	if !p.Authenticated() {
		return models.User{}, domain.AuthorizationError{Msg: "Unauthorized Access."}
	}
	if p.Role() == domain.RoleSuperUser {
		return s.Users.Get(ctx, "", p.UserID())
	}
	return s.Users.Get(ctx, p.TenantID(), p.UserID())
}

func (s UserService) List(ctx context.Context, p auth.Principal, spec query.FilterSpec) (query.PagedResult[models.User], error) {
	spec, scope, err := auth.ScopeFilter(p, auth.TenantResources, query.Users, spec)
	if err != nil {
		return query.PagedResult[models.User]{}, err
	}
	plan, err := query.Compile(query.Users, spec, scope)
	if err != nil {
		return query.PagedResult[models.User]{}, err
	}
	return query.Paginate[models.User](ctx, query.Users.Name, plan, s.Executor)
}

// Update changes only the fields present in upd.
func (s UserService) Update(ctx context.Context, p auth.Principal, id string, upd models.UserUpdate) error {
	scope, err := auth.Enforce(p, auth.TenantResources)
	if err != nil {
		return err
	}
	if upd.Username != nil {
		if err := validateUsername(*upd.Username); err != nil {
			return err
		}
		current, err := s.Users.Get(ctx, scope.TenantID, id)
		if err != nil {
			return err
		}
		if current.Username != *upd.Username {
			exists, err := s.Users.UsernameExists(ctx, scope.TenantID, *upd.Username)
			if err != nil {
				return err
			}
			if exists {
				return domain.ValidationError{Field: "username", Msg: "Username already exists."}
			}
		}
	}
	if upd.Role != nil {
		if err := validateRole(*upd.Role); err != nil {
			return err
		}
		if !p.Role().Satisfies(*upd.Role) {
			return domain.AuthorizationError{Msg: "Role cannot be granted."}
		}
	}
	if upd.Firstname != nil {
		if err := required("firstname", *upd.Firstname); err != nil {
			return err
		}
	}
	if upd.Lastname != nil {
		if err := required("lastname", *upd.Lastname); err != nil {
			return err
		}
	}
	if upd.Password != nil {
		if err := validatePassword(*upd.Password); err != nil {
			return err
		}
		hash, err := s.hash(*upd.Password)
		if err != nil {
			return err
		}
		upd.Password = &hash
	}
	return s.Users.Update(ctx, scope.TenantID, id, upd, s.now())
}

// Replace overwrites every mutable field except the username.
func (s UserService) Replace(ctx context.Context, p auth.Principal, id string, in models.NewUser) error {
	if err := validatePassword(in.Password); err != nil {
		return err
	}
	if err := validateRole(in.Role); err != nil {
		return err
	}
	if err := required("firstname", in.Firstname); err != nil {
		return err
	}
	if err := required("lastname", in.Lastname); err != nil {
		return err
	}
	return s.Update(ctx, p, id, models.UserUpdate{
		Password:  &in.Password,
		Firstname: &in.Firstname,
		Lastname:  &in.Lastname,
		Role:      &in.Role,
		Disabled:  &in.Disabled,
	})
}

func (s UserService) Delete(ctx context.Context, p auth.Principal, id string) error {
	scope, err := auth.Enforce(p, auth.TenantResources)
	if err != nil {
		return err
	}
	return s.Users.Delete(ctx, scope.TenantID, id)
}
