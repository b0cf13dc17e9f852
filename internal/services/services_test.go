package services

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"tenantadmin/internal/auth"
	"tenantadmin/internal/domain"
	"tenantadmin/internal/domain/models"
	"tenantadmin/internal/query"
)

const testSecret = "services-secret"

var fixedNow = time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)

func principal(t *testing.T, userID, tenantID string, role domain.Role) auth.Principal {
	t.Helper()
	token, err := auth.NewIssuer(testSecret, time.Hour).Issue(userID, tenantID, "someone", role)
	require.NoError(t, err)
	p, err := auth.NewResolver(testSecret).Resolve("Bearer " + token)
	require.NoError(t, err)
	return p
}

type fixture struct {
	tenants *memTenants
	users   *memUsers
	tenant  TenantService
	user    UserService
}

func newFixture() fixture {
	tenants, users := newMemTenants(), newMemUsers()
	now := func() time.Time { return fixedNow }
	return fixture{
		tenants: tenants,
		users:   users,
		tenant:  TenantService{Tenants: tenants, Users: users, Now: now},
		user: UserService{
			Tenants: tenants,
			Users:   users,
			Issuer:  auth.NewIssuer(testSecret, time.Hour),
			Now:     now,
			Cost:    bcrypt.MinCost,
		},
	}
}

func TestTenantCreateSeedsAdministrator(t *testing.T) {
	f := newFixture()
	super := principal(t, "root", "", domain.RoleSuperUser)

	created, err := f.tenant.Create(context.Background(), super, NewTenant{Name: " Acme ", Domain: "Acme.Example.com"})
	require.NoError(t, err)
	assert.Equal(t, TenantAdminUsername, created.Username)
	assert.Equal(t, TenantAdminPassword, created.Password)

	tenant, err := f.tenants.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", tenant.Name)
	assert.Equal(t, "acme.example.com", tenant.Domain)
	assert.Equal(t, fixedNow, tenant.CreatedOn)

	creds, err := f.users.Credentials(context.Background(), created.ID, TenantAdminUsername)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, creds.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(TenantAdminPassword)))

	_, err = f.tenant.Create(context.Background(), super, NewTenant{Name: "Other", Domain: "acme.example.com"})
	assert.True(t, domain.IsConflict(err))
}

// failingUsers rejects every insert.
type failingUsers struct {
	*memUsers
}

func (failingUsers) Create(ctx context.Context, u models.User, passwordHash string) error {
	return domain.StoreError{Op: "users.create", Err: fmt.Errorf("connection lost")}
}

func TestTenantCreateRemovesTenantWhenAdministratorFails(t *testing.T) {
	tenants := newMemTenants()
	svc := TenantService{Tenants: tenants, Users: failingUsers{newMemUsers()}, Now: func() time.Time { return fixedNow }}
	super := principal(t, "root", "", domain.RoleSuperUser)

	_, err := svc.Create(context.Background(), super, NewTenant{Name: "Acme", Domain: "acme.example.com"})
	require.Error(t, err)
	assert.True(t, domain.IsStore(err))

	exists, err := tenants.Any(context.Background())
	require.NoError(t, err)
	assert.False(t, exists, "no tenant without an administrator")

	svc.Users = newMemUsers()
	created, err := svc.Create(context.Background(), super, NewTenant{Name: "Acme", Domain: "acme.example.com"})
	require.NoError(t, err, "the same domain can be retried")
	assert.NotEmpty(t, created.ID)
}

func TestTenantAdministrationNeedsSuperUser(t *testing.T) {
	f := newFixture()
	admin := principal(t, "u-1", "A", domain.RoleAdmin)

	_, err := f.tenant.Create(context.Background(), admin, NewTenant{Name: "Acme", Domain: "acme.example.com"})
	assert.True(t, domain.IsAuthorization(err))
	_, err = f.tenant.List(context.Background(), admin, query.FilterSpec{})
	assert.True(t, domain.IsAuthorization(err))
	assert.True(t, domain.IsAuthorization(f.tenant.Delete(context.Background(), admin, "A")))
}

func TestTenantUpdateAndDelete(t *testing.T) {
	f := newFixture()
	super := principal(t, "root", "", domain.RoleSuperUser)
	created, err := f.tenant.Create(context.Background(), super, NewTenant{Name: "Acme", Domain: "acme.example.com"})
	require.NoError(t, err)

	disabled := true
	require.NoError(t, f.tenant.Update(context.Background(), super, created.ID, models.TenantUpdate{Disabled: &disabled}))
	tenant, err := f.tenants.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, tenant.Disabled)
	assert.Equal(t, "Acme", tenant.Name)
	require.NotNil(t, tenant.UpdatedOn)

	blank := "  "
	err = f.tenant.Update(context.Background(), super, created.ID, models.TenantUpdate{Name: &blank})
	assert.Equal(t, "name", domain.FieldOf(err))

	require.NoError(t, f.tenant.Delete(context.Background(), super, created.ID))
	ok, err := f.users.UsernameExists(context.Background(), created.ID, TenantAdminUsername)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, domain.IsNotFound(f.tenant.Delete(context.Background(), super, created.ID)))
}

func TestAuthenticate(t *testing.T) {
	f := newFixture()
	super := principal(t, "root", "", domain.RoleSuperUser)
	created, err := f.tenant.Create(context.Background(), super, NewTenant{Name: "Acme", Domain: "acme.example.com"})
	require.NoError(t, err)

	res, err := f.user.Authenticate(context.Background(), "ACME.example.com", TenantAdminUsername, TenantAdminPassword)
	require.NoError(t, err)
	p, err := auth.NewResolver(testSecret).Resolve("Bearer " + res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.UserID, p.UserID())
	assert.Equal(t, created.ID, p.TenantID())
	assert.Equal(t, domain.RoleAdmin, p.Role())

	_, err = f.user.Authenticate(context.Background(), "acme.example.com", TenantAdminUsername, "wrong.password")
	assert.True(t, domain.IsAuthentication(err))
	assert.Equal(t, "Username or password is incorrect.", err.Error())

	_, err = f.user.Authenticate(context.Background(), "nowhere.example.com", TenantAdminUsername, TenantAdminPassword)
	assert.Equal(t, "domain", domain.FieldOf(err))

	_, err = f.user.Authenticate(context.Background(), "acme.example.com", "Bad Name", TenantAdminPassword)
	assert.Equal(t, "username", domain.FieldOf(err))

	disabled := true
	admin := principal(t, res.UserID, created.ID, domain.RoleAdmin)
	require.NoError(t, f.user.Update(context.Background(), admin, res.UserID, models.UserUpdate{Disabled: &disabled}))
	_, err = f.user.Authenticate(context.Background(), "acme.example.com", TenantAdminUsername, TenantAdminPassword)
	assert.True(t, domain.IsAuthentication(err))
}

func TestAuthenticateSuper(t *testing.T) {
	f := newFixture()
	seeder := Seeder{Tenants: f.tenant, Users: f.user}
	cfg := SeedConfig{TenantName: "default", TenantDomain: "localhost", SuperUser: "superuser", SuperUserPassword: "s3cret.pass"}
	require.NoError(t, seeder.Seed(context.Background(), cfg))

	tenant, err := f.tenants.GetByDomain(context.Background(), "localhost")
	require.NoError(t, err)

	res, err := f.user.AuthenticateSuper(context.Background(), "localhost", "superuser", "s3cret.pass")
	require.NoError(t, err)
	p, err := auth.NewResolver(testSecret).Resolve("Bearer " + res.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSuperUser, p.Role())
	assert.Equal(t, tenant.ID, p.TenantID())

	// The tenant administrator is not a super user.
	_, err = f.user.AuthenticateSuper(context.Background(), "localhost", TenantAdminUsername, TenantAdminPassword)
	assert.True(t, domain.IsAuthentication(err))
}

func TestSeederIsIdempotent(t *testing.T) {
	f := newFixture()
	seeder := Seeder{Tenants: f.tenant, Users: f.user}
	cfg := SeedConfig{TenantName: "default", TenantDomain: "localhost", SuperUser: "superuser", SuperUserPassword: "s3cret.pass"}

	require.NoError(t, seeder.Seed(context.Background(), cfg))
	require.NoError(t, seeder.Seed(context.Background(), cfg))
	assert.Len(t, f.tenants.byID, 1)
	assert.Len(t, f.users.byID, 2)
}

func TestUserCreateRules(t *testing.T) {
	f := newFixture()
	admin := principal(t, "u-1", "A", domain.RoleAdmin)
	in := models.NewUser{Username: "operator.one", Password: "pa55word", Firstname: "Op", Lastname: "One", Role: domain.RoleAdmin}

	id, err := f.user.Create(context.Background(), admin, in)
	require.NoError(t, err)
	u, err := f.users.Get(context.Background(), "A", id)
	require.NoError(t, err)
	assert.Equal(t, "A", u.Tenant())

	_, err = f.user.Create(context.Background(), admin, in)
	assert.Equal(t, "username", domain.FieldOf(err))
	assert.Equal(t, "username: Username already exists.", err.Error())

	escalate := in
	escalate.Username = "operator.two"
	escalate.Role = domain.RoleSuperUser
	_, err = f.user.Create(context.Background(), admin, escalate)
	assert.True(t, domain.IsAuthorization(err))

	cases := map[string]models.NewUser{
		"username":  {Username: "short", Password: "pa55word", Firstname: "a", Lastname: "b", Role: domain.RoleAdmin},
		"password":  {Username: "operator.three", Password: "no spaces!", Firstname: "a", Lastname: "b", Role: domain.RoleAdmin},
		"role":      {Username: "operator.three", Password: "pa55word", Firstname: "a", Lastname: "b", Role: domain.Role(7)},
		"firstname": {Username: "operator.three", Password: "pa55word", Lastname: "b", Role: domain.RoleAdmin},
	}
	for field, bad := range cases {
		t.Run(field, func(t *testing.T) {
			_, err := f.user.Create(context.Background(), admin, bad)
			assert.Equal(t, field, domain.FieldOf(err))
		})
	}
}

func TestUserAccessIsTenantScoped(t *testing.T) {
	f := newFixture()
	adminA := principal(t, "u-a", "A", domain.RoleAdmin)
	adminB := principal(t, "u-b", "B", domain.RoleAdmin)

	id, err := f.user.Create(context.Background(), adminA, models.NewUser{Username: "alice.smith", Password: "pa55word", Firstname: "Alice", Lastname: "Smith", Role: domain.RoleAdmin})
	require.NoError(t, err)

	_, err = f.user.Get(context.Background(), adminB, id)
	assert.True(t, domain.IsNotFound(err))
	assert.True(t, domain.IsNotFound(f.user.Delete(context.Background(), adminB, id)))

	pw := "n3w.password"
	require.NoError(t, f.user.Update(context.Background(), adminA, id, models.UserUpdate{Password: &pw}))
	creds, err := f.users.Credentials(context.Background(), "A", "alice.smith")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(pw)))

	require.NoError(t, f.user.Replace(context.Background(), adminA, id, models.NewUser{Password: "an0ther.pw", Firstname: "Alicia", Lastname: "Smith", Role: domain.RoleAdmin}))
	u, err := f.user.Get(context.Background(), adminA, id)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", u.Firstname)
	assert.Equal(t, "alice.smith", u.Username)
}

func TestUserListUsesCallerTenant(t *testing.T) {
	exec := query.NewMemoryExecutor()
	for i, tenant := range []string{"A", "A", "B"} {
		exec.Insert(query.Users.Name, map[string]any{
			"_id":        fmt.Sprintf("u-%d", i),
			"tenant_id":  tenant,
			"username":   fmt.Sprintf("user.number%d", i),
			"role":       int64(domain.RoleAdmin),
			"created_on": fixedNow.Add(time.Duration(i) * time.Minute),
		})
	}
	svc := UserService{Executor: exec}
	admin := principal(t, "u-0", "A", domain.RoleAdmin)

	page, err := svc.List(context.Background(), admin, query.FilterSpec{Equal: []query.Equal{{Field: "tenant_id", Value: "B"}}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalItems)
	for _, u := range page.Items {
		assert.Equal(t, "A", u.Tenant())
	}
}

func TestActivityRecordListExport(t *testing.T) {
	store := memActivities{query.NewMemoryExecutor()}
	tick := fixedNow
	svc := ActivityService{Store: store, Now: func() time.Time { tick = tick.Add(time.Second); return tick }}

	for i := 0; i < 3; i++ {
		_, err := svc.Record(context.Background(), models.UserActivity{TenantID: "A", UserID: "u-1", Username: "administrator", Action: "POST", Path: "/api/v1/users"})
		require.NoError(t, err)
	}
	_, err := svc.Record(context.Background(), models.UserActivity{TenantID: "B", UserID: "u-9", Username: "other.admin", Action: "DELETE", Path: "/api/v1/users/u-3"})
	require.NoError(t, err)

	admin := principal(t, "u-1", "A", domain.RoleAdmin)
	page, err := svc.List(context.Background(), admin, query.DefaultFilter(1, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalItems)
	assert.Equal(t, int64(2), page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.True(t, page.Items[0].CreatedOn.After(page.Items[1].CreatedOn))

	pdf, filename, err := svc.ExportPDF(context.Background(), admin, query.DefaultFilter(1, 50))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
	assert.Contains(t, filename, "ACTIVITY_A_")
}

func TestLogServiceKeepsPresetID(t *testing.T) {
	store := newMemLogs()
	svc := LogService{Store: store, Now: func() time.Time { return fixedNow }}

	id, err := svc.Log(context.Background(), models.LogItem{ID: "corr-1", TenantID: "A", Type: models.LogError, Message: "boom"})
	require.NoError(t, err)
	assert.Equal(t, "corr-1", id)

	id2, err := svc.Log(context.Background(), models.LogItem{TenantID: "A", Message: "user created"})
	require.NoError(t, err)
	assert.NotEmpty(t, id2)

	admin := principal(t, "u-1", "A", domain.RoleAdmin)
	item, err := svc.Get(context.Background(), admin, "corr-1")
	require.NoError(t, err)
	assert.Equal(t, "boom", item.Message)

	other := principal(t, "u-2", "B", domain.RoleAdmin)
	_, err = svc.Get(context.Background(), other, "corr-1")
	assert.True(t, domain.IsNotFound(err))

	page, err := svc.List(context.Background(), admin, query.FilterSpec{Equal: []query.Equal{{Field: "type", Value: models.LogInfo}}})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "user created", page.Items[0].Message)
}
