package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenantadmin/internal/domain"
	"tenantadmin/internal/query"
)

const secret = "test-secret"

func TestResolveIssuedToken(t *testing.T) {
	token, err := NewIssuer(secret, time.Hour).Issue("u-1", "t-1", "administrator", domain.RoleAdmin)
	require.NoError(t, err)

	p, err := NewResolver(secret).Resolve("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", p.UserID())
	assert.Equal(t, "t-1", p.TenantID())
	assert.Equal(t, "administrator", p.Username())
	assert.Equal(t, domain.RoleAdmin, p.Role())
	assert.True(t, p.Authenticated())
}

func TestResolveRejects(t *testing.T) {
	good, err := NewIssuer(secret, time.Hour).Issue("u-1", "t-1", "administrator", domain.RoleAdmin)
	require.NoError(t, err)

	expiredIssuer := NewIssuer(secret, time.Minute)
	expiredIssuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, err := expiredIssuer.Issue("u-1", "t-1", "administrator", domain.RoleAdmin)
	require.NoError(t, err)

	forged, err := NewIssuer("other-secret", time.Hour).Issue("u-1", "t-1", "administrator", domain.RoleSuperUser)
	require.NoError(t, err)

	noTenant, err := NewIssuer(secret, time.Hour).Issue("u-1", "", "administrator", domain.RoleAdmin)
	require.NoError(t, err)

	badRole, err := NewIssuer(secret, time.Hour).Issue("u-1", "t-1", "administrator", domain.Role(9))
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u-1", TenantID: "t-1", Role: domain.RoleAdmin}).SignedString([]byte(secret))
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID: "u-1", TenantID: "t-1", Role: domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := map[string]string{
		"absent":          "",
		"no scheme":       good,
		"wrong scheme":    "Basic " + good,
		"malformed":       "Bearer not.a.jwt",
		"expired":         "Bearer " + expired,
		"bad signature":   "Bearer " + forged,
		"admin no tenant": "Bearer " + noTenant,
		"unknown role":    "Bearer " + badRole,
		"no expiry":       "Bearer " + noExp,
		"alg none":        "Bearer " + none,
	}
	r := NewResolver(secret)
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			p, err := r.Resolve(header)
			require.Error(t, err)
			assert.True(t, domain.IsAuthentication(err))
			assert.NotContains(t, err.Error(), good)
			assert.False(t, p.Authenticated())
		})
	}
}

func TestResolveSuperUserWithoutTenant(t *testing.T) {
	token, err := NewIssuer(secret, time.Hour).Issue("root", "", "superuser", domain.RoleSuperUser)
	require.NoError(t, err)

	p, err := NewResolver(secret).Resolve("bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "", p.TenantID())
	assert.Equal(t, domain.RoleSuperUser, p.Role())
}

func TestEnforce(t *testing.T) {
	admin := Principal{userID: "u-1", tenantID: "A", username: "administrator", role: domain.RoleAdmin}
	super := Principal{userID: "root", tenantID: "A", username: "superuser", role: domain.RoleSuperUser}
	detached := Principal{userID: "root", username: "superuser", role: domain.RoleSuperUser}

	scope, err := Enforce(admin, TenantResources)
	require.NoError(t, err)
	assert.Equal(t, query.TenantScope("A"), scope)

	_, err = Enforce(admin, TenantAdministration)
	assert.True(t, domain.IsAuthorization(err))

	scope, err = Enforce(super, TenantAdministration)
	require.NoError(t, err)
	assert.Equal(t, query.GlobalScope(), scope)

	scope, err = Enforce(super, TenantResources)
	require.NoError(t, err)
	assert.Equal(t, query.TenantScope("A"), scope)

	_, err = Enforce(detached, TenantResources)
	assert.True(t, domain.IsAuthorization(err), "no tenant means no tenant-owned access")

	_, err = Enforce(Principal{}, TenantResources)
	assert.True(t, domain.IsAuthorization(err))
}

func TestScopeFilterReplacesClientTenant(t *testing.T) {
	admin := Principal{userID: "u-1", tenantID: "A", role: domain.RoleAdmin}
	spec := query.FilterSpec{Equal: []query.Equal{{Field: "tenant_id", Value: "B"}}}

	scoped, scope, err := ScopeFilter(admin, TenantResources, query.Users, spec)
	require.NoError(t, err)
	assert.Equal(t, []query.Equal{{Field: "tenant_id", Value: "A"}}, scoped.Equal)

	plan, err := query.Compile(query.Users, scoped, scope)
	require.NoError(t, err)
	assert.Equal(t, []query.Equal{{Field: "tenant_id", Value: "A"}}, plan.Stages[0].Equal)
}
