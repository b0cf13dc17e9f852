package auth

import (
	"tenantadmin/internal/domain"
	"tenantadmin/internal/query"
)

// Requirement is what a resource demands of the caller.
type Requirement struct {
	MinRole     domain.Role
	TenantOwned bool
}

var (
	TenantAdministration = Requirement{MinRole: domain.RoleSuperUser}
	TenantResources      = Requirement{MinRole: domain.RoleAdmin, TenantOwned: true}
)

// Enforce checks the role of p against req and returns the scope its queries must run under.
// Any doubt about tenant ownership is refused.
func Enforce(p Principal, req Requirement) (query.Scope, error) {
	if !p.Authenticated() {
		return query.Scope{}, domain.AuthorizationError{Msg: "Unauthorized Access."}
	}
	if !p.Role().Satisfies(req.MinRole) {
		return query.Scope{}, domain.AuthorizationError{Msg: "Unauthorized Access."}
	}
	if !req.TenantOwned {
		return query.GlobalScope(), nil
	}
	if p.TenantID() == "" {
		return query.Scope{}, domain.AuthorizationError{Msg: "Principal is not bound to a tenant."}
	}
	return query.TenantScope(p.TenantID()), nil
}

// ScopeFilter enforces req and returns spec rewritten to the principal's tenant, together with
// the scope to compile it under.
func ScopeFilter(p Principal, req Requirement, c query.Collection, spec query.FilterSpec) (query.FilterSpec, query.Scope, error) {
	scope, err := Enforce(p, req)
	if err != nil {
		return query.FilterSpec{}, query.Scope{}, err
	}
	spec = spec.Normalize()
	if c.TenantOwned() {
		spec = spec.ScopedTo(c.TenantField, scope.TenantID)
	}
	return spec, scope, nil
}
