package domain

import "strconv"

// Role is the numeric user role; lower numbers carry more privilege.
type Role int

const (
	RoleSuperUser Role = 1
	RoleAdmin     Role = 2
)

var roleNames = map[Role]string{
	RoleSuperUser: "SUPER_USER",
	RoleAdmin:     "ADMIN",
}

// privilege ranks known roles. Higher rank, more privilege. Unknown roles rank 0.
var privilege = map[Role]int{
	RoleSuperUser: 200,
	RoleAdmin:     100,
}

func (r Role) String() string {
	if n, ok := roleNames[r]; ok {
		return n
	}
	return "ROLE(" + strconv.Itoa(int(r)) + ")"
}

// Valid reports whether r is a declared role.
func (r Role) Valid() bool {
	_, ok := privilege[r]
	return ok
}

// Privilege returns the rank of r; unknown roles return 0.
func (r Role) Privilege() int {
	return privilege[r]
}

// Satisfies reports whether r is at least as privileged as min. Unknown roles never satisfy.
func (r Role) Satisfies(min Role) bool {
	if !r.Valid() || !min.Valid() {
		return false
	}
	return r.Privilege() >= min.Privilege()
}

// Roles lists the declared roles, most privileged first.
func Roles() []Role {
	return []Role{RoleSuperUser, RoleAdmin}
}
