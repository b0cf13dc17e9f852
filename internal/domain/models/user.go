package models

import (
	"time"

	"tenantadmin/internal/domain"
)

// User never carries its password hash; see Credentials.
type User struct {
	ID        string      `json:"_id" bson:"_id"`
	TenantID  *string     `json:"tenant_id" bson:"tenant_id"`
	Username  string      `json:"username" bson:"username"`
	Firstname string      `json:"firstname" bson:"firstname"`
	Lastname  string      `json:"lastname" bson:"lastname"`
	Role      domain.Role `json:"role" bson:"role"`
	Disabled  bool        `json:"disabled" bson:"disabled"`
	CreatedOn time.Time   `json:"created_on" bson:"created_on"`
	UpdatedOn *time.Time  `json:"updated_on,omitempty" bson:"updated_on,omitempty"`
}

// Tenant returns the owning tenant id, empty for the super user.
func (u User) Tenant() string {
	if u.TenantID == nil {
		return ""
	}
	return *u.TenantID
}

// NewUser is the input for creating or replacing a user. Password is plain text.
type NewUser struct {
	TenantID  *string
	Username  string
	Password  string
	Firstname string
	Lastname  string
	Role      domain.Role
	Disabled  bool
}

// UserUpdate supports PATCH-style updates via key presence.
type UserUpdate struct {
	Username  *string
	Password  *string
	Firstname *string
	Lastname  *string
	Role      *domain.Role
	Disabled  *bool
}

func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.Password == nil && u.Firstname == nil &&
		u.Lastname == nil && u.Role == nil && u.Disabled == nil
}

// Credentials is what login needs to verify a user.
type Credentials struct {
	UserID       string
	TenantID     *string
	Username     string
	Role         domain.Role
	PasswordHash string
	Disabled     bool
}
