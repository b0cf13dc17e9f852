package models

import "time"

// Tenant is the top-level owner of users and their records.
type Tenant struct {
	ID        string     `json:"_id" bson:"_id"`
	Name      string     `json:"name" bson:"name"`
	Domain    string     `json:"domain" bson:"domain"`
	Disabled  bool       `json:"disabled" bson:"disabled"`
	CreatedOn time.Time  `json:"created_on" bson:"created_on"`
	UpdatedOn *time.Time `json:"updated_on,omitempty" bson:"updated_on,omitempty"`
}

// TenantUpdate supports PATCH-style updates via key presence.
type TenantUpdate struct {
	Name     *string
	Domain   *string
	Disabled *bool
}

func (u TenantUpdate) Empty() bool {
	return u.Name == nil && u.Domain == nil && u.Disabled == nil
}
