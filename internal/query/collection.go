package query

// Collection describes a resource schema known to the compiler and the executors.
type Collection struct {
	Name string
	// Key is the unique identifier field, used as the sort tie-break.
	Key string
	// TenantField is empty for global collections.
	TenantField string
	Fields      []string
}

// TenantOwned reports whether every query on c must be scoped to a tenant.
func (c Collection) TenantOwned() bool {
	return c.TenantField != ""
}

// Has reports whether field belongs to the schema.
func (c Collection) Has(field string) bool {
	for _, f := range c.Fields {
		if f == field {
			return true
		}
	}
	return false
}

var (
	Tenants = Collection{
		Name:   "tenants",
		Key:    "_id",
		Fields: []string{"_id", "name", "domain", "disabled", "created_on", "updated_on"},
	}
	Users = Collection{
		Name:        "users",
		Key:         "_id",
		TenantField: "tenant_id",
		Fields:      []string{"_id", "tenant_id", "username", "firstname", "lastname", "role", "disabled", "created_on", "updated_on"},
	}
	Activities = Collection{
		Name:        "user-activity",
		Key:         "_id",
		TenantField: "tenant_id",
		Fields:      []string{"_id", "tenant_id", "user_id", "username", "action", "path", "reference", "message", "created_on"},
	}
	Logs = Collection{
		Name:        "logs",
		Key:         "_id",
		TenantField: "tenant_id",
		Fields:      []string{"_id", "tenant_id", "user_id", "username", "type", "message", "created_on"},
	}
)
