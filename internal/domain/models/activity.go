package models

import "time"

// UserActivity records one successful mutating request.
type UserActivity struct {
	ID        string    `json:"_id" bson:"_id"`
	TenantID  string    `json:"tenant_id" bson:"tenant_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Username  string    `json:"username" bson:"username"`
	Action    string    `json:"action" bson:"action"`
	Path      string    `json:"path" bson:"path"`
	Reference string    `json:"reference,omitempty" bson:"reference,omitempty"`
	Message   string    `json:"message,omitempty" bson:"message,omitempty"`
	CreatedOn time.Time `json:"created_on" bson:"created_on"`
}
