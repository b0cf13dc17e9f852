package models

import "time"

const (
	LogInfo  = "info"
	LogError = "error"
)

// LogItem is an audit log entry.
type LogItem struct {
	ID        string      `json:"_id" bson:"_id"`
	TenantID  string      `json:"tenant_id" bson:"tenant_id"`
	UserID    string      `json:"user_id" bson:"user_id"`
	Username  string      `json:"username" bson:"username"`
	Type      string      `json:"type" bson:"type"`
	Message   string      `json:"message" bson:"message"`
	Request   *LogRequest `json:"request,omitempty" bson:"request,omitempty"`
	CreatedOn time.Time   `json:"created_on" bson:"created_on"`
}

// LogRequest is the request summary kept with a log item. Headers are never kept.
type LogRequest struct {
	Method        string            `json:"method" bson:"method"`
	URL           string            `json:"url" bson:"url"`
	Params        map[string]string `json:"params,omitempty" bson:"params,omitempty"`
	Query         map[string]string `json:"query,omitempty" bson:"query,omitempty"`
	StatusCode    int               `json:"status_code" bson:"status_code"`
	StatusMessage string            `json:"status_message,omitempty" bson:"status_message,omitempty"`
}
