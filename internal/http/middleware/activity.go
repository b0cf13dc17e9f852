package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tenantadmin/internal/domain/models"
	"tenantadmin/internal/utils"
)

const activityKey = "activity"

// ActivityRecorder stores user activity.
type ActivityRecorder interface {
	Record(ctx context.Context, a models.UserActivity) (string, error)
}

// EventLogger stores audit log items.
type EventLogger interface {
	Log(ctx context.Context, item models.LogItem) (string, error)
}

type activityNote struct {
	reference string
	message   string
}

// SetActivity marks the request as a recordable mutation.
func SetActivity(c *gin.Context, reference, message string) {
	c.Set(activityKey, activityNote{reference: reference, message: message})
}

// Activity records a UserActivity and an info LogItem for every successful request marked with SetActivity.
func Activity(activities ActivityRecorder, logs EventLogger, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		v, ok := c.Get(activityKey)
		if !ok || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		note := v.(activityNote)
		p, ok := PrincipalFrom(c)
		if !ok {
			return
		}

		ctx := context.WithoutCancel(c.Request.Context())
		path := c.Request.URL.Path
		_, err := activities.Record(ctx, models.UserActivity{
			TenantID:  p.TenantID(),
			UserID:    p.UserID(),
			Username:  p.Username(),
			Action:    c.Request.Method,
			Path:      path,
			Reference: note.reference,
			Message:   note.message,
		})
		if err != nil {
			logger.Warn("activity not recorded", zap.String("request_id", GetRequestID(c)), zap.Error(err))
		}

		_, err = logs.Log(ctx, models.LogItem{
			TenantID: p.TenantID(),
			UserID:   p.UserID(),
			Username: p.Username(),
			Type:     models.LogInfo,
			Message:  fmt.Sprintf("%s %s", c.Request.Method, path),
			Request:  RequestSummary(c, c.Writer.Status(), ""),
		})
		if err != nil {
			logger.Warn("log item not stored", zap.String("request_id", GetRequestID(c)), zap.Error(err))
		}
		utils.LogEvent(logger, GetRequestID(c), "activity", c.Request.Method, path+" "+note.reference)
	}
}

// RequestSummary describes the request for a log item. Headers are left out.
func RequestSummary(c *gin.Context, status int, statusMessage string) *models.LogRequest {
	req := &models.LogRequest{
		Method:        c.Request.Method,
		URL:           c.Request.URL.Path,
		StatusCode:    status,
		StatusMessage: statusMessage,
	}
	if len(c.Params) > 0 {
		req.Params = make(map[string]string, len(c.Params))
		for _, p := range c.Params {
			req.Params[p.Key] = p.Value
		}
	}
	if q := c.Request.URL.Query(); len(q) > 0 {
		req.Query = make(map[string]string, len(q))
		for k := range q {
			req.Query[k] = q.Get(k)
		}
	}
	return req
}
