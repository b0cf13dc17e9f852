package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tenantadmin/internal/services"
)

// Handlers serves the /api/v1 surface. Every collaborator is injected.
type Handlers struct {
	Tenants      services.TenantService
	Users        services.UserService
	Activities   services.ActivityService
	Logs         services.LogService
	Logger       *zap.Logger
	QueryTimeout time.Duration
	// Ping reports store health; nil means always healthy.
	Ping func(ctx context.Context) error
}

// ctx bounds store calls of a request by the configured query timeout.
func (h *Handlers) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.QueryTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.QueryTimeout)
}

func (h *Handlers) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}
