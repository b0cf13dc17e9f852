package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tenantadmin/internal/http/middleware"
)

// Health reports liveness plus store reachability when a Ping is configured.
func (h *Handlers) Health(c *gin.Context) {
	if h.Ping != nil {
		ctx, cancel := h.ctx(c)
		defer cancel()
		if err := h.Ping(ctx); err != nil {
			h.logger().Warn("health check failed", zap.String("request_id", middleware.GetRequestID(c)), zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "request_id": middleware.GetRequestID(c)})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// NotFound answers unknown routes.
func NotFound(c *gin.Context) {
	RespondError(c, http.StatusNotFound, "", "Route "+c.Request.Method+" "+c.Request.URL.Path+" does not exist.")
}
