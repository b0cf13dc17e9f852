package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"tenantadmin/internal/auth"
	"tenantadmin/internal/domain"
	h "tenantadmin/internal/http/handlers"
	"tenantadmin/internal/http/middleware"
)

type RouterConfig struct {
	Handlers       *h.Handlers
	Resolver       *auth.Resolver
	Logger         *zap.Logger
	AllowedOrigins []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	h.RegisterValidators()
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(cfg.Handlers.RespondDomainError),
		middleware.CORS(cfg.AllowedOrigins),
	)
	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Warn("failed to set trusted proxies", zap.Error(err))
	}

	r.OPTIONS("/*path", func(c *gin.Context) { c.AbortWithStatus(http.StatusNoContent) })
	r.NoRoute(h.NotFound)

	hs := cfg.Handlers
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", hs.Health)
		v1.GET("/metrics", gin.WrapH(promhttp.Handler()))

		authGroup := v1.Group("/auth")
		authGroup.POST("/login", hs.Login)
		authGroup.POST("/super-login", hs.SuperLogin)

		secured := v1.Group("")
		secured.Use(middleware.Authenticate(cfg.Resolver), middleware.Activity(hs.Activities, hs.Logs, logger))

		tenants := secured.Group("/tenants", middleware.RequireRole(domain.RoleSuperUser))
		tenants.POST("", hs.CreateTenant)
		tenants.GET("", hs.ListTenants)
		tenants.POST("/filters", hs.FilterTenants)
		tenants.GET("/:id", hs.GetTenant)
		tenants.PUT("/:id", hs.ReplaceTenant)
		tenants.PATCH("/:id", hs.UpdateTenant)
		tenants.DELETE("/:id", hs.DeleteTenant)

		users := secured.Group("/users", middleware.RequireRole(domain.RoleAdmin))
		users.POST("", hs.CreateUser)
		users.GET("", hs.ListUsers)
		users.POST("/filters", hs.FilterUsers)
		users.GET("/:id", hs.GetUser)
		users.PUT("/:id", hs.ReplaceUser)
		users.PATCH("/:id", hs.UpdateUser)
		users.DELETE("/:id", hs.DeleteUser)

		activities := secured.Group("/activities", middleware.RequireRole(domain.RoleAdmin))
		activities.GET("", hs.ListActivities)
		activities.POST("/filters", hs.FilterActivities)
		activities.POST("/export", hs.ExportActivities)

		logs := secured.Group("/logs", middleware.RequireRole(domain.RoleAdmin))
		logs.GET("", hs.ListLogs)
		logs.POST("/filters", hs.FilterLogs)
		logs.GET("/:id", hs.GetLog)
	}

	return r
}
