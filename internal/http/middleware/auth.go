package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tenantadmin/internal/auth"
	"tenantadmin/internal/domain"
)

const principalKey = "principal"

// Authenticate resolves the bearer token into a Principal. Rejected requests end with 401.
func Authenticate(resolver *auth.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := resolver.Resolve(c.GetHeader("Authorization"))
		if err != nil {
			abort(c, http.StatusUnauthorized, err.Error())
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// PrincipalFrom returns the principal set by Authenticate.
func PrincipalFrom(c *gin.Context) (auth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}

// RequireRole only lets through principals at least as privileged as min.
func RequireRole(min domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok || !p.Authenticated() {
			abort(c, http.StatusUnauthorized, "Token is not valid.")
			return
		}
		if !p.Role().Satisfies(min) {
			abort(c, http.StatusForbidden, "Unauthorized Access.")
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"status_code": status,
		"message":     message,
		"request_id":  GetRequestID(c),
	})
}
