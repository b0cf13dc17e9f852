package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"tenantadmin/internal/auth"
	"tenantadmin/internal/domain"
	"tenantadmin/internal/http/middleware"
	"tenantadmin/internal/query"
)

// RespondError sends the standard error payload with request_id included.
func RespondError(c *gin.Context, status int, parameter, message string) {
	payload := gin.H{
		"status_code": status,
		"message":     message,
		"request_id":  middleware.GetRequestID(c),
	}
	if parameter != "" {
		payload["parameter"] = parameter
	}
	c.AbortWithStatusJSON(status, payload)
}

// bindJSON decodes the body into dst; failures become field-tagged validation errors.
func bindJSON(c *gin.Context, dst any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return domain.ValidationError{Field: "body", Msg: "Request body is empty."}
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		return bindingError(err)
	}
	return nil
}

// listFilter is the filter of plain GET list endpoints: pagination only, default sort.
func listFilter(c *gin.Context) (query.FilterSpec, error) {
	return query.ParseFilter(pageParams(c, map[string]any{}))
}

// bodyFilter parses a FilterSpec body; page and page_size query params override the body.
func bodyFilter(c *gin.Context) (query.FilterSpec, error) {
	payload := map[string]any{}
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
			return query.FilterSpec{}, domain.ValidationError{Field: "body", Msg: "Filter is not valid JSON.", Err: err}
		}
	}
	return query.ParseFilter(pageParams(c, payload))
}

func pageParams(c *gin.Context, payload map[string]any) map[string]any {
	if v, ok := c.GetQuery("page"); ok {
		payload["page"] = v
	}
	if v, ok := c.GetQuery("page_size"); ok {
		payload["page_size"] = v
	}
	return payload
}

func principal(c *gin.Context) auth.Principal {
	p, _ := middleware.PrincipalFrom(c)
	return p
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
