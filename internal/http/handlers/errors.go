package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tenantadmin/internal/domain"
	"tenantadmin/internal/domain/models"
	"tenantadmin/internal/http/middleware"
)

const internalMessage = "Internal server error."

// RespondDomainError maps domain errors to HTTP responses. Anything unmapped is a 500 whose
// _id names the error log item written for it.
func (h *Handlers) RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		RespondError(c, http.StatusBadRequest, domain.FieldOf(err), validationMessage(err))
	case domain.IsAuthentication(err):
		RespondError(c, http.StatusUnauthorized, "", err.Error())
	case domain.IsAuthorization(err):
		RespondError(c, http.StatusForbidden, "", err.Error())
	case domain.IsNotFound(err):
		RespondError(c, http.StatusNotFound, "", err.Error())
	case domain.IsConflict(err):
		RespondError(c, http.StatusConflict, "", err.Error())
	case domain.IsCanceled(err):
		RespondError(c, http.StatusRequestTimeout, "", "Request was cancelled before it completed.")
	default:
		h.respondInternal(c, err)
	}
}

func validationMessage(err error) string {
	var ve domain.ValidationError
	if errors.As(err, &ve) && ve.Msg != "" {
		return ve.Msg
	}
	return err.Error()
}

func (h *Handlers) respondInternal(c *gin.Context, err error) {
	id := uuid.NewString()
	var se domain.StoreError
	if errors.As(err, &se) && se.CorrelationID != "" {
		id = se.CorrelationID
	}

	h.logger().Error("request failed",
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.String("correlation_id", id),
		zap.Error(err),
	)

	item := models.LogItem{
		ID:      id,
		Type:    models.LogError,
		Message: err.Error(),
		Request: middleware.RequestSummary(c, http.StatusInternalServerError, internalMessage),
	}
	if p, ok := middleware.PrincipalFrom(c); ok {
		item.TenantID, item.UserID, item.Username = p.TenantID(), p.UserID(), p.Username()
	}
	if h.Logs.Store != nil {
		if _, logErr := h.Logs.Log(context.WithoutCancel(c.Request.Context()), item); logErr != nil {
			h.logger().Warn("error log item not stored", zap.String("correlation_id", id), zap.Error(logErr))
		}
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"status_code": http.StatusInternalServerError,
		"message":     internalMessage,
		"_id":         id,
		"request_id":  middleware.GetRequestID(c),
	})
}
