package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"tenantadmin/internal/query"
)

func (h *Handlers) ListActivities(c *gin.Context) {
	spec, err := listFilter(c)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	h.filterActivities(c, spec)
}

func (h *Handlers) FilterActivities(c *gin.Context) {
	spec, err := bodyFilter(c)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	h.filterActivities(c, spec)
}

func (h *Handlers) filterActivities(c *gin.Context, spec query.FilterSpec) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	page, err := h.Activities.List(ctx, principal(c), spec)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ExportActivities renders the filtered page as a PDF attachment.
func (h *Handlers) ExportActivities(c *gin.Context) {
	spec, err := bodyFilter(c)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	pdf, filename, err := h.Activities.ExportPDF(ctx, principal(c), spec)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
