package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tenantadmin/internal/query"
)

func (h *Handlers) ListLogs(c *gin.Context) {
	spec, err := listFilter(c)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	h.filterLogs(c, spec)
}

func (h *Handlers) FilterLogs(c *gin.Context) {
	spec, err := bodyFilter(c)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	h.filterLogs(c, spec)
}

func (h *Handlers) filterLogs(c *gin.Context, spec query.FilterSpec) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	page, err := h.Logs.List(ctx, principal(c), spec)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handlers) GetLog(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	item, err := h.Logs.Get(ctx, principal(c), c.Param("id"))
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}
