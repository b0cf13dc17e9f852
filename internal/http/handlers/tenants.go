package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tenantadmin/internal/domain/models"
	"tenantadmin/internal/http/middleware"
	"tenantadmin/internal/query"
	"tenantadmin/internal/services"
)

type tenantRequest struct {
	Name     string `json:"name" binding:"required"`
	Domain   string `json:"domain" binding:"required"`
	Disabled bool   `json:"disabled"`
}

func (r tenantRequest) toNew() services.NewTenant {
	return services.NewTenant{Name: r.Name, Domain: r.Domain, Disabled: r.Disabled}
}

type tenantPatch struct {
	Name     *string `json:"name"`
	Domain   *string `json:"domain"`
	Disabled *bool   `json:"disabled"`
}

func (h *Handlers) CreateTenant(c *gin.Context) {
	var req tenantRequest
	if err := bindJSON(c, &req); err != nil {
		h.RespondDomainError(c, err)
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	created, err := h.Tenants.Create(ctx, principal(c), req.toNew())
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	middleware.SetActivity(c, created.ID, "Tenant "+req.Name+" created.")
	c.JSON(http.StatusCreated, created)
}

func (h *Handlers) ListTenants(c *gin.Context) {
	spec, err := listFilter(c)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	h.filterTenants(c, spec)
}

func (h *Handlers) FilterTenants(c *gin.Context) {
	spec, err := bodyFilter(c)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	h.filterTenants(c, spec)
}

func (h *Handlers) filterTenants(c *gin.Context, spec query.FilterSpec) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	page, err := h.Tenants.List(ctx, principal(c), spec)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handlers) GetTenant(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	t, err := h.Tenants.Get(ctx, principal(c), c.Param("id"))
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handlers) ReplaceTenant(c *gin.Context) {
	var req tenantRequest
	if err := bindJSON(c, &req); err != nil {
		h.RespondDomainError(c, err)
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	id := c.Param("id")
	if err := h.Tenants.Replace(ctx, principal(c), id, req.toNew()); err != nil {
		h.RespondDomainError(c, err)
		return
	}
	middleware.SetActivity(c, id, "Tenant "+req.Name+" replaced.")
	noContent(c)
}

func (h *Handlers) UpdateTenant(c *gin.Context) {
	var req tenantPatch
	if err := bindJSON(c, &req); err != nil {
		h.RespondDomainError(c, err)
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	id := c.Param("id")
	upd := models.TenantUpdate{Name: req.Name, Domain: req.Domain, Disabled: req.Disabled}
	if err := h.Tenants.Update(ctx, principal(c), id, upd); err != nil {
		h.RespondDomainError(c, err)
		return
	}
	middleware.SetActivity(c, id, "Tenant updated.")
	noContent(c)
}

func (h *Handlers) DeleteTenant(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	id := c.Param("id")
	if err := h.Tenants.Delete(ctx, principal(c), id); err != nil {
		h.RespondDomainError(c, err)
		return
	}
	middleware.SetActivity(c, id, "Tenant deleted.")
	noContent(c)
}
