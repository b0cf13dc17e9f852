package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Domain   string `json:"domain" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates a tenant user against the tenant owning the domain.
func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		h.RespondDomainError(c, err)
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	res, err := h.Users.Authenticate(ctx, req.Domain, req.Username, req.Password)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// SuperLogin authenticates the super user; the token is bound to the domain's tenant.
func (h *Handlers) SuperLogin(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		h.RespondDomainError(c, err)
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	res, err := h.Users.AuthenticateSuper(ctx, req.Domain, req.Username, req.Password)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
