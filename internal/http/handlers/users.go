package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tenantadmin/internal/domain"
	"tenantadmin/internal/domain/models"
	"tenantadmin/internal/http/middleware"
	"tenantadmin/internal/query"
)

type createUserRequest struct {
	Username  string      `json:"username" binding:"required,username"`
	Password  string      `json:"password" binding:"required,password"`
	Firstname string      `json:"firstname" binding:"required"`
	Lastname  string      `json:"lastname" binding:"required"`
	Role      domain.Role `json:"role" binding:"required"`
	Disabled  bool        `json:"disabled"`
}

type replaceUserRequest struct {
	Password  string      `json:"password" binding:"required,password"`
	Firstname string      `json:"firstname" binding:"required"`
	Lastname  string      `json:"lastname" binding:"required"`
	Role      domain.Role `json:"role" binding:"required"`
	Disabled  bool        `json:"disabled"`
}

type userPatch struct {
	Username  *string      `json:"username" binding:"omitempty,username"`
	Password  *string      `json:"password" binding:"omitempty,password"`
	Firstname *string      `json:"firstname"`
	Lastname  *string      `json:"lastname"`
	Role      *domain.Role `json:"role"`
	Disabled  *bool        `json:"disabled"`
}

func (h *Handlers) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := bindJSON(c, &req); err != nil {
		h.RespondDomainError(c, err)
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	id, err := h.Users.Create(ctx, principal(c), models.NewUser{
		Username:  req.Username,
		Password:  req.Password,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Role:      req.Role,
		Disabled:  req.Disabled,
	})
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	middleware.SetActivity(c, id, "User "+req.Username+" created.")
	c.JSON(http.StatusCreated, gin.H{"_id": id})
}

func (h *Handlers) ListUsers(c *gin.Context) {
	spec, err := listFilter(c)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	h.filterUsers(c, spec)
}

func (h *Handlers) FilterUsers(c *gin.Context) {
	spec, err := bodyFilter(c)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	h.filterUsers(c, spec)
}

func (h *Handlers) filterUsers(c *gin.Context, spec query.FilterSpec) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	page, err := h.Users.List(ctx, principal(c), spec)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetUser returns a user of the caller's tenant; the id "me" names the caller.
func (h *Handlers) GetUser(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	var (
		u   models.User
		err error
	)
	if id := c.Param("id"); id == "me" {
		u, err = h.Users.Me(ctx, principal(c))
	} else {
		u, err = h.Users.Get(ctx, principal(c), id)
	}
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handlers) ReplaceUser(c *gin.Context) {
	var req replaceUserRequest
	if err := bindJSON(c, &req); err != nil {
		h.RespondDomainError(c, err)
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	id := c.Param("id")
	err := h.Users.Replace(ctx, principal(c), id, models.NewUser{
		Password:  req.Password,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Role:      req.Role,
		Disabled:  req.Disabled,
	})
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	middleware.SetActivity(c, id, "User replaced.")
	noContent(c)
}

func (h *Handlers) UpdateUser(c *gin.Context) {
	var req userPatch
	if err := bindJSON(c, &req); err != nil {
		h.RespondDomainError(c, err)
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	id := c.Param("id")
	err := h.Users.Update(ctx, principal(c), id, models.UserUpdate{
		Username:  req.Username,
		Password:  req.Password,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Role:      req.Role,
		Disabled:  req.Disabled,
	})
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	middleware.SetActivity(c, id, "User updated.")
	noContent(c)
}

func (h *Handlers) DeleteUser(c *gin.Context) {
	ctx, cancel := h.ctx(c)
	defer cancel()

	id := c.Param("id")
	if err := h.Users.Delete(ctx, principal(c), id); err != nil {
		h.RespondDomainError(c, err)
		return
	}
	middleware.SetActivity(c, id, "User deleted.")
	noContent(c)
}
