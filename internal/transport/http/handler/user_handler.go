package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-library-api/internal/domain"
	"go-library-api/internal/service"
	mdw "go-library-api/internal/transport/http/middleware"
	resp "go-library-api/internal/transport/http/response"
)

type UserHandler struct {
	auth  *service.AuthService
	users *service.UserService
}

func NewUserHandler(auth *service.AuthService, users *service.UserService) *UserHandler {
	return &UserHandler{auth: auth, users: users}
}

func (h *UserHandler) Mount(public, authed *gin.RouterGroup) {
	public.POST("/sign-up", h.signUp)
	authed.GET("/users", h.index)
	authed.GET("/users/:id", h.show)
	authed.PATCH("/users/:id", h.update)
	authed.DELETE("/users/:id", h.destroy)
}

// signUp creates a member account; the response is immediately usable
// on protected routes.
func (h *UserHandler) signUp(c *gin.Context) {
	var in struct {
		User service.SignUpInput `json:"user"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.BadJSON(c, err)
		return
	}
	u, tok, err := h.auth.SignUp(c.Request.Context(), in.User)
	if err != nil {
		resp.Err(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"auth_token": tok, "user": userJSON(u)})
}

func (h *UserHandler) index(c *gin.Context) {
	if !domain.Allow(mdw.CurrentUser(c), domain.ActionUserRead, "") {
		resp.Forbidden(c)
		return
	}
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		resp.Err(c, err)
		return
	}
	out := make([]gin.H, 0, len(users))
	for i := range users {
		out = append(out, userJSON(&users[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *UserHandler) show(c *gin.Context) {
	if !domain.Allow(mdw.CurrentUser(c), domain.ActionUserRead, "") {
		resp.Forbidden(c)
		return
	}
	u, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		resp.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, userJSON(u))
}

func (h *UserHandler) update(c *gin.Context) {
	if !domain.Allow(mdw.CurrentUser(c), domain.ActionUserWrite, "") {
		resp.Forbidden(c)
		return
	}
	var in struct {
		User service.UpdateUserInput `json:"user"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.BadJSON(c, err)
		return
	}
	u, err := h.users.Update(c.Request.Context(), c.Param("id"), in.User)
	if err != nil {
		resp.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, userJSON(u))
}

func (h *UserHandler) destroy(c *gin.Context) {
	if !domain.Allow(mdw.CurrentUser(c), domain.ActionUserWrite, "") {
		resp.Forbidden(c)
		return
	}
	if err := h.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		resp.Err(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
