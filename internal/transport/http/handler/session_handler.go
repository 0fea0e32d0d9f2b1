package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-library-api/internal/service"
	mdw "go-library-api/internal/transport/http/middleware"
	resp "go-library-api/internal/transport/http/response"
)

type SessionHandler struct {
	auth *service.AuthService
}

func NewSessionHandler(auth *service.AuthService) *SessionHandler {
	return &SessionHandler{auth: auth}
}

// Mount wires POST /session onto the public group and DELETE /session
// onto the authenticated one.
func (h *SessionHandler) Mount(public, authed *gin.RouterGroup) {
	public.POST("/session", h.create)
	authed.DELETE("/session", h.destroy)
}

// create logs a user in; the token rotates on every successful login.
func (h *SessionHandler) create(c *gin.Context) {
	var in struct {
		Email    string `json:"email_address"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	u, err := h.auth.Authenticate(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		resp.Err(c, err)
		return
	}
	tok, err := h.auth.IssueToken(c.Request.Context(), u)
	if err != nil {
		resp.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"auth_token": tok, "user": userJSON(u)})
}

func (h *SessionHandler) destroy(c *gin.Context) {
	if err := h.auth.RevokeToken(c.Request.Context(), mdw.CurrentUser(c)); err != nil {
		resp.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
