package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-library-api/internal/domain"
	"go-library-api/internal/service"
	mdw "go-library-api/internal/transport/http/middleware"
	resp "go-library-api/internal/transport/http/response"
)

type DashboardHandler struct {
	dash *service.DashboardService
}

func NewDashboardHandler(dash *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dash: dash}
}

func (h *DashboardHandler) Mount(authed *gin.RouterGroup) {
	authed.GET("/dashboard/librarian", h.librarian)
	authed.GET("/dashboard/member", h.member)
}

func (h *DashboardHandler) librarian(c *gin.Context) {
	if !domain.Allow(mdw.CurrentUser(c), domain.ActionDashboardLibrarian, "") {
		resp.Forbidden(c)
		return
	}
	out, err := h.dash.Librarian(c.Request.Context())
	if err != nil {
		resp.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *DashboardHandler) member(c *gin.Context) {
	actor := mdw.CurrentUser(c)
	if !domain.Allow(actor, domain.ActionDashboardMember, "") {
		resp.Forbidden(c)
		return
	}
	out, err := h.dash.Member(c.Request.Context(), actor.ID)
	if err != nil {
		resp.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
