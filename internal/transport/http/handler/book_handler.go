package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-library-api/internal/domain"
	"go-library-api/internal/service"
	mdw "go-library-api/internal/transport/http/middleware"
	resp "go-library-api/internal/transport/http/response"
)

type BookHandler struct {
	catalog *service.CatalogService
}

func NewBookHandler(catalog *service.CatalogService) *BookHandler {
	return &BookHandler{catalog: catalog}
}

func (h *BookHandler) Mount(authed *gin.RouterGroup) {
	authed.GET("/books", h.index)
	authed.GET("/books/:id", h.show)
	authed.POST("/books", h.create)
	authed.PATCH("/books/:id", h.update)
	authed.DELETE("/books/:id", h.destroy)
}

func (h *BookHandler) index(c *gin.Context) {
	// catalog read is open to any authenticated user
	books, err := h.catalog.Search(c.Request.Context(), domain.BookFilters{
		Title:  c.Query("title"),
		Author: c.Query("author"),
		Genre:  c.Query("genre"),
		ISBN:   c.Query("isbn"),
	})
	if err != nil {
		resp.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

func (h *BookHandler) show(c *gin.Context) {
	b, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		resp.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookHandler) create(c *gin.Context) {
	if !domain.Allow(mdw.CurrentUser(c), domain.ActionCatalogWrite, "") {
		resp.Forbidden(c)
		return
	}
	var in struct {
		Book service.CreateBookInput `json:"book"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.BadJSON(c, err)
		return
	}
	b, err := h.catalog.Create(c.Request.Context(), in.Book)
	if err != nil {
		resp.Err(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *BookHandler) update(c *gin.Context) {
	if !domain.Allow(mdw.CurrentUser(c), domain.ActionCatalogWrite, "") {
		resp.Forbidden(c)
		return
	}
	var in struct {
		Book service.UpdateBookInput `json:"book"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.BadJSON(c, err)
		return
	}
	b, err := h.catalog.Update(c.Request.Context(), c.Param("id"), in.Book)
	if err != nil {
		resp.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookHandler) destroy(c *gin.Context) {
	if !domain.Allow(mdw.CurrentUser(c), domain.ActionCatalogWrite, "") {
		resp.Forbidden(c)
		return
	}
	if err := h.catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		resp.Err(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
