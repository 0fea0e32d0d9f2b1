package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-library-api/internal/apperr"
	"go-library-api/internal/domain"
	"go-library-api/internal/service"
	mdw "go-library-api/internal/transport/http/middleware"
	resp "go-library-api/internal/transport/http/response"
)

type BorrowingHandler struct {
	loans *service.LoanService
	dash  *service.DashboardService
}

func NewBorrowingHandler(loans *service.LoanService, dash *service.DashboardService) *BorrowingHandler {
	return &BorrowingHandler{loans: loans, dash: dash}
}

func (h *BorrowingHandler) Mount(authed *gin.RouterGroup) {
	authed.POST("/borrowings", h.create)
	authed.GET("/borrowings", h.index)
	authed.GET("/borrowings/:id", h.show)
	authed.PATCH("/borrowings/:id", h.update)
	authed.DELETE("/borrowings/:id", h.destroy)
	authed.POST("/borrowings/:id/return", h.returnBook)
}

// create lets a member borrow a book for themselves.
func (h *BorrowingHandler) create(c *gin.Context) {
	actor := mdw.CurrentUser(c)
	if !domain.Allow(actor, domain.ActionLoanCreate, actor.ID) {
		resp.Err(c, apperr.Forbidden("Only members can borrow books"))
		return
	}
	var in struct {
		BookID string `json:"book_id"`
	}
	if err := c.ShouldBindJSON(&in); err != nil || in.BookID == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		return
	}
	b, err := h.loans.Create(c.Request.Context(), actor.ID, in.BookID)
	if err != nil {
		resp.Err(c, err)
		return
	}
	h.dash.InvalidateLibrarian(c.Request.Context())
	c.JSON(http.StatusCreated, b)
}

func (h *BorrowingHandler) index(c *gin.Context) {
	bs, err := h.loans.List(c.Request.Context(), mdw.CurrentUser(c))
	if err != nil {
		resp.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, bs)
}

// show: missing loans are 404 for everyone; existing loans owned by
// someone else are 403 for members.
func (h *BorrowingHandler) show(c *gin.Context) {
	b, err := h.loans.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		resp.Err(c, err)
		return
	}
	if !domain.Allow(mdw.CurrentUser(c), domain.ActionLoanView, b.UserID) {
		resp.Forbidden(c)
		return
	}
	c.JSON(http.StatusOK, b)
}

// update changes the due date, either direction.
func (h *BorrowingHandler) update(c *gin.Context) {
	if !domain.Allow(mdw.CurrentUser(c), domain.ActionLoanUpdate, "") {
		resp.Forbidden(c)
		return
	}
	var in struct {
		DueDate time.Time `json:"due_date"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.BadJSON(c, err)
		return
	}
	if in.DueDate.IsZero() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": []string{"Due date can't be blank"}})
		return
	}
	b, err := h.loans.UpdateDueDate(c.Request.Context(), c.Param("id"), in.DueDate)
	if err != nil {
		resp.Err(c, err)
		return
	}
	h.dash.InvalidateLibrarian(c.Request.Context())
	c.JSON(http.StatusOK, b)
}

func (h *BorrowingHandler) destroy(c *gin.Context) {
	if !domain.Allow(mdw.CurrentUser(c), domain.ActionLoanDelete, "") {
		resp.Forbidden(c)
		return
	}
	if err := h.loans.Delete(c.Request.Context(), c.Param("id")); err != nil {
		resp.Err(c, err)
		return
	}
	h.dash.InvalidateLibrarian(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// returnBook is idempotent: a repeat call answers 200 with an
// informational message instead of an error.
func (h *BorrowingHandler) returnBook(c *gin.Context) {
	if !domain.Allow(mdw.CurrentUser(c), domain.ActionLoanReturn, "") {
		resp.Err(c, apperr.Forbidden("Only librarians can mark returns"))
		return
	}
	b, already, err := h.loans.Return(c.Request.Context(), c.Param("id"))
	if err != nil {
		resp.Err(c, err)
		return
	}
	if already {
		c.JSON(http.StatusOK, gin.H{"message": "Already returned"})
		return
	}
	h.dash.InvalidateLibrarian(c.Request.Context())
	c.JSON(http.StatusOK, b)
}
