package handler

import (
	"github.com/gin-gonic/gin"

	"go-library-api/internal/domain"
)

// userJSON is the public shape of a user; created/updated timestamps
// and credentials stay out of API bodies.
func userJSON(u *domain.User) gin.H {
	return gin.H{
		"id":            u.ID,
		"name":          u.Name,
		"email_address": u.Email,
		"role":          u.Role,
	}
}
