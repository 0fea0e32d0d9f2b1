// Package response renders JSON bodies and maps application error
// kinds to HTTP statuses in exactly one place.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-library-api/internal/apperr"
)

// Err renders the error body for an application error and reports the
// chosen status. 422 carries an "errors" array of human-readable
// messages; everything else a single "error" string.
func Err(c *gin.Context, err error) {
	ae := apperr.As(err)
	switch ae.Kind {
	case apperr.KindUnauthenticated:
		c.JSON(http.StatusUnauthorized, gin.H{"error": ae.Error()})
	case apperr.KindForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": ae.Error()})
	case apperr.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": ae.Error()})
	case apperr.KindValidation:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": ae.Messages()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func AbortUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
}

func Forbidden(c *gin.Context) {
	Err(c, apperr.Forbidden("Access denied."))
}

// BadJSON maps body-binding failures to the validation status the rest
// of the API uses for malformed input.
func BadJSON(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": []string{err.Error()}})
}
