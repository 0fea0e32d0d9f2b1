package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// KeyRequestID is both the header and the gin-context key carrying the
// per-request correlation id; the access log reads it back from here.
const KeyRequestID = "X-Request-ID"

// RequestID honors an inbound id from a trusted proxy and mints one
// otherwise. The id is echoed on the response so clients can quote it
// when reporting a failed borrow or login.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.Request.Header.Get(KeyRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Writer.Header().Set(KeyRequestID, rid)
		c.Set(KeyRequestID, rid)
		c.Next()
	}
}
