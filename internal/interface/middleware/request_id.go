package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CtxRequestIDKey is the Gin context key carrying the per-request id echoed
// in every response envelope.
const CtxRequestIDKey = "request_id"

// RequestID tags each request with an id. An inbound X-Request-ID from a
// trusted proxy is reused so traces line up across hops; otherwise a fresh
// UUID is generated. The id is mirrored back in the response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(CtxRequestIDKey, id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}
