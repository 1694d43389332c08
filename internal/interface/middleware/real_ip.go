package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// CtxRealIPKey is the Gin context key holding the resolved client address
// used by the per-IP rate limiters.
const CtxRealIPKey = "real_ip"

// RealIP resolves the originating client address. The left-most entry of
// X-Forwarded-For wins when it parses as an IP; otherwise Gin's own
// ClientIP (which honors the engine's trusted-proxy settings) is used.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(CtxRealIPKey, resolveClientIP(c))
		c.Next()
	}
}

func resolveClientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	return c.ClientIP()
}
