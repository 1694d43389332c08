package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pulse-api/internal/application"
	"pulse-api/internal/domain/apperror"
	"pulse-api/internal/domain/entity"
	"pulse-api/pkg/helpers"
	"pulse-api/pkg/response"
)

// Gin context keys populated by Protect / IsLoggedIn.
const (
	CtxUserIDKey = "userID"
	CtxUserKey   = "currentUser"
)

// extractToken pulls the session token from the Authorization header
// (preferred) or the jwt cookie.
func extractToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if tok, err := c.Cookie(helpers.SessionCookieName); err == nil {
		return tok
	}
	return ""
}

// Protect rejects requests without a valid session. On success the resolved
// user is attached to the Gin context for downstream handlers.
func Protect(auth *application.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.AbortError(c, http.StatusUnauthorized, "you are not logged in, please log in to get access", nil)
			return
		}
		u, err := auth.CurrentUser(c.Request.Context(), token)
		if err != nil {
			response.AbortError(c, apperror.HTTPStatus(err), apperror.Message(err), nil)
			return
		}
		c.Set(CtxUserIDKey, u.ID)
		c.Set(CtxUserKey, u)
		c.Next()
	}
}

// IsLoggedIn is the soft auth probe: it resolves the cookie-borne session if
// one exists and degrades to anonymous on any failure. It never rejects.
func IsLoggedIn(auth *application.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, err := c.Cookie(helpers.SessionCookieName)
		if err != nil || tok == "" {
			c.Next()
			return
		}
		u, err := auth.CurrentUser(c.Request.Context(), tok)
		if err != nil {
			c.Next()
			return
		}
		c.Set(CtxUserIDKey, u.ID)
		c.Set(CtxUserKey, u)
		c.Next()
	}
}

// RestrictTo gates an already-authenticated request on role membership. It
// must run after Protect.
func RestrictTo(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil || !u.HasRole(roles...) {
			response.AbortError(c, http.StatusForbidden, "you do not have permission to perform this action", nil)
			return
		}
		c.Next()
	}
}

// CurrentUser returns the identity attached by Protect/IsLoggedIn, or nil.
func CurrentUser(c *gin.Context) *entity.User {
	if v, ok := c.Get(CtxUserKey); ok {
		if u, ok := v.(*entity.User); ok {
			return u
		}
	}
	return nil
}
