package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie carrying the session token for browser
// clients; API clients use the Authorization header instead.
const SessionCookieName = "jwt"

// logoutSentinel replaces the token on logout. Stateless invalidation: the
// cookie is overwritten with a value that can never verify and expires almost
// immediately.
const logoutSentinel = "loggedout"

// CookieManager writes the http-only session cookie. Its lifetime is
// configured in days, independently of the signed token's own expiry claim.
type CookieManager struct {
	Domain string
	Secure bool
	Days   int
}

func NewCookieManager(domain string, secure bool, days int) *CookieManager {
	return &CookieManager{Domain: domain, Secure: secure, Days: days}
}

// SetSession stores the session token in the jwt cookie.
func (m *CookieManager) SetSession(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	maxAge := int((time.Duration(m.Days) * 24 * time.Hour).Seconds())
	c.SetCookie(SessionCookieName, token, maxAge, "/", m.Domain, m.Secure, true)
}

// ClearSession overwrites the jwt cookie with the logout sentinel.
func (m *CookieManager) ClearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, logoutSentinel, 10, "/", m.Domain, m.Secure, true)
}
