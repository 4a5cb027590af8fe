package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Cookie names carrying the session tokens.
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// CookieTransport moves session tokens between the server and the browser
// using HttpOnly, SameSite=Lax cookies scoped to the whole site.
type CookieTransport struct {
	domain string
	secure bool
}

// NewCookieTransport creates a CookieTransport. secure should only be false
// for local development over plain HTTP.
func NewCookieTransport(domain string, secure bool) *CookieTransport {
	return &CookieTransport{domain: domain, secure: secure}
}

// SetAccess writes the access token cookie.
func (t *CookieTransport) SetAccess(c *gin.Context, token string, ttl time.Duration) {
	t.set(c, AccessTokenCookie, token, maxAge(ttl))
}

// SetRefresh writes the refresh token cookie.
func (t *CookieTransport) SetRefresh(c *gin.Context, token string, ttl time.Duration) {
	t.set(c, RefreshTokenCookie, token, maxAge(ttl))
}

// GetAccess returns the access token cookie value, if any.
func (t *CookieTransport) GetAccess(c *gin.Context) (string, bool) {
	return get(c, AccessTokenCookie)
}

// GetRefresh returns the refresh token cookie value, if any.
func (t *CookieTransport) GetRefresh(c *gin.Context) (string, bool) {
	return get(c, RefreshTokenCookie)
}

// ClearAccess expires the access token cookie. Safe to call when it is absent.
func (t *CookieTransport) ClearAccess(c *gin.Context) {
	t.set(c, AccessTokenCookie, "", -1)
}

// ClearAll expires both session cookies.
func (t *CookieTransport) ClearAll(c *gin.Context) {
	t.ClearAccess(c)
	t.set(c, RefreshTokenCookie, "", -1)
}

func (t *CookieTransport) set(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", t.domain, t.secure, true)
}

func get(c *gin.Context, name string) (string, bool) {
	value, err := c.Cookie(name)
	if err != nil || value == "" {
		return "", false
	}
	return value, true
}

// maxAge converts a TTL to whole seconds, never rounding a positive TTL down to a
// session cookie or a deletion.
func maxAge(ttl time.Duration) int {
	seconds := int(ttl / time.Second)
	if seconds < 1 {
		return 1
	}
	return seconds
}
