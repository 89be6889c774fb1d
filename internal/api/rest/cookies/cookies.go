// Package cookies reads and writes the session cookie pair. The access
// token travels in od_session, the refresh token in od_renew; both are
// HttpOnly and never readable from page scripts.
package cookies

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	// SessionCookie carries the JWT access token.
	SessionCookie = "od_session"
	// RenewCookie carries the opaque refresh token.
	RenewCookie = "od_renew"

	renewPath = "/api/auth"
)

// Manager writes and clears the cookie pair. In production the cookies
// are Secure and SameSite=Strict; in development Secure is off so plain
// HTTP works.
type Manager struct {
	production bool
}

func NewManager(production bool) *Manager {
	return &Manager{production: production}
}

// SetPair writes both cookies. The refresh cookie is scoped to the auth
// endpoints so the browser does not attach it to every request.
func (m *Manager) SetPair(c *gin.Context, access, refresh string, accessTTL, refreshTTL time.Duration) {
	sameSite := http.SameSiteLaxMode
	if m.production {
		sameSite = http.SameSiteStrictMode
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookie,
		Value:    access,
		Path:     "/",
		MaxAge:   int(accessTTL.Seconds()),
		HttpOnly: true,
		Secure:   m.production,
		SameSite: sameSite,
	})
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     RenewCookie,
		Value:    refresh,
		Path:     renewPath,
		MaxAge:   int(refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   m.production,
		SameSite: sameSite,
	})
}

// Clear expires both cookies. Safe to call whether or not they were set.
func (m *Manager) Clear(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.production,
	})
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     RenewCookie,
		Value:    "",
		Path:     renewPath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.production,
	})
}

// ReadAccess returns the access token from the session cookie, falling
// back to a Bearer Authorization header for non-browser clients.
func ReadAccess(c *gin.Context) string {
	if v, err := c.Cookie(SessionCookie); err == nil && v != "" {
		return v
	}

	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// ReadRefresh returns the refresh token from the renew cookie, falling
// back to a refreshToken field in the JSON body for non-browser clients.
func ReadRefresh(c *gin.Context) string {
	if v, err := c.Cookie(RenewCookie); err == nil && v != "" {
		return v
	}

	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.ShouldBindJSON(&body); err == nil {
		return body.RefreshToken
	}
	return ""
}
