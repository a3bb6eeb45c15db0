package delivery

import (
	"net/http"

	"propertyhub/internal/auth/token"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "_token"

// SessionCookie describes how the session token travels between browser and server.
type SessionCookie struct {
	Name     string
	Secure   bool
	SameSite http.SameSite
}

func DefaultSessionCookie() SessionCookie {
	return SessionCookie{Name: SessionCookieName, SameSite: http.SameSiteLaxMode}
}

// Read returns the session token sent with the request, or "" when absent.
func (s SessionCookie) Read(c *gin.Context) string {
	value, err := c.Cookie(s.Name)
	if err != nil {
		return ""
	}
	return value
}

// Set stores the session token in an HttpOnly cookie living as long as the token.
func (s SessionCookie) Set(c *gin.Context, sessionToken string) {
	c.SetSameSite(s.SameSite)
	c.SetCookie(s.Name, sessionToken, int(token.Lifetime.Seconds()), "/", "", s.Secure, true)
}

func (s SessionCookie) Clear(c *gin.Context) {
	c.SetSameSite(s.SameSite)
	c.SetCookie(s.Name, "", -1, "/", "", s.Secure, true)
}
