package delivery

import (
	"context"
	"errors"
	"log"
	"net/http"

	authdomain "propertyhub/internal/auth/domain"
	"propertyhub/internal/auth/usecase"
	"propertyhub/internal/web"

	"github.com/gin-gonic/gin"
)

const (
	identityKey = "identity"

	// LoginPath is where rejected requests are sent.
	LoginPath = "/auth/login"
)

var errNoSessionCookie = errors.New("no session cookie")

// resolveIdentity reads the session cookie and loads the identity behind it.
func resolveIdentity(c *gin.Context, resolver usecase.SessionResolver, cookie SessionCookie) (authdomain.Identity, error) {
	sessionToken := cookie.Read(c)
	if sessionToken == "" {
		return authdomain.Identity{}, errNoSessionCookie
	}
	return resolver.ResolveSession(c.Request.Context(), sessionToken)
}

// RequireSession only lets requests with a valid session of an existing user
// reach the next handler. Every rejection redirects to the login page.
func RequireSession(resolver usecase.SessionResolver, cookie SessionCookie) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := resolveIdentity(c, resolver, cookie)
		switch {
		case err == nil:
			c.Set(identityKey, identity)
			c.Next()
		case errors.Is(err, errNoSessionCookie), errors.Is(err, usecase.ErrIdentityNotFound):
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
		case errors.Is(err, usecase.ErrInvalidSession):
			cookie.Clear(c)
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
		case errors.Is(err, context.Canceled), c.Request.Context().Err() != nil:
			// Client went away; there is nobody to answer.
			c.Abort()
		default:
			log.Printf("[AuthGate] Failed to load session user for %s: %v", c.Request.URL.Path, err)
			web.RenderError(c, http.StatusInternalServerError)
		}
	}
}

// OptionalSession attaches the identity when the request carries a valid
// session and otherwise lets the request through anonymously.
func OptionalSession(resolver usecase.SessionResolver, cookie SessionCookie) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := resolveIdentity(c, resolver, cookie)
		if err == nil {
			c.Set(identityKey, identity)
		} else if !isRejection(err) && c.Request.Context().Err() == nil {
			log.Printf("[AuthGate] Continuing anonymously on %s: %v", c.Request.URL.Path, err)
		}
		c.Next()
	}
}

// IdentityFrom returns the identity attached by RequireSession or OptionalSession.
func IdentityFrom(c *gin.Context) (authdomain.Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return authdomain.Identity{}, false
	}
	identity, ok := value.(authdomain.Identity)
	return identity, ok
}

// IdentityView returns the identity for templates, nil when anonymous.
func IdentityView(c *gin.Context) *authdomain.Identity {
	identity, ok := IdentityFrom(c)
	if !ok {
		return nil
	}
	return &identity
}

func isRejection(err error) bool {
	return errors.Is(err, errNoSessionCookie) ||
		errors.Is(err, usecase.ErrInvalidSession) ||
		errors.Is(err, usecase.ErrIdentityNotFound)
}
