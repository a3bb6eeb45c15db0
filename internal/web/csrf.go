package web

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justinas/nosurf"
)

const csrfTokenKey = "csrf_token"

type ginContextKey struct{}

// CSRF rejects unsafe requests that do not echo the token bound to the
// csrf_token cookie, either as the csrf_token form field or the
// X-CSRF-Token header. Rejections render the 403 error page.
func CSRF(secure bool, sameSite http.SameSite) gin.HandlerFunc {
	protect := nosurf.New(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		c := ginContextFrom(r)
		c.Request = r
		c.Set(csrfTokenKey, nosurf.Token(r))
		c.Next()
	}))

	protect.SetBaseCookie(http.Cookie{
		Name:     nosurf.CookieName,
		Path:     "/",
		MaxAge:   nosurf.MaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	})

	protect.SetFailureHandler(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		c := ginContextFrom(r)
		c.Request = r
		c.Set(csrfTokenKey, nosurf.Token(r))
		log.Printf("[CSRF] Rejected %s %s: %v", r.Method, r.URL.Path, nosurf.Reason(r))
		RenderError(c, http.StatusForbidden)
	}))

	return func(c *gin.Context) {
		ctx := context.WithValue(c.Request.Context(), ginContextKey{}, c)
		protect.ServeHTTP(c.Writer, c.Request.WithContext(ctx))
	}
}

func ginContextFrom(r *http.Request) *gin.Context {
	return r.Context().Value(ginContextKey{}).(*gin.Context)
}

// CSRFToken returns the token forms on this page must send back, "" when the
// route is not protected.
func CSRFToken(c *gin.Context) string {
	return c.GetString(csrfTokenKey)
}
