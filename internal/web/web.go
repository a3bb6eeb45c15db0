// Package web holds the server-rendered HTML layer: embedded templates,
// template helpers, form validation messages and the generic error page.
package web

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates. funcs override the default
// helpers, e.g. "imageURL" to point at the configured image store.
func Templates(funcs template.FuncMap) *template.Template {
	base := template.FuncMap{
		"imageURL": func(name string) string {
			return "/public/uploads/" + name
		},
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	}
	for name, fn := range funcs {
		base[name] = fn
	}

	return template.Must(template.New("").Funcs(base).ParseFS(templateFS, "templates/*.html"))
}

// HTML renders a page template, adding the CSRF token every form needs.
func HTML(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["CSRFToken"] = CSRFToken(c)
	c.HTML(status, name, data)
}

// RenderError renders the generic error page and aborts the chain.
func RenderError(c *gin.Context, status int) {
	HTML(c, status, "error.html", gin.H{
		"Page":   http.StatusText(status),
		"Status": status,
	})
	c.Abort()
}
