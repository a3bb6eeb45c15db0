package api

import (
	"html/template"
	"log"
	"net/http"

	authDelivery "propertyhub/internal/auth/delivery"
	authUsecase "propertyhub/internal/auth/usecase"
	propertyDelivery "propertyhub/internal/property/delivery"
	propertyUsecase "propertyhub/internal/property/usecase"
	"propertyhub/internal/web"
	"propertyhub/pkg/config"
	"propertyhub/pkg/ratelimit"
	"propertyhub/pkg/storage"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase     authUsecase.AuthUsecase
	propertyUsecase propertyUsecase.PropertyUsecase
	images          storage.ImageStore
	loginLimiter    ratelimit.Limiter
	config          *config.Config
}

func NewHandler(authUc authUsecase.AuthUsecase, propertyUc propertyUsecase.PropertyUsecase, images storage.ImageStore, loginLimiter ratelimit.Limiter, cfg *config.Config) *Handler {
	return &Handler{
		authUsecase:     authUc,
		propertyUsecase: propertyUc,
		images:          images,
		loginLimiter:    loginLimiter,
		config:          cfg,
	}
}

// Engine builds the gin engine with templates, static files and routes.
func (h *Handler) Engine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Only listed proxies may set X-Forwarded-For; otherwise the peer address
	// is the client IP the login limiter keys on.
	if err := r.SetTrustedProxies(h.config.TrustedProxies); err != nil {
		log.Printf("[Server] Invalid TRUSTED_PROXIES %v, trusting no proxy: %v", h.config.TrustedProxies, err)
		_ = r.SetTrustedProxies(nil)
	}
	r.MaxMultipartMemory = storage.MaxImageSize + 1<<20

	r.SetHTMLTemplate(web.Templates(template.FuncMap{
		"imageURL": h.images.URL,
	}))

	if local, ok := h.images.(*storage.LocalStore); ok {
		r.Static("/public/uploads", local.Dir())
	}

	cookie := authDelivery.SessionCookie{
		Name:     authDelivery.SessionCookieName,
		Secure:   h.config.CookieSecure,
		SameSite: h.config.CookieSameSite,
	}

	SetupRoutes(r, Routes{
		Auth:         authDelivery.NewAuthHandler(h.authUsecase, cookie),
		Properties:   propertyDelivery.NewPropertyHandler(h.propertyUsecase),
		Public:       propertyDelivery.NewPublicHandler(h.propertyUsecase),
		Sessions:     h.authUsecase,
		Cookie:       cookie,
		CSRF:         web.CSRF(h.config.CookieSecure, h.config.CookieSameSite),
		LoginLimiter: h.loginLimiter,
		LoginLimit:   h.config.LoginRateLimit,
		LoginWindow:  h.config.LoginRateWindow,
	})

	return r
}

// corsMiddleware opens the JSON API to other origins.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
