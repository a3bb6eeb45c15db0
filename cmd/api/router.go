package api

import (
	"net/http"
	"time"

	authDelivery "propertyhub/internal/auth/delivery"
	authUsecase "propertyhub/internal/auth/usecase"
	propertyDelivery "propertyhub/internal/property/delivery"
	"propertyhub/pkg/ratelimit"

	"github.com/gin-gonic/gin"
)

// Routes collects what SetupRoutes wires together.
type Routes struct {
	Auth         *authDelivery.AuthHandler
	Properties   *propertyDelivery.PropertyHandler
	Public       *propertyDelivery.PublicHandler
	Sessions     authUsecase.SessionResolver
	Cookie       authDelivery.SessionCookie
	CSRF         gin.HandlerFunc
	LoginLimiter ratelimit.Limiter
	LoginLimit   int
	LoginWindow  time.Duration
}

func SetupRoutes(r *gin.Engine, rt Routes) {
	requireSession := authDelivery.RequireSession(rt.Sessions, rt.Cookie)
	optionalSession := authDelivery.OptionalSession(rt.Sessions, rt.Cookie)

	api := r.Group("/api")
	api.Use(corsMiddleware())
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		api.GET("/properties", rt.Public.MapProperties)
	}

	// Auth routes
	auth := r.Group("/auth")
	auth.Use(rt.CSRF)
	{
		auth.GET("/login", rt.Auth.LoginForm)
		auth.POST("/login", ratelimit.Middleware(rt.LoginLimiter, "login", rt.LoginLimit, rt.LoginWindow, rt.Auth.LoginThrottled), rt.Auth.Login)
		auth.GET("/register", rt.Auth.RegisterForm)
		auth.POST("/register", rt.Auth.Register)
		auth.GET("/confirm/:token", rt.Auth.Confirm)
		auth.GET("/forgot-password", rt.Auth.ForgotPasswordForm)
		auth.POST("/forgot-password", rt.Auth.ForgotPassword)
		auth.GET("/forgot-password/:token", rt.Auth.ResetPasswordForm)
		auth.POST("/forgot-password/:token", rt.Auth.ResetPassword)
		auth.POST("/logout", rt.Auth.Logout)
	}

	// Seller routes (session required)
	seller := r.Group("/")
	seller.Use(rt.CSRF, requireSession)
	{
		seller.GET("/my-properties", rt.Properties.MyProperties)
		seller.GET("/properties/create", rt.Properties.CreateForm)
		seller.POST("/properties/create", rt.Properties.Create)
		seller.GET("/properties/add-image/:id", rt.Properties.AddImageForm)
		seller.POST("/properties/add-image/:id", rt.Properties.AddImage)
		seller.GET("/properties/edit/:id", rt.Properties.EditForm)
		seller.POST("/properties/edit/:id", rt.Properties.Edit)
		seller.POST("/properties/delete/:id", rt.Properties.Delete)
		seller.PUT("/properties/:id", rt.Properties.TogglePublished)
		seller.GET("/messages/:id", rt.Properties.Messages)
	}

	// Public routes (visitor identified when possible)
	public := r.Group("/")
	public.Use(rt.CSRF, optionalSession)
	{
		public.GET("/", rt.Public.Home)
		public.GET("/categories/:id", rt.Public.Category)
		public.GET("/search", rt.Public.Search)
		public.GET("/404", rt.Public.NotFound)
		public.GET("/property/:id", rt.Public.Show)
		public.POST("/property/:id", rt.Public.SendMessage)
	}

	r.NoRoute(func(c *gin.Context) {
		c.Redirect(http.StatusFound, propertyDelivery.NotFoundPath)
	})
}
