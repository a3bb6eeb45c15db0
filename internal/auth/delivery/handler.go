package delivery

import (
	"errors"
	"log"
	"net/http"

	authdto "propertyhub/internal/auth/dto"
	"propertyhub/internal/auth/usecase"
	"propertyhub/internal/web"

	"github.com/gin-gonic/gin"
)

// AfterLoginPath is where a freshly authenticated user lands.
const AfterLoginPath = "/my-properties"

type AuthHandler struct {
	authUsecase usecase.AuthUsecase
	cookie      SessionCookie
}

func NewAuthHandler(authUsecase usecase.AuthUsecase, cookie SessionCookie) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		cookie:      cookie,
	}
}

func (h *AuthHandler) LoginForm(c *gin.Context) {
	web.HTML(c, http.StatusOK, "login.html", gin.H{"Page": "Sign in"})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req authdto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderLogin(c, http.StatusBadRequest, req.Email, web.ValidationMessages(err)...)
		return
	}

	sessionToken, err := h.authUsecase.Login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			h.renderLogin(c, http.StatusUnauthorized, req.Email, "The user does not exist")
		case errors.Is(err, usecase.ErrNotConfirmed):
			h.renderLogin(c, http.StatusUnauthorized, req.Email, "Your account has not been confirmed")
		case errors.Is(err, usecase.ErrWrongPassword):
			h.renderLogin(c, http.StatusUnauthorized, req.Email, "The password is incorrect")
		default:
			log.Printf("[Auth] Login failed for %s: %v", req.Email, err)
			web.RenderError(c, http.StatusInternalServerError)
		}
		return
	}

	h.cookie.Set(c, sessionToken)
	c.Redirect(http.StatusFound, AfterLoginPath)
}

// LoginThrottled answers login attempts rejected by the rate limiter.
func (h *AuthHandler) LoginThrottled(c *gin.Context) {
	h.renderLogin(c, http.StatusTooManyRequests, c.PostForm("email"), "Too many sign in attempts, try again later")
	c.Abort()
}

func (h *AuthHandler) renderLogin(c *gin.Context, status int, email string, errs ...string) {
	web.HTML(c, status, "login.html", gin.H{
		"Page":   "Sign in",
		"Email":  email,
		"Errors": errs,
	})
}

func (h *AuthHandler) RegisterForm(c *gin.Context) {
	web.HTML(c, http.StatusOK, "register.html", gin.H{"Page": "Create account"})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req authdto.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderRegister(c, http.StatusBadRequest, &req, web.ValidationMessages(err)...)
		return
	}

	if _, err := h.authUsecase.Register(c.Request.Context(), &req); err != nil {
		if errors.Is(err, usecase.ErrEmailTaken) {
			h.renderRegister(c, http.StatusConflict, &req, "That email is already registered")
			return
		}
		log.Printf("[Auth] Register failed for %s: %v", req.Email, err)
		web.RenderError(c, http.StatusInternalServerError)
		return
	}

	web.HTML(c, http.StatusCreated, "message.html", gin.H{
		"Page":    "Account created",
		"Message": "We sent you a confirmation email, follow the link to activate your account",
	})
}

func (h *AuthHandler) renderRegister(c *gin.Context, status int, req *authdto.RegisterRequest, errs ...string) {
	web.HTML(c, status, "register.html", gin.H{
		"Page":   "Create account",
		"Name":   req.Name,
		"Email":  req.Email,
		"Errors": errs,
	})
}

func (h *AuthHandler) Confirm(c *gin.Context) {
	err := h.authUsecase.Confirm(c.Request.Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentialToken) {
			web.HTML(c, http.StatusNotFound, "confirm.html", gin.H{
				"Page":    "Confirm your account",
				"Message": "The confirmation link is not valid, try again",
				"Error":   true,
			})
			return
		}
		log.Printf("[Auth] Confirm failed: %v", err)
		web.RenderError(c, http.StatusInternalServerError)
		return
	}

	web.HTML(c, http.StatusOK, "confirm.html", gin.H{
		"Page":    "Account confirmed",
		"Message": "Your account is confirmed, you can sign in now",
	})
}

func (h *AuthHandler) ForgotPasswordForm(c *gin.Context) {
	web.HTML(c, http.StatusOK, "forgot_password.html", gin.H{"Page": "Recover your access"})
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req authdto.ForgotPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderForgot(c, http.StatusBadRequest, web.ValidationMessages(err)...)
		return
	}

	if err := h.authUsecase.RequestPasswordReset(c.Request.Context(), &req); err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			h.renderForgot(c, http.StatusNotFound, "There is no account with that email")
			return
		}
		log.Printf("[Auth] Password reset request failed for %s: %v", req.Email, err)
		web.RenderError(c, http.StatusInternalServerError)
		return
	}

	web.HTML(c, http.StatusOK, "message.html", gin.H{
		"Page":    "Reset your password",
		"Message": "We sent you an email with instructions",
	})
}

func (h *AuthHandler) renderForgot(c *gin.Context, status int, errs ...string) {
	web.HTML(c, status, "forgot_password.html", gin.H{
		"Page":   "Recover your access",
		"Errors": errs,
	})
}

func (h *AuthHandler) ResetPasswordForm(c *gin.Context) {
	if !h.checkResetToken(c) {
		return
	}
	web.HTML(c, http.StatusOK, "reset_password.html", gin.H{"Page": "Reset your password"})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	if !h.checkResetToken(c) {
		return
	}

	var req authdto.ResetPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		web.HTML(c, http.StatusBadRequest, "reset_password.html", gin.H{
			"Page":   "Reset your password",
			"Errors": web.ValidationMessages(err),
		})
		return
	}

	sessionToken, err := h.authUsecase.ResetPassword(c.Request.Context(), c.Param("token"), &req)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentialToken) {
			h.renderInvalidResetLink(c)
			return
		}
		log.Printf("[Auth] Password reset failed: %v", err)
		web.RenderError(c, http.StatusInternalServerError)
		return
	}

	h.cookie.Set(c, sessionToken)
	c.Redirect(http.StatusFound, AfterLoginPath)
}

func (h *AuthHandler) checkResetToken(c *gin.Context) bool {
	err := h.authUsecase.CheckResetToken(c.Request.Context(), c.Param("token"))
	if err == nil {
		return true
	}
	if errors.Is(err, usecase.ErrInvalidCredentialToken) {
		h.renderInvalidResetLink(c)
		return false
	}
	log.Printf("[Auth] Reset token check failed: %v", err)
	web.RenderError(c, http.StatusInternalServerError)
	return false
}

func (h *AuthHandler) renderInvalidResetLink(c *gin.Context) {
	web.HTML(c, http.StatusNotFound, "confirm.html", gin.H{
		"Page":    "Reset your password",
		"Message": "The reset link is not valid, try again",
		"Error":   true,
	})
}

// Logout drops the session cookie. The token itself stays valid until it expires.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.cookie.Clear(c)
	c.Redirect(http.StatusFound, LoginPath)
}
