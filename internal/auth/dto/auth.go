package dto

type LoginRequest struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
}

type RegisterRequest struct {
	Name           string `form:"name" binding:"required"`
	Email          string `form:"email" binding:"required,email"`
	Password       string `form:"password" binding:"required,min=6"`
	RepeatPassword string `form:"repeat_password" binding:"required,eqfield=Password"`
}

type ForgotPasswordRequest struct {
	Email string `form:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Password string `form:"password" binding:"required,min=6"`
}
