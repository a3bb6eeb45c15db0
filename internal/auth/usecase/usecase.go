package usecase

import (
	"context"
	"errors"

	authdomain "propertyhub/internal/auth/domain"
	authdto "propertyhub/internal/auth/dto"
)

var (
	ErrEmailTaken             = errors.New("email already registered")
	ErrUserNotFound           = errors.New("user not found")
	ErrNotConfirmed           = errors.New("account not confirmed")
	ErrWrongPassword          = errors.New("wrong password")
	ErrInvalidCredentialToken = errors.New("invalid or used credential token")

	// ErrInvalidSession means the presented session token failed verification.
	ErrInvalidSession = errors.New("invalid session token")
	// ErrIdentityNotFound means the session token is valid but its user no longer exists.
	ErrIdentityNotFound = errors.New("session user not found")
)

// AuthUsecase defines the interface for account and session business logic
type AuthUsecase interface {
	Register(ctx context.Context, req *authdto.RegisterRequest) (*authdomain.User, error)

	// Confirm activates the account holding the confirmation token.
	Confirm(ctx context.Context, credentialToken string) error

	// Login checks credentials and returns a signed session token.
	Login(ctx context.Context, req *authdto.LoginRequest) (string, error)

	RequestPasswordReset(ctx context.Context, req *authdto.ForgotPasswordRequest) error

	CheckResetToken(ctx context.Context, credentialToken string) error

	// ResetPassword stores the new password and returns a signed session token.
	ResetPassword(ctx context.Context, credentialToken string, req *authdto.ResetPasswordRequest) (string, error)

	SessionResolver
}

// SessionResolver turns a session token into the identity of a live user.
// It returns ErrInvalidSession or ErrIdentityNotFound for rejected sessions;
// any other error is a store fault.
type SessionResolver interface {
	ResolveSession(ctx context.Context, sessionToken string) (authdomain.Identity, error)
}

// AccountNotifier delivers account emails. Implementations must not block
// the request on delivery.
type AccountNotifier interface {
	AccountCreated(user *authdomain.User)
	PasswordResetRequested(user *authdomain.User)
}
