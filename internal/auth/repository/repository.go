package repository

import (
	"context"
	"time"

	authdomain "propertyhub/internal/auth/domain"
)

// UserRepository defines the interface for user data access.
// Finders return (nil, nil) when no row matches.
type UserRepository interface {
	Create(ctx context.Context, user *authdomain.User) error

	FindByEmail(ctx context.Context, email string) (*authdomain.User, error)

	FindByID(ctx context.Context, id uint) (*authdomain.User, error)

	// FindIdentityByID loads the password-stripped view used for request identity.
	FindIdentityByID(ctx context.Context, id uint) (*authdomain.Identity, error)

	// FindByCredentialToken finds the user holding an account confirmation or
	// password reset token.
	FindByCredentialToken(ctx context.Context, token string) (*authdomain.User, error)

	Update(ctx context.Context, user *authdomain.User) error

	Delete(ctx context.Context, id uint) error

	// DeleteUnconfirmedBefore removes accounts never confirmed and created
	// before cutoff, returning how many were removed.
	DeleteUnconfirmedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
