package usecase

import (
	"context"
	"strconv"
	"strings"

	authdomain "propertyhub/internal/auth/domain"
	authdto "propertyhub/internal/auth/dto"
	"propertyhub/internal/auth/repository"
	"propertyhub/internal/auth/token"

	"github.com/google/uuid"
)

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	userRepo repository.UserRepository
	tokens   *token.Service
	notifier AccountNotifier
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(userRepo repository.UserRepository, tokens *token.Service, notifier AccountNotifier) AuthUsecase {
	return &authUsecase{
		userRepo: userRepo,
		tokens:   tokens,
		notifier: notifier,
	}
}

func (u *authUsecase) Register(ctx context.Context, req *authdto.RegisterRequest) (*authdomain.User, error) {
	email := normalizeEmail(req.Email)

	existing, err := u.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := repository.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &authdomain.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Password: hashedPassword,
		Token:    newCredentialToken(),
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	u.notifier.AccountCreated(user)
	return user, nil
}

func (u *authUsecase) Confirm(ctx context.Context, credentialToken string) error {
	user, err := u.userRepo.FindByCredentialToken(ctx, credentialToken)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidCredentialToken
	}

	user.Token = ""
	user.Confirmed = true
	return u.userRepo.Update(ctx, user)
}

func (u *authUsecase) Login(ctx context.Context, req *authdto.LoginRequest) (string, error) {
	user, err := u.userRepo.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}
	if !user.Confirmed {
		return "", ErrNotConfirmed
	}
	if !repository.CheckPasswordHash(req.Password, user.Password) {
		return "", ErrWrongPassword
	}

	return u.issueFor(user)
}

func (u *authUsecase) RequestPasswordReset(ctx context.Context, req *authdto.ForgotPasswordRequest) error {
	user, err := u.userRepo.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	user.Token = newCredentialToken()
	if err := u.userRepo.Update(ctx, user); err != nil {
		return err
	}

	u.notifier.PasswordResetRequested(user)
	return nil
}

func (u *authUsecase) CheckResetToken(ctx context.Context, credentialToken string) error {
	user, err := u.userRepo.FindByCredentialToken(ctx, credentialToken)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidCredentialToken
	}
	return nil
}

func (u *authUsecase) ResetPassword(ctx context.Context, credentialToken string, req *authdto.ResetPasswordRequest) (string, error) {
	user, err := u.userRepo.FindByCredentialToken(ctx, credentialToken)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrInvalidCredentialToken
	}

	hashedPassword, err := repository.HashPassword(req.Password)
	if err != nil {
		return "", err
	}
	user.Password = hashedPassword
	user.Token = ""
	// Following a reset link proves control of the mailbox.
	user.Confirmed = true
	if err := u.userRepo.Update(ctx, user); err != nil {
		return "", err
	}

	return u.issueFor(user)
}

func (u *authUsecase) ResolveSession(ctx context.Context, sessionToken string) (authdomain.Identity, error) {
	subject, err := u.tokens.Verify(sessionToken)
	if err != nil {
		return authdomain.Identity{}, ErrInvalidSession
	}

	userID, err := strconv.ParseUint(subject, 10, 64)
	if err != nil || userID == 0 {
		return authdomain.Identity{}, ErrInvalidSession
	}

	identity, err := u.userRepo.FindIdentityByID(ctx, uint(userID))
	if err != nil {
		return authdomain.Identity{}, err
	}
	if identity == nil {
		return authdomain.Identity{}, ErrIdentityNotFound
	}

	return *identity, nil
}

func (u *authUsecase) issueFor(user *authdomain.User) (string, error) {
	return u.tokens.Issue(user.Identity().ID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func newCredentialToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
