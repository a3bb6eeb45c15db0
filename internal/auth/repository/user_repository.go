package repository

import (
	"context"
	"errors"
	"time"

	authdomain "propertyhub/internal/auth/domain"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of userRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		db: db,
	}
}

// Migrate creates or updates the tables owned by this package.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&authdomain.User{})
}

func (r *userRepository) Create(ctx context.Context, user *authdomain.User) error {
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*authdomain.User, error) {
	return r.first(ctx, r.db.Where("email = ?", email))
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*authdomain.User, error) {
	return r.first(ctx, r.db.Where("id = ?", id))
}

func (r *userRepository) FindIdentityByID(ctx context.Context, id uint) (*authdomain.Identity, error) {
	user, err := r.first(ctx, r.db.Select("id", "name", "email").Where("id = ?", id))
	if err != nil || user == nil {
		return nil, err
	}
	identity := user.Identity()
	return &identity, nil
}

func (r *userRepository) FindByCredentialToken(ctx context.Context, token string) (*authdomain.User, error) {
	if token == "" {
		return nil, nil
	}
	return r.first(ctx, r.db.Where("token = ?", token))
}

func (r *userRepository) Update(ctx context.Context, user *authdomain.User) error {
	user.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&authdomain.User{}, id).Error
}

func (r *userRepository) DeleteUnconfirmedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("confirmed = ? AND created_at < ?", false, cutoff).
		Delete(&authdomain.User{})
	return result.RowsAffected, result.Error
}

func (r *userRepository) first(ctx context.Context, query *gorm.DB) (*authdomain.User, error) {
	var user authdomain.User
	err := query.WithContext(ctx).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with a hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
