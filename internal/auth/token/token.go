// Package token issues and verifies the signed session tokens carried in the
// session cookie. Tokens are stateless HS256 JWTs: nothing is stored server
// side, so a token stays valid until it expires.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Lifetime is how long an issued session token stays valid.
const Lifetime = 24 * time.Hour

var (
	// ErrMissingSecret is returned when the service is built without a signing secret.
	ErrMissingSecret = errors.New("token: signing secret is empty")
	// ErrEmptySubject is returned when Issue is called without a subject.
	ErrEmptySubject = errors.New("token: subject is empty")
	// ErrInvalidToken covers every verification failure: malformed input,
	// bad signature, unexpected algorithm, expiry and missing subject.
	ErrInvalidToken = errors.New("token: invalid token")
)

type Service struct {
	secret []byte
	now    func() time.Time
}

// NewService copies secret; the service never mutates it afterwards.
func NewService(secret string) (*Service, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &Service{
		secret: []byte(secret),
		now:    time.Now,
	}, nil
}

// WithClock returns a copy of the service reading the time from now.
func (s *Service) WithClock(now func() time.Time) *Service {
	return &Service{secret: s.secret, now: now}
}

// Issue returns a token for subject that expires Lifetime from now.
func (s *Service) Issue(subject string) (string, error) {
	if subject == "" {
		return "", ErrEmptySubject
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(Lifetime)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify returns the subject embedded in tokenString.
func (s *Service) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
