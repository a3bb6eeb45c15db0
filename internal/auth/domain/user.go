package domain

import (
	"strconv"
	"time"
)

type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:60;not null"`
	Email     string    `json:"email" gorm:"size:120;uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"` // Never return password in JSON
	Token     string    `json:"-" gorm:"index"`    // Account confirmation / password reset token
	Confirmed bool      `json:"confirmed" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Identity is the password-stripped view of a User attached to a request.
// ID is already in canonical string form.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) Identity() Identity {
	return Identity{
		ID:    strconv.FormatUint(uint64(u.ID), 10),
		Name:  u.Name,
		Email: u.Email,
	}
}

// UserID returns the numeric id behind the identity, or false when the
// identity does not carry one.
func (i Identity) UserID() (uint, bool) {
	id, err := strconv.ParseUint(i.ID, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
