package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestIsOwner(t *testing.T) {
	five := uint(5)
	ref := uuid.New()

	tests := []struct {
		name     string
		identity Identity
		ownerID  any
		want     bool
	}{
		{"numeric identity vs string owner", Identity{ID: "5"}, "5", true},
		{"different owner", Identity{ID: "5"}, "6", false},
		{"uint owner", Identity{ID: "5"}, uint(5), true},
		{"int64 owner", Identity{ID: "5"}, int64(5), true},
		{"pointer owner", Identity{ID: "5"}, &five, true},
		{"nil pointer owner", Identity{ID: "5"}, (*uint)(nil), false},
		{"padded string owner", Identity{ID: "5"}, " 05 ", true},
		{"uuid owner", Identity{ID: ref.String()}, ref, true},
		{"empty identity", Identity{}, "", false},
		{"nil owner", Identity{ID: "5"}, nil, false},
		{"unsupported owner type", Identity{ID: "5"}, 5.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOwner(tt.identity, tt.ownerID))
		})
	}
}

func TestUserIdentity_StripsPassword(t *testing.T) {
	u := &User{ID: 42, Name: "Ana", Email: "ana@example.com", Password: "hash", Token: "tok"}

	id := u.Identity()
	assert.Equal(t, Identity{ID: "42", Name: "Ana", Email: "ana@example.com"}, id)

	n, ok := id.UserID()
	assert.True(t, ok)
	assert.Equal(t, uint(42), n)

	_, ok = Identity{ID: "abc"}.UserID()
	assert.False(t, ok)
}
