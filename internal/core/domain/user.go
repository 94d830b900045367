package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID               uuid.UUID `json:"id"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	RefreshTokenHash *string   `json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// PublicUser is the redacted view of a User returned to clients.
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID.String(), Email: u.Email}
}

// HasActiveSession reports whether a refresh token is currently bound to the user.
func (u *User) HasActiveSession() bool {
	return u.RefreshTokenHash != nil && *u.RefreshTokenHash != ""
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
