package domain

import (
	"time"

	"github.com/klu-crt/portal/pkg/jwtx"
)

type User struct {
	ID           string
	ExternalID   string // university-assigned identifier (employee number)
	Username     string
	Name         string
	Email        string
	PasswordHash string // argon2 encoded
	Role         jwtx.Role
	FirstLogin   bool // provisioned password not yet replaced
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity projects the user into the profile embedded in access tokens.
func (u User) Identity() jwtx.Identity {
	return jwtx.Identity{
		UserID:     u.ExternalID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		FirstLogin: u.FirstLogin,
	}
}
