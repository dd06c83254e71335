package user

import (
	"errors"
	"time"
)

type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"` // never expose hash in JSON
	Name           string    `json:"name"`
	Role           string    `json:"role"`
	Bio            string    `json:"bio,omitempty"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

var ErrNotFound = errors.New("user not found")

// roleRank orders the role hierarchy; unknown roles rank below everything.
func roleRank(role string) int {
	switch role {
	case RoleUser:
		return 1
	case RoleAdmin:
		return 2
	case RoleSuperadmin:
		return 3
	default:
		return 0
	}
}

func IsValidRole(role string) bool {
	return roleRank(role) > 0
}

// RoleAtLeast reports whether role satisfies the minimum required role:
// superadmin covers admin routes, admin covers user routes.
func RoleAtLeast(role, min string) bool {
	r := roleRank(role)

	return r > 0 && r >= roleRank(min)
}

// UpdateProfileRequest is a partial update; nil fields are left unchanged.
type UpdateProfileRequest struct {
	Name           *string `json:"name" binding:"omitempty,min=1,max=100"`
	Bio            *string `json:"bio" binding:"omitempty,max=500"`
	ProfilePicture *string `json:"profilePicture" binding:"omitempty,max=2048"`
}
