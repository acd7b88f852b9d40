package dto

import (
	"time"

	"github.com/spec-kit/repair-tracker/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateRoleRequest payload.
type UpdateRoleRequest struct {
	Role domain.Role `json:"role"`
}

// UserResponse is the public view of a team member.
type UserResponse struct {
	UID       string      `json:"uid"`
	Email     string      `json:"email"`
	Username  *string     `json:"username"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

// AuthResponse carries a fresh token and the owning profile.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}
