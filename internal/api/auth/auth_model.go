package auth

import (
	"github.com/aura-analytics/aura-backend/internal/types"
)

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name,omitempty"`
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the payload returned by register and login: the user
// (password excluded via json tags) plus a bearer token.
type AuthResponse struct {
	User  *types.User `json:"user"`
	Token string      `json:"token"`
}
