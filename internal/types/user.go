package types

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is the persistent account entity. PasswordHash is never serialized.
type User struct {
	ID           string    `json:"id" example:"d290f1ee-6c54-4b01-90e6-d701748f0851"`
	Email        string    `json:"email" example:"jane.doe@example.com"`
	PasswordHash string    `json:"-"`
	Name         *string   `json:"name"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Claims is the JWT payload carried by access tokens.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
