package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aura-analytics/aura-backend/config"
	"github.com/aura-analytics/aura-backend/internal/api"
	"github.com/aura-analytics/aura-backend/internal/types"
)

var _ TokenService = (*JWTTokenService)(nil)

// TokenService issues and verifies signed, expiring bearer tokens carrying
// a minimal identity claim. Verification is pure and stateless; there is no
// server-side revocation, logout is purely client-side.
type TokenService interface {
	Issue(userID, email string) (string, error)
	Verify(tokenString string) (*types.Claims, error)
}

// JWTTokenService signs HS256 tokens with a process-wide secret.
type JWTTokenService struct {
	secretKey []byte
	issuer    string
	ttl       time.Duration
}

func NewTokenService(cfg config.JWTConfig) *JWTTokenService {
	if cfg.SecretKey == "" {
		panic("JWT Secret Key cannot be empty")
	}
	ttl := cfg.TokenTTL
	if ttl == 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &JWTTokenService{
		secretKey: []byte(cfg.SecretKey),
		issuer:    cfg.Issuer,
		ttl:       ttl,
	}
}

// Issue creates a signed token for the given identity, expiring after the
// configured TTL.
func (s *JWTTokenService) Issue(userID, email string) (string, error) {
	now := time.Now()
	claims := &types.Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string, returning its claims. Malformed
// structure, bad signature and passed expiry all fail with ErrUnauthenticated.
func (s *JWTTokenService) Verify(tokenString string) (*types.Claims, error) {
	claims := &types.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})

	if err != nil {
		msg := "Invalid or expired token"
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			msg = "Token has expired"
		case errors.Is(err, jwt.ErrTokenMalformed):
			msg = "Malformed token"
		case errors.Is(err, jwt.ErrSignatureInvalid):
			msg = "Invalid token signature"
		}
		return nil, fmt.Errorf("%w: %s", api.ErrUnauthenticated, msg)
	}

	if !token.Valid {
		return nil, fmt.Errorf("%w: Invalid token", api.ErrUnauthenticated)
	}
	if s.issuer != "" && claims.Issuer != s.issuer {
		return nil, fmt.Errorf("%w: Invalid token issuer", api.ErrUnauthenticated)
	}
	if claims.UserID == "" || claims.Email == "" {
		return nil, fmt.Errorf("%w: Invalid token payload", api.ErrUnauthenticated)
	}

	return claims, nil
}
