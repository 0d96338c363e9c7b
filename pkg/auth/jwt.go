package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shashiranjanraj/supplydesk/config"
)

// TokenTTL is how long an identity token stays valid.
const TokenTTL = 12 * time.Hour

// Claims holds the typed JWT payload. Subject is the employee id for users
// and the username for admins.
type Claims struct {
	Email      string `json:"email"`
	Department string `json:"department,omitempty"`
	Role       Role   `json:"role"`
	jwt.RegisteredClaims
}

func secret() []byte {
	return []byte(config.JWTSecret())
}

// GenerateToken signs id into an HS256 token.
func GenerateToken(id Identity) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:      id.Email,
		Department: id.Department,
		Role:       id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret())
}

// ValidateToken parses and validates a token string.
func ValidateToken(t string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(t, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		return secret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || !claims.Role.Valid() {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// Identity converts validated claims back to the caller identity.
func (c *Claims) Identity() Identity {
	return Identity{
		Subject:    c.Subject,
		Email:      c.Email,
		Department: c.Department,
		Role:       c.Role,
	}
}
