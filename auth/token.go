// Package auth validates the caller identity supplied to the chat core.
// Tokens carry the user ID and the lowercase external role token; the
// canonical role mapping happens in the domain layer.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload stored inside an access token.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies access tokens with a shared HS256 secret.
type Tokens struct {
	secret   []byte
	duration time.Duration
}

func NewTokens(secret string, duration time.Duration) Tokens {
	return Tokens{secret: []byte(secret), duration: duration}
}

// Generate creates a signed token for a user. Mostly used by tooling and
// tests; in production the identity provider issues these.
func (t Tokens) Generate(userID, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "tutor-chat",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Validate parses the token string and verifies signature and expiry.
func (t Tokens) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
