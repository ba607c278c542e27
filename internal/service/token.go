package service

import (
	"fmt"

	"github.com/carlosvigna/finhawk-bff/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are the claims the FinHawk API puts in its access tokens.
type TokenClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenVerifier checks HS256 access tokens locally before they are forwarded.
// With an empty secret it accepts any token and leaves the decision to the API.
type TokenVerifier struct {
	secret []byte
}

// NewTokenVerifier creates a verifier for the given shared secret.
func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// Enabled reports whether tokens are verified locally.
func (v *TokenVerifier) Enabled() bool {
	return v != nil && len(v.secret) > 0
}

// Verify validates signature and expiry. It returns nil claims when disabled.
func (v *TokenVerifier) Verify(tokenString string) (*TokenClaims, error) {
	if !v.Enabled() {
		return nil, nil
	}

	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "Token inválido ou expirado"}
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "Token inválido"}
	}
	return claims, nil
}
