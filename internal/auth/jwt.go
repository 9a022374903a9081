// Package auth issues and checks the HS256 tokens that guard the trigger
// and setup endpoints.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/cyclekeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// ScopeTrigger is the only scope the HTTP layer accepts.
const ScopeTrigger = "trigger"

// Claims are the registered claims plus the scope the token was minted for.
type Claims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope"`
}

func GenerateToken(scope string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Scope: scope,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ScopeFromToken verifies tokenString and returns its scope.
func ScopeFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if errors.Is(err, jwt.ErrTokenExpired) {
		return "", common.ErrTokenExpired
	}
	if err != nil {
		return "", err
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.Scope, nil
}
