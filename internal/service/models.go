package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/code_drill/drill/internal/drill_errors"
)

type UserCredentialClaims struct {
	UserId uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

// SignClaims issues a HS256 session token valid for ttl.
func SignClaims(userId uuid.UUID, email, role string, ttl time.Duration) (string, time.Time, error) {
	expiry := time.Now().Add(ttl)
	claims := UserCredentialClaims{
		UserId: userId,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiry),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   userId.String(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w, cannot sign session token, %w", drill_errors.ErrInternal, err)
	}
	return token, expiry, nil
}

// ParseClaims verifies a session token and returns its claims.
func ParseClaims(token string) (UserCredentialClaims, error) {
	var claims UserCredentialClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return UserCredentialClaims{}, fmt.Errorf("%w, invalid session token", drill_errors.ErrInvalidUserCredentials)
	}
	return claims, nil
}
