package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims is the payload of a storefront session token.
type SessionClaims struct {
	UserID string `json:"user_id"`
	PlanID string `json:"plan_id"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT for the given user and plan.
func GenerateToken(secret, userID, planID, name string, ttl time.Duration) (string, error) {
	if userID == "" || planID == "" {
		return "", errors.New("user id and plan id are required")
	}

	now := time.Now()
	claims := &SessionClaims{
		UserID: userID,
		PlanID: planID,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates the token and returns its claims.
func ParseToken(secret, tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.UserID == "" || claims.PlanID == "" {
		return nil, fmt.Errorf("%w: missing user or plan", jwt.ErrTokenInvalidClaims)
	}
	return claims, nil
}
