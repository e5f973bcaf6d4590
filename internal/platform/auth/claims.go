package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrExpired   = errors.New("session expired")
	ErrNoSession = errors.New("not logged in")
)

// Claims is what the console reads from the backend's access token. The
// signature is the backend's business; the console only needs identity and
// expiry.
type Claims struct {
	UserID       string `json:"userId"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Organization string `json:"organization,omitempty"`
	jwt.RegisteredClaims
}

var parser = jwt.NewParser()

// ParseClaims decodes an access token without verifying its signature.
func ParseClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	return claims, nil
}

// Expired reports whether the claims carry an expiry at or before now.
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !c.ExpiresAt.Time.After(now)
}
