package auth

import (
	"boxoffice/internal/selection"

	"github.com/golang-jwt/jwt/v4"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

const (
	TokenTypeAccess = "access"
	TokenTypeResume = "resume"
)

// JWTClaims represents access token claims
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// ResumeClaims carries a shopper's pending selection through the login flow
type ResumeClaims struct {
	Type    string                     `json:"type"`
	Pending selection.PendingSelection `json:"pending"`
	jwt.RegisteredClaims
}
