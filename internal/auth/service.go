package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"boxoffice/internal/selection"
	"boxoffice/internal/shared/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken     = errors.New("invalid or expired token")
	ErrInvalidTokenType = errors.New("invalid token type")
)

// Issuer signs and validates the HMAC tokens shared with the external auth service
type Issuer struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
	resumeTTL time.Duration
	now       func() time.Time
}

func NewIssuer(cfg config.JWTConfig) *Issuer {
	return &Issuer{
		secret:    []byte(cfg.Secret),
		issuer:    cfg.Issuer,
		accessTTL: cfg.JWTExpiresIn,
		resumeTTL: cfg.ResumeTTL,
		now:       time.Now,
	}
}

// IssueAccessToken mints an access token. Production tokens come from the auth service;
// this is used by tooling and tests.
func (i *Issuer) IssueAccessToken(userID, email string, role Role) (string, error) {
	now := i.now()
	claims := JWTClaims{
		UserID: userID,
		Email:  email,
		Role:   string(role),
		Type:   TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    i.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.accessTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return token, nil
}

// ValidateAccessToken parses an access token and checks its type
func (i *Issuer) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	if err := i.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Type != TokenTypeAccess {
		return nil, ErrInvalidTokenType
	}
	return claims, nil
}

// IssueResumeToken wraps a pending selection in a short-lived signed state value
func (i *Issuer) IssueResumeToken(pending selection.PendingSelection) (string, error) {
	now := i.now()
	claims := ResumeClaims{
		Type:    TokenTypeResume,
		Pending: pending,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.resumeTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign resume token: %w", err)
	}
	return token, nil
}

// ParseResumeToken recovers the pending selection from a resume token
func (i *Issuer) ParseResumeToken(tokenString string) (selection.PendingSelection, error) {
	claims := &ResumeClaims{}
	if err := i.parse(tokenString, claims); err != nil {
		return selection.PendingSelection{}, err
	}
	if claims.Type != TokenTypeResume {
		return selection.PendingSelection{}, ErrInvalidTokenType
	}
	return claims.Pending, nil
}

func (i *Issuer) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

// Redirector sends unauthenticated shoppers to the login page with their selection as state
type Redirector struct {
	issuer    *Issuer
	loginURL  string
	returnURL string
}

func NewRedirector(issuer *Issuer, cfg config.AuthConfig) *Redirector {
	return &Redirector{issuer: issuer, loginURL: cfg.LoginURL, returnURL: cfg.ReturnURL}
}

func (r *Redirector) LoginRedirect(_ context.Context, pending selection.PendingSelection) (selection.AuthRedirect, error) {
	state, err := r.issuer.IssueResumeToken(pending)
	if err != nil {
		return selection.AuthRedirect{}, err
	}
	target, err := url.Parse(r.loginURL)
	if err != nil {
		return selection.AuthRedirect{}, fmt.Errorf("failed to parse login url: %w", err)
	}
	q := target.Query()
	q.Set("state", state)
	q.Set("redirect", r.returnURL)
	target.RawQuery = q.Encode()

	return selection.AuthRedirect{URL: target.String(), State: state}, nil
}
