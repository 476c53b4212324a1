// Package auth resolves bearer tokens into the caller's identity and roles.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pageza/cibaria/backend/internal/apperr"
	"github.com/pageza/cibaria/backend/internal/models"
)

// Principal is the authenticated caller as seen by the catalog service.
type Principal struct {
	UserID uint
	Roles  []string
}

func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (p Principal) IsAdmin() bool {
	return p.HasRole(models.RoleAdmin)
}

// TokenClaims is the JWT payload.
type TokenClaims struct {
	UserID uint     `json:"id"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// ClaimsReader issues and resolves HS256 tokens.
type ClaimsReader struct {
	secret []byte
	issuer string
}

func NewClaimsReader(secret, issuer string) *ClaimsReader {
	return &ClaimsReader{secret: []byte(secret), issuer: issuer}
}

// Issue signs a token for the user valid for ttl.
func (r *ClaimsReader) Issue(userID uint, roles []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID: userID,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    r.issuer,
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(r.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Resolve validates the token and returns its principal. Every failure wraps
// apperr.ErrInvalidCredential.
func (r *ClaimsReader) Resolve(tokenString string) (Principal, error) {
	claims := &TokenClaims{}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if r.issuer != "" {
		opts = append(opts, jwt.WithIssuer(r.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return r.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, fmt.Errorf("%w: token expired", apperr.ErrInvalidCredential)
		}
		return Principal{}, fmt.Errorf("%w: %v", apperr.ErrInvalidCredential, err)
	}
	if !token.Valid || claims.UserID == 0 {
		return Principal{}, fmt.Errorf("%w: invalid token claims", apperr.ErrInvalidCredential)
	}

	return Principal{UserID: claims.UserID, Roles: claims.Roles}, nil
}
