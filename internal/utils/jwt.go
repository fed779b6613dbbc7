// Package utils provides helpers for identity tokens and opaque secrets.
package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityToken is a signed identity assertion along with its expiry.
type IdentityToken struct {
	Token string
	Exp   time.Time
}

// SignIdentity builds and signs an HS256 JWT carrying the identity
// provider's claims: subject (sub), email and name. The server only
// verifies these tokens; signing is used by tests and local tooling to
// mint assertions without the external provider.
func SignIdentity(secret, subject, email, name string, ttl time.Duration) (IdentityToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":   subject,
		"email": email,
		"name":  name,
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return IdentityToken{}, err
	}
	return IdentityToken{Token: signed, Exp: exp}, nil
}
