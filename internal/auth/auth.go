// Package auth verifies bearer tokens and resolves them to a caller identity.
// Token issuance lives in the external identity service; this server only
// validates what it receives.
package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/panelverse/panelverse-server/internal/store"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = store.ErrUnauthorized.WithMessage("invalid or expired token")

// Identity is the authenticated caller attached to a request.
type Identity struct {
	// ID is the stable subject identifier used for ownership checks.
	ID string
	// Label is a human-readable name recorded on uploads.
	Label string
}

// Verifier turns a raw bearer token into an Identity.
type Verifier interface {
	Verify(token string) (Identity, error)
}

// Claims are the JWT claims the identity service signs into access tokens.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier validates HS256-signed access tokens against a shared secret.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a verifier for the given shared secret.
func NewJWTVerifier(secret string) (*JWTVerifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret cannot be empty")
	}
	return &JWTVerifier{secret: []byte(secret)}, nil
}

// Verify parses and validates a token. The subject claim becomes the
// identity ID; the label falls back from name to email to subject.
func (v *JWTVerifier) Verify(token string) (Identity, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken.WithCause(err)
	}
	if claims.Subject == "" {
		return Identity{}, ErrInvalidToken.WithMessage("token has no subject")
	}

	label := claims.Name
	if label == "" {
		label = claims.Email
	}
	if label == "" {
		label = claims.Subject
	}

	return Identity{ID: claims.Subject, Label: label}, nil
}
