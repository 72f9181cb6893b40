// Package jwt verifies bearer tokens issued by the identity provider.
package jwt

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hatbajar/marketplace/internal/domain"
)

// Config contains token verification configuration.
type Config struct {
	SecretKey string
	Issuer    string
}

// Verifier validates HMAC-signed identity tokens. Signature, issuer and
// expiry are all checked; callers see a single verification error
// regardless of which check failed.
type Verifier struct {
	config Config
}

// NewVerifier creates a new token verifier.
func NewVerifier(config Config) (*Verifier, error) {
	if config.SecretKey == "" {
		return nil, errors.New("jwt secret key is required")
	}
	return &Verifier{config: config}, nil
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verify parses and validates token and returns the caller identity.
// The subject is the email claim, falling back to the registered sub.
func (v *Verifier) Verify(_ context.Context, token string) (domain.Identity, error) {
	var c claims

	parsed, err := jwt.ParseWithClaims(token, &c,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(v.config.SecretKey), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(v.config.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("verify token: %w", err)
	}
	if !parsed.Valid {
		return domain.Identity{}, errors.New("invalid token")
	}

	subject := c.Email
	if subject == "" {
		subject = c.Subject
	}
	if subject == "" {
		return domain.Identity{}, errors.New("token has no subject")
	}

	return domain.Identity{Subject: subject, Verified: true}, nil
}
