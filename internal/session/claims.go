package session

import (
	"fmt"
	"time"

	"github.com/desertthunder/watchlog/internal/shared"
	jwt "github.com/golang-jwt/jwt/v5"
)

// Claims is what the client can read from its own token without the server's key.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Opaque    bool // token is not a JWT
}

// Expired reports whether the token carries an expiry that has passed.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Claims decodes the current token without verifying its signature.
//
// The server remains the only authority; this is used for status display.
func (m *Manager) Claims() (Claims, error) {
	token, ok := m.Token()
	if !ok {
		return Claims{}, shared.ErrNotAuthenticated
	}
	return ParseClaims(token)
}

// ParseClaims reads subject, issued-at and expiry from a JWT. Non-JWT tokens are reported as opaque.
func ParseClaims(token string) (Claims, error) {
	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &rc); err != nil {
		return Claims{Opaque: true}, nil
	}

	c := Claims{Subject: rc.Subject}
	if rc.IssuedAt != nil {
		c.IssuedAt = rc.IssuedAt.Time
	}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	if c.Subject == "" && c.ExpiresAt.IsZero() {
		return c, fmt.Errorf("%w: token has no subject or expiry", shared.ErrInvalidInput)
	}
	return c, nil
}
