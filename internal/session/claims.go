// ABOUTME: Reads JWT claims from session and identity tokens without verifying them
// ABOUTME: Used for display (expiry) and for rejecting malformed Google credentials early

package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoExpiry is returned when a token carries no exp claim
var ErrNoExpiry = errors.New("token has no expiry")

// Claims is the subset of JWT claims the client cares about
type Claims struct {
	Subject   string
	Email     string
	Name      string
	ExpiresAt time.Time
}

// ParseClaims decodes a JWT without checking its signature.
// The backend (or Google) is the authority; the client only inspects.
func ParseClaims(token string) (*Claims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return nil, fmt.Errorf("malformed token: %w", err)
	}

	c := &Claims{}
	c.Subject, _ = mc.GetSubject()
	if email, ok := mc["email"].(string); ok {
		c.Email = email
	}
	if name, ok := mc["name"].(string); ok {
		c.Name = name
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}

// ExpiresIn returns the time left on token relative to now
func ExpiresIn(token string, now time.Time) (time.Duration, error) {
	c, err := ParseClaims(token)
	if err != nil {
		return 0, err
	}
	if c.ExpiresAt.IsZero() {
		return 0, ErrNoExpiry
	}
	return c.ExpiresAt.Sub(now), nil
}
