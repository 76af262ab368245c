// Package auth gates administrative operations behind a shared secret.
//
// The secret doubles as the bearer token: a successful login returns it
// verbatim, and later requests present it in the X-Admin-Token header.
// There are no sessions and no expiry.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
)

// HeaderAdminToken carries the admin token on protected requests.
const HeaderAdminToken = "X-Admin-Token"

var (
	ErrMissingPassword = errors.New("password is required")
	ErrInvalidPassword = errors.New("invalid password")
	ErrMissingToken    = errors.New("missing admin token")
	ErrInvalidToken    = errors.New("invalid admin token")
)

// Comparator decides whether a presented credential matches the secret.
type Comparator interface {
	Equal(presented, secret string) bool
}

// PlainComparator uses ordinary string equality.
type PlainComparator struct{}

func (PlainComparator) Equal(presented, secret string) bool {
	return presented == secret
}

// ConstantTimeComparator compares without leaking the match position.
type ConstantTimeComparator struct{}

func (ConstantTimeComparator) Equal(presented, secret string) bool {
	return subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) == 1
}

// ComparatorByName maps the ADMIN_COMPARE setting to a Comparator.
func ComparatorByName(name string) (Comparator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "plain":
		return PlainComparator{}, nil
	case "constant-time", "constant_time", "consttime":
		return ConstantTimeComparator{}, nil
	default:
		return nil, fmt.Errorf("unknown comparator %q (want plain or constant-time)", name)
	}
}

// Guard checks passwords and tokens against the configured admin secret.
type Guard struct {
	secret string
	cmp    Comparator
}

// NewGuard builds a guard. An empty secret rejects every credential.
func NewGuard(secret string, cmp Comparator) *Guard {
	if cmp == nil {
		cmp = PlainComparator{}
	}
	return &Guard{secret: secret, cmp: cmp}
}

// Enabled reports whether a secret is configured.
func (g *Guard) Enabled() bool {
	return g.secret != ""
}

// Login exchanges the password for the admin token.
func (g *Guard) Login(password string) (string, error) {
	if password == "" {
		return "", ErrMissingPassword
	}
	if !g.matches(password) {
		return "", ErrInvalidPassword
	}
	return g.secret, nil
}

// CheckToken validates a token presented by a client.
func (g *Guard) CheckToken(token string) error {
	if token == "" {
		return ErrMissingToken
	}
	if !g.matches(token) {
		return ErrInvalidToken
	}
	return nil
}

// IsAdmin is the soft check used by read endpoints that serve both audiences.
func (g *Guard) IsAdmin(token string) bool {
	return token != "" && g.matches(token)
}

func (g *Guard) matches(presented string) bool {
	if g.secret == "" {
		return false
	}
	return g.cmp.Equal(presented, g.secret)
}
