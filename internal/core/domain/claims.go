package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the fixed lifetime of an access token.
const TokenTTL = 30 * time.Minute

// SigningConfig holds the settings a token is signed and checked with.
type SigningConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

// Claims is the payload embedded in every access token.
type Claims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// HasRole reports whether the claims carry the given role. Comparison uses
// the canonical form.
func (c *Claims) HasRole(role string) bool {
	want := Normalize(role)
	for _, r := range c.Roles {
		if Normalize(r) == want {
			return true
		}
	}
	return false
}
