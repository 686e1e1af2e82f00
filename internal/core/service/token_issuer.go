package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/identification/identity-service/internal/core/domain"
	"github.com/identification/identity-service/internal/core/ports"
)

// TokenIssuer signs HS256 access tokens for authenticated accounts and
// verifies them for the authorization gate.
type TokenIssuer struct {
	settings    ports.SigningConfigSource
	credentials ports.CredentialStore
	now         func() time.Time
}

// TokenIssuerOption customises a TokenIssuer.
type TokenIssuerOption func(*TokenIssuer)

// WithClock replaces the wall clock used for iat/exp and for expiry checks.
func WithClock(now func() time.Time) TokenIssuerOption {
	return func(t *TokenIssuer) { t.now = now }
}

func NewTokenIssuer(settings ports.SigningConfigSource, credentials ports.CredentialStore, opts ...TokenIssuerOption) *TokenIssuer {
	t := &TokenIssuer{settings: settings, credentials: credentials, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Issue builds fresh claims for account and signs them. Roles are re-read
// from the credential store on every call.
func (t *TokenIssuer) Issue(ctx context.Context, account *domain.Account) (string, error) {
	cfg := t.settings.SigningConfig()
	if cfg.Secret == "" {
		return "", &domain.ConfigurationError{Setting: "JWT signing key"}
	}

	roles, err := t.credentials.RolesOf(ctx, account)
	if err != nil {
		return "", fmt.Errorf("issue token: load roles: %w", err)
	}

	now := t.now()
	claims := &domain.Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.Username,
			ID:        uuid.NewString(),
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(domain.TokenTTL)),
		},
	}
	if cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{cfg.Audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("issue token: sign: %w", err)
	}
	return signed, nil
}

// Verify checks signature, issuer, audience and expiry, and returns the
// embedded claims.
func (t *TokenIssuer) Verify(token string) (*domain.Claims, error) {
	cfg := t.settings.SigningConfig()
	if cfg.Secret == "" {
		return nil, &domain.ConfigurationError{Setting: "JWT signing key"}
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	}
	if cfg.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(cfg.Audience))
	}

	claims := &domain.Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.Secret), nil
	}, parserOpts...)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return claims, nil
}
