package ports

import (
	"context"

	"github.com/identification/identity-service/internal/core/domain"
)

// SigningConfigSource supplies signing settings. It is consulted on every
// issuance and verification so rotated settings take effect immediately.
type SigningConfigSource interface {
	SigningConfig() domain.SigningConfig
}

// TokenIssuer signs access tokens and checks them back.
type TokenIssuer interface {
	Issue(ctx context.Context, account *domain.Account) (string, error)
	Verify(token string) (*domain.Claims, error)
}
