package ports

import (
	"context"

	"github.com/identification/identity-service/internal/core/domain"
)

// CredentialStore persists accounts together with their password hash.
// Implementations must be safe for concurrent use and must enforce
// uniqueness of the canonical username.
type CredentialStore interface {
	// FindByUsername looks an account up by its canonical username and
	// returns domain.ErrAccountNotFound when absent.
	FindByUsername(ctx context.Context, normalizedUsername string) (*domain.Account, error)
	// Create hashes password and persists the account. Business rejections
	// are reported as *domain.StoreRejection.
	Create(ctx context.Context, account *domain.Account, password string) error
	VerifyPassword(ctx context.Context, account *domain.Account, password string) (bool, error)
	RolesOf(ctx context.Context, account *domain.Account) ([]string, error)
	// AttachRoles links existing roles to the account. Either every role is
	// attached or none is.
	AttachRoles(ctx context.Context, account *domain.Account, roles []string) error
	Ping(ctx context.Context) error
}
