package ports

import (
	"context"

	"github.com/identification/identity-service/internal/core/domain"
)

// IdentityService is the public surface of the credential-and-token core.
type IdentityService interface {
	CreateAccount(ctx context.Context, username, password string, roles []string) (*domain.Account, error)
	CreateRole(ctx context.Context, name string) (*domain.Role, error)
	AssignRoles(ctx context.Context, username string, roles []string) (bool, error)
	Login(ctx context.Context, username, password string) (string, error)
	ListRoles(ctx context.Context) ([]*domain.Role, error)
}
