package ports

import (
	"context"

	"github.com/identification/identity-service/internal/core/domain"
)

// RoleStore persists role records.
type RoleStore interface {
	Exists(ctx context.Context, roleName string) (bool, error)
	Create(ctx context.Context, role *domain.Role) error
	List(ctx context.Context) ([]*domain.Role, error)
}
